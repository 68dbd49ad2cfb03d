package ops

import "github.com/JonMunkholm/basedata/internal/frame"

// Option configures an operation. Each operation reads only the options that
// apply to it.
type Option func(*options)

type options struct {
	inplace       bool
	returnSeries  bool
	target        string
	onError       frame.Value
	onEmpty       frame.Value
	pattern       string
	replacement   frame.Value
	exhaustive    bool
	ignoreMissing bool
	toFile        string
}

func newOptions(opts []Option) options {
	o := options{inplace: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Inplace controls whether the result is written to the working table
// (default true).
func Inplace(b bool) Option { return func(o *options) { o.inplace = b } }

// ReturnSeries controls whether the resulting series is returned (default
// false).
func ReturnSeries(b bool) Option { return func(o *options) { o.returnSeries = b } }

// Target writes the result to column instead of the source column.
func Target(column string) Option { return func(o *options) { o.target = column } }

// Fallbacks sets the values used when a cell cannot be processed (onError) or
// when processing leaves it empty (onEmpty). Both default to Missing.
func Fallbacks(onError, onEmpty frame.Value) Option {
	return func(o *options) {
		o.onError = onError
		o.onEmpty = onEmpty
	}
}

// Pattern overrides the default regular expression of ID operations.
func Pattern(p string) Option { return func(o *options) { o.pattern = p } }

// Replacement sets the value substituted for off-length IDs (default Missing).
func Replacement(v frame.Value) Option { return func(o *options) { o.replacement = v } }

// Exhaustive makes MapValues turn unmapped values into Missing.
func Exhaustive(b bool) Option { return func(o *options) { o.exhaustive = b } }

// IgnoreMissing makes MapValues keep Missing values without looking them up.
func IgnoreMissing(b bool) Option { return func(o *options) { o.ignoreMissing = b } }

// ToFile makes ReportDupes also write the duplicate rows to path as CSV.
func ToFile(path string) Option { return func(o *options) { o.toFile = path } }
