package ops

import (
	"regexp"
	"sync"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// Result is the outcome of a value helper. Fallback reports that the value
// was substituted by the error or empty fallback instead of being computed.
type Result struct {
	Value    frame.Value
	Fallback bool
}

type compiled struct {
	re  *regexp.Regexp
	err error
}

var (
	patternCache   = make(map[string]compiled)
	patternCacheMu sync.RWMutex
)

// compile returns the cached compilation of expr. Compile errors are cached
// too.
func compile(expr string) (*regexp.Regexp, error) {
	patternCacheMu.RLock()
	c, ok := patternCache[expr]
	patternCacheMu.RUnlock()
	if ok {
		return c.re, c.err
	}

	re, err := regexp.Compile(expr)
	patternCacheMu.Lock()
	patternCache[expr] = compiled{re: re, err: err}
	patternCacheMu.Unlock()
	return re, err
}

// RegexSubValue replaces every match of pattern in v with sub. The sub text
// is literal: "$" is not expanded as a submatch reference. The result is onEmpty when the substitution leaves an empty
// string and onError when v is not a String or the pattern is invalid.
func RegexSubValue(v frame.Value, pattern, sub string, onError, onEmpty frame.Value) Result {
	s, ok := v.Str()
	if !ok {
		return Result{Value: onError, Fallback: true}
	}
	re, err := compile(pattern)
	if err != nil {
		return Result{Value: onError, Fallback: true}
	}
	out := re.ReplaceAllLiteralString(s, sub)
	if out == "" {
		return Result{Value: onEmpty, Fallback: true}
	}
	return Result{Value: frame.String(out)}
}

// RegexReplaceValue returns v when it matches pattern starting at its first
// character and replacement otherwise. onError is returned when v is not a
// String or the pattern is invalid.
func RegexReplaceValue(v, replacement frame.Value, pattern string, onError frame.Value) Result {
	s, ok := v.Str()
	if !ok {
		return Result{Value: onError, Fallback: true}
	}
	re, err := compile(`^(?:` + pattern + `)`)
	if err != nil {
		return Result{Value: onError, Fallback: true}
	}
	if !re.MatchString(s) {
		return Result{Value: replacement, Fallback: true}
	}
	return Result{Value: v}
}

// InplaceOrReturn writes s to t under target (or column when target is
// empty) when inplace is set, and returns s when returnSeries is set.
func InplaceOrReturn(t *frame.Table, column string, s *frame.Series, inplace, returnSeries bool, target string) (*frame.Series, error) {
	if inplace {
		dest := column
		if target != "" {
			dest = target
		}
		out := s.Copy()
		out.Name = dest
		if err := t.SetColumn(dest, out); err != nil {
			return nil, err
		}
	}
	if returnSeries {
		return s, nil
	}
	return nil, nil
}
