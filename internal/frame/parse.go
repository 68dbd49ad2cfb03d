package frame

// parse.go converts cell text to typed values.
//
// Number parsing is strict: no currency symbols, no thousands separators and
// no textual nan/inf. Time parsing tries unambiguous four-digit-year layouts
// before two-digit-year layouts, which are resolved against a pivot.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ParseNumber converts s to an Int or Float value. Surrounding whitespace is
// ignored and blank text yields Missing. ok is false when s is not numeric.
func ParseNumber(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing(), true
	}
	if !numericRegex.MatchString(s) {
		return Missing(), false
	}
	if integerRegex.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing(), false
	}
	return Float(f), true
}

// ParseTime converts s to a Time value using the supported layouts. Blank
// text yields Missing. ok is false when no layout matches.
func ParseTime(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing(), true
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time(t), true
		}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time(t), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return Time(t), true
		}
	}

	return Missing(), false
}

// InferValue converts raw cell text to the narrowest value: blank → Missing,
// integer text → Int, float text → Float, anything else → String.
func InferValue(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Missing()
	}
	if v, ok := ParseNumber(s); ok {
		return v
	}
	return String(s)
}
