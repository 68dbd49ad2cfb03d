package frame

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// TimeLayout is the text form of time values.
const TimeLayout = "2006-01-02 15:04:05"

// Value is a single table cell.
//
// Values are comparable and can be used as map keys. Times are stored as UTC
// nanoseconds so that equal instants compare equal.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// Missing returns the missing-value sentinel.
func Missing() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps i.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps f. NaN becomes Missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{kind: KindFloat, f: f}
}

// Bool wraps b.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// Time wraps t.
func Time(t time.Time) Value { return Value{kind: KindTime, i: t.UTC().UnixNano()} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the string payload and whether v holds a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// IntValue returns the int payload and whether v holds an int.
func (v Value) IntValue() (int64, bool) { return v.i, v.kind == KindInt }

// FloatValue returns v as float64 for ints and floats.
func (v Value) FloatValue() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// BoolValue returns the bool payload and whether v holds a bool.
func (v Value) BoolValue() (bool, bool) { return v.i == 1, v.kind == KindBool }

// TimeValue returns the time payload (UTC) and whether v holds a time.
func (v Value) TimeValue() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return time.Unix(0, v.i).UTC(), true
}

// Text returns the text form used when a value is coerced to a string.
// Missing renders as "nan".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		if v.i == 1 {
			return "True"
		}
		return "False"
	case KindTime:
		t, _ := v.TimeValue()
		return t.Format(TimeLayout)
	default:
		return "nan"
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}
	return v.Text()
}

// Field returns the form written to CSV: Missing is an empty field.
func (v Value) Field() string {
	if v.kind == KindMissing {
		return ""
	}
	return v.Text()
}

// Any returns the payload as a plain Go value (nil for Missing).
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.i == 1
	case KindTime:
		t, _ := v.TimeValue()
		return t
	default:
		return nil
	}
}

// ValueOf converts a plain Go value to a Value. Unsupported types become
// Missing.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Missing()
	case Value:
		return t
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case bool:
		return Bool(t)
	case time.Time:
		return Time(t)
	case []byte:
		return String(string(t))
	default:
		return Missing()
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// CommonKind returns the narrowest kind holding every non-missing value:
// the shared kind, Float for a mix of Int and Float, and String otherwise.
// A column of only Missing values is String.
func CommonKind(values []Value) Kind {
	kind := KindMissing
	for _, v := range values {
		switch {
		case v.kind == KindMissing || v.kind == kind:
		case kind == KindMissing:
			kind = v.kind
		case isNumber(kind) && isNumber(v.kind):
			kind = KindFloat
		default:
			return KindString
		}
	}
	if kind == KindMissing {
		return KindString
	}
	return kind
}

func isNumber(k Kind) bool { return k == KindInt || k == KindFloat }
