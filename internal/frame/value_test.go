package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueText(t *testing.T) {
	ts := time.Date(2010, 10, 10, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"missing", Missing(), "nan"},
		{"string", String(" 5678"), " 5678"},
		{"int", Int(12345678), "12345678"},
		{"negative int", Int(-4), "-4"},
		{"integral float", Float(3), "3.0"},
		{"fractional float", Float(1.25), "1.25"},
		{"positive inf", Float(math.Inf(1)), "inf"},
		{"true", Bool(true), "True"},
		{"false", Bool(false), "False"},
		{"time", Time(ts), "2010-10-10 08:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Text())
		})
	}
}

func TestFloatNaNIsMissing(t *testing.T) {
	v := Float(math.NaN())
	assert.True(t, v.IsMissing())
	assert.Equal(t, Missing(), v)
}

func TestValueFieldAndString(t *testing.T) {
	assert.Equal(t, "", Missing().Field())
	assert.Equal(t, "<missing>", Missing().String())
	assert.Equal(t, "abc", String("abc").Field())
}

func TestTimeValuesCompareByInstant(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	a := Time(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
	b := Time(time.Date(2020, 1, 1, 14, 0, 0, 0, loc))
	assert.Equal(t, a, b)

	got, ok := b.TimeValue()
	assert.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, Int(3), ValueOf(3))
	assert.Equal(t, Float(2.5), ValueOf(float32(2.5)))
	assert.Equal(t, String("x"), ValueOf([]byte("x")))
	assert.Equal(t, Bool(true), ValueOf(true))
	assert.Equal(t, Missing(), ValueOf(nil))
	assert.Equal(t, Missing(), ValueOf(struct{}{}))
	assert.Equal(t, String("y"), ValueOf(String("y")))
}

func TestValueAccessors(t *testing.T) {
	f, ok := Int(7).FloatValue()
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	_, ok = String("7").FloatValue()
	assert.False(t, ok)

	s, ok := String("abc").Str()
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	assert.Equal(t, int64(9), Int(9).Any())
	assert.Nil(t, Missing().Any())
	assert.Equal(t, "bool", Bool(false).Kind().String())
}

func TestCommonKind(t *testing.T) {
	now := Time(time.Now())
	tests := []struct {
		name   string
		values []Value
		want   Kind
	}{
		{"empty", nil, KindString},
		{"all missing", []Value{Missing(), Missing()}, KindString},
		{"ints", []Value{Int(1), Missing(), Int(2)}, KindInt},
		{"ints and floats", []Value{Int(1), Float(2.5)}, KindFloat},
		{"floats and ints", []Value{Float(2.5), Int(1)}, KindFloat},
		{"times", []Value{now, Missing()}, KindTime},
		{"bools", []Value{Bool(true)}, KindBool},
		{"mixed", []Value{Int(1), String("a")}, KindString},
		{"time and int", []Value{now, Int(1)}, KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonKind(tt.values))
		})
	}
}
