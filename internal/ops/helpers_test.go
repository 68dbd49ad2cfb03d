package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/basedata/internal/frame"
)

func TestRegexSubValue(t *testing.T) {
	tests := []struct {
		name string
		in   frame.Value
		want Result
	}{
		{"digits only", frame.String("1234"), Result{Value: frame.String("1234")}},
		{"mixed", frame.String("123abc4"), Result{Value: frame.String("1234")}},
		{"empty string", frame.String(""), Result{Value: frame.Missing(), Fallback: true}},
		{"all stripped", frame.String("abc"), Result{Value: frame.Missing(), Fallback: true}},
		{"int is not text", frame.Int(1234), Result{Value: frame.Missing(), Fallback: true}},
		{"missing", frame.Missing(), Result{Value: frame.Missing(), Fallback: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RegexSubValue(tt.in, `[^0-9]`, "", frame.Missing(), frame.Missing())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegexSubValueFallbacks(t *testing.T) {
	onError, onEmpty := frame.String("ERR"), frame.String("EMPTY")

	assert.Equal(t, onEmpty, RegexSubValue(frame.String("--"), `-`, "", onError, onEmpty).Value)
	assert.Equal(t, onError, RegexSubValue(frame.Float(1.5), `-`, "", onError, onEmpty).Value)
	assert.Equal(t, onError, RegexSubValue(frame.String("x"), `[`, "", onError, onEmpty).Value)
	assert.Equal(t, frame.String("a_b"), RegexSubValue(frame.String("a b"), `\s`, "_", onError, onEmpty).Value)
}

func TestRegexSubValueLiteralDollar(t *testing.T) {
	got := RegexSubValue(frame.String("10USD"), `USD`, "$US", frame.Missing(), frame.Missing())
	assert.Equal(t, Result{Value: frame.String("10$US")}, got)

	got = RegexSubValue(frame.String("a-b"), `(\w)-(\w)`, "$2$1", frame.Missing(), frame.Missing())
	assert.Equal(t, Result{Value: frame.String("$2$1")}, got)
}

func TestRegexReplaceValue(t *testing.T) {
	replacement := frame.String("test")

	tests := []struct {
		name string
		in   frame.Value
		want Result
	}{
		{"exact length", frame.String("1234"), Result{Value: frame.String("1234")}},
		{"too long", frame.String("12345"), Result{Value: replacement, Fallback: true}},
		{"non-digit", frame.String("123a5"), Result{Value: replacement, Fallback: true}},
		{"empty", frame.String(""), Result{Value: replacement, Fallback: true}},
		{"int", frame.Int(1234), Result{Value: frame.Missing(), Fallback: true}},
		{"missing", frame.Missing(), Result{Value: frame.Missing(), Fallback: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RegexReplaceValue(tt.in, replacement, `[0-9]{4}$`, frame.Missing())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegexReplaceValueAnchorsAtStart(t *testing.T) {
	// "x1234" contains a match, but not at position 0.
	got := RegexReplaceValue(frame.String("x1234"), frame.Missing(), `[0-9]{4}`, frame.String("err"))
	assert.Equal(t, frame.Missing(), got.Value)

	// A prefix match is enough when the pattern has no end anchor.
	got = RegexReplaceValue(frame.String("1234x"), frame.Missing(), `[0-9]{4}`, frame.String("err"))
	assert.Equal(t, frame.String("1234x"), got.Value)

	got = RegexReplaceValue(frame.String("1234"), frame.Missing(), `(`, frame.String("err"))
	assert.Equal(t, frame.String("err"), got.Value)
}

func TestHelpersNeverPanic(t *testing.T) {
	values := []frame.Value{
		frame.Missing(), frame.String(""), frame.String("  "), frame.String("\xff"),
		frame.Int(0), frame.Float(math.Inf(1)), frame.Bool(true),
	}
	patterns := []string{`[^0-9]`, `(`, `\`, `a{2000}`, ``, `$`}

	for _, v := range values {
		for _, p := range patterns {
			assert.NotPanics(t, func() {
				r := RegexSubValue(v, p, "", frame.Missing(), frame.String("empty"))
				if s, ok := r.Value.Str(); ok && s == "" {
					t.Errorf("empty result for %v / %q was not replaced by the fallback", v, p)
				}
				RegexReplaceValue(v, frame.Missing(), p, frame.Missing())
			})
		}
	}
}

func TestCompileCachesPatterns(t *testing.T) {
	a, err := compile(`[0-9]{8}$`)
	require.NoError(t, err)
	b, err := compile(`[0-9]{8}$`)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err1 := compile(`(`)
	_, err2 := compile(`(`)
	require.Error(t, err1)
	assert.Equal(t, err1, err2)
}

func TestInplaceOrReturn(t *testing.T) {
	newTable := func() *frame.Table {
		tbl, err := frame.FromRecords([]string{"test"}, [][]frame.Value{{frame.Int(1)}, {frame.Int(2)}})
		require.NoError(t, err)
		return tbl
	}
	series := frame.NewSeries("test", []frame.Value{frame.String("a"), frame.String("b")})

	t.Run("inplace", func(t *testing.T) {
		tbl := newTable()
		got, err := InplaceOrReturn(tbl, "test", series, true, false, "")
		require.NoError(t, err)
		assert.Nil(t, got)
		col, _ := tbl.Column("test")
		assert.Equal(t, series.Values, col.Values)
	})

	t.Run("inplace to target", func(t *testing.T) {
		tbl := newTable()
		_, err := InplaceOrReturn(tbl, "test", series, true, false, "test_target")
		require.NoError(t, err)
		orig, _ := tbl.Column("test")
		assert.Equal(t, []frame.Value{frame.Int(1), frame.Int(2)}, orig.Values)
		target, err := tbl.Column("test_target")
		require.NoError(t, err)
		assert.Equal(t, series.Values, target.Values)
	})

	t.Run("return only", func(t *testing.T) {
		tbl := newTable()
		got, err := InplaceOrReturn(tbl, "test", series, false, true, "")
		require.NoError(t, err)
		assert.Same(t, series, got)
		orig, _ := tbl.Column("test")
		assert.Equal(t, []frame.Value{frame.Int(1), frame.Int(2)}, orig.Values)
	})

	t.Run("length mismatch", func(t *testing.T) {
		tbl := newTable()
		_, err := InplaceOrReturn(tbl, "test", frame.NewSeries("x", []frame.Value{frame.Int(1)}), true, true, "")
		require.ErrorIs(t, err, frame.ErrLengthMismatch)
	})
}
