package value

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeys(t *testing.T) {
	m := MapOf(P("b", Int(1)), P("a", String("x")), P("c", ListOf()))

	data, err := Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1,"c":[]}`, string(data))
}

func TestMarshal_Floats(t *testing.T) {
	tests := []struct {
		name string
		in   Float
		want string
	}{
		{"fraction", 21.5, "21.5"},
		{"whole keeps fraction", 2, "2.0"},
		{"negative whole", -7, "-7.0"},
		{"large exponent", 1e21, "1e+21"},
		{"small exponent", 1e-7, "1e-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshal_RejectsNonFinite(t *testing.T) {
	_, err := Marshal(Float(math.NaN()))
	require.Error(t, err)

	_, err = Marshal(MapOf(P("t", Float(math.Inf(1)))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `map["t"]`)
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	data, err := Marshal(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(data))
}

func TestMarshal_KeepsDecomposedText(t *testing.T) {
	// "e" + combining acute accent is not folded into U+00E9
	data, err := Marshal(String("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"cafe\u0301\"", string(data))
}

func TestRoundTrip_KeysEqualUnderNFC(t *testing.T) {
	m := MapOf(
		P("e\u0301", Int(1)),
		P("\u00e9", Int(2)),
		P("name", String("cafe\u0301")),
	)

	data, err := Marshal(m)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, Equal(m, got), "got %v", got)
}

func TestMarshal_NilIsNull(t *testing.T) {
	data, err := Marshal(ListOf(nil, Null{}))
	require.NoError(t, err)
	assert.Equal(t, `[null,null]`, string(data))
}

func TestMarshal_Deterministic(t *testing.T) {
	m := MapOf(
		P("zeta", Int(1)),
		P("alpha", MapOf(P("y", Bool(true)), P("x", Bool(false)))),
		P("mid", ListOf(Float(1.25), String("s"))),
	)

	first := MustMarshal(m)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, MustMarshal(Clone(m)))
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		ListOf(),
		Map{},
		ListOf(
			MapOf(P("station", String("st-1")), P("mode", String("current")), P("timeAgo", Int(24))),
			MapOf(P("station", String("st-2")), P("mode", String("history")), P("timeAgo", Int(168))),
		),
		MapOf(
			P("sensor-1", MapOf(P("id", String("sensor-1")), P("value", Float(21)), P("unit", String("C")))),
			P("sensor-2", MapOf(P("id", String("sensor-2")), P("value", Float(1013.25)), P("online", Bool(true)))),
		),
		MapOf(P("units", String("metric")), P("refresh", Int(300)), P("theme", Null{})),
	}

	for _, v := range values {
		data, err := Marshal(v)
		require.NoError(t, err)

		got, err := Unmarshal(data)
		require.NoError(t, err)
		if diff := cmp.Diff(v, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestUnmarshal_Numbers(t *testing.T) {
	v, err := Unmarshal([]byte(`[1, 1.0, 2e3, -4]`))
	require.NoError(t, err)
	assert.Equal(t, ListOf(Int(1), Float(1), Float(2000), Int(-4)), v)
}

func TestUnmarshal_TrailingData(t *testing.T) {
	_, err := Unmarshal([]byte(`{} {}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing data")
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte(`{"a":`))
	require.Error(t, err)
}
