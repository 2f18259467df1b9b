package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(42), "42"},
		{"negative int", int64(-100), "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []any{int64(1), int64(2), int64(3)}, "[1,2,3]"},
		{"simple object", map[string]any{"a": int64(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": int64(1),
		"alpha": int64(2),
		"beta":  int64(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{
			"b": int64(1),
			"a": int64(2),
		},
		"a": int64(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 order differs from UTF-8.
	// The surrogate pair (0xD800 0xDC00) sorts before 0xE000.
	obj := map[string]any{
		"": int64(1),
		"𐀀":      int64(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	expected := `{"𐀀":2,"` + "" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	// U+2028 and U+2029 must stay literal per RFC 8785.
	result, err := MarshalCanonical("x y z")
	require.NoError(t, err)
	assert.Equal(t, "\"x y z\"", string(result))

	// A literal backslash followed by the text "u2028" must keep its
	// escaped backslash.
	result, err = MarshalCanonical(`x\u2028y`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028y"`, string(result))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// e + combining acute accent normalizes to the precomposed form.
	decomposed := "é"
	precomposed := "é"

	r1, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	r2, err := MarshalCanonical(precomposed)
	require.NoError(t, err)

	assert.Equal(t, string(r2), string(r1))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")

	_, err = MarshalCanonical(map[string]any{"x": nil})
	require.Error(t, err)
}

func TestMarshalCanonicalRejectsUnsupportedTypes(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestSortedKeysDeterministic(t *testing.T) {
	obj := map[string]any{"b": int64(1), "a": int64(2), "c": int64(3)}

	first := SortedKeys(obj)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SortedKeys(obj))
	}
	assert.Equal(t, []string{"a", "b", "c"}, first)
}
