package document

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesKeyOrder(t *testing.T) {
	t.Parallel()

	input := `{"zeta":1,"alpha":{"y":true,"b":null,"a":[3,{"k2":"v","k1":"w"}]},"mid":"x"}`

	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, Keys(doc))

	alpha, ok := GetObject(doc, "alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b", "a"}, Keys(alpha))

	out, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestParseKeepsNumbersVerbatim(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"big":12345678901234567890,"frac":1.50,"neg":-3e2}`))
	require.NoError(t, err)

	big, ok := doc.Get("big")
	require.True(t, ok)
	assert.Equal(t, json.Number("12345678901234567890"), big)

	out, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"big":12345678901234567890,"frac":1.50,"neg":-3e2}`, string(out))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ``},
		{name: "array root", input: `[1,2]`},
		{name: "string root", input: `"x"`},
		{name: "truncated", input: `{"a":{"b":1}`},
		{name: "trailing content", input: `{"a":1}{"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestMarshalIndent(t *testing.T) {
	t.Parallel()

	doc := ObjectOf(
		Entry{Key: "b", Value: "x"},
		Entry{Key: "a", Value: []any{json.Number("1")}},
	)

	out, err := MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": \"x\",\n  \"a\": [\n    1\n  ]\n}", string(out))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"components":{"schemas":{"S":{"type":"object"}}}}`))
	require.NoError(t, err)

	v, ok := Lookup(doc, "components", "schemas", "S", "type")
	require.True(t, ok)
	assert.Equal(t, "object", v)

	_, ok = Lookup(doc, "components", "messages")
	assert.False(t, ok)

	_, ok = Lookup(doc, "components", "schemas", "S", "type", "deeper")
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"a":{"b":["c"]}}`))
	require.NoError(t, err)

	cp := CloneObject(doc)

	inner, _ := GetObject(cp, "a")
	inner.Set("b", "changed")
	inner.Set("new", true)

	out, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":["c"]}}`, string(out))
}

func TestPlainRoundTrip(t *testing.T) {
	t.Parallel()

	plain := map[string]any{
		"b": map[string]any{"y": "1", "x": []any{"2"}},
		"a": []string{"p", "q"},
	}

	obj, ok := AsObject(FromPlain(plain))
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, Keys(obj))

	back := ToPlain(obj)
	assert.Equal(t, map[string]any{
		"b": map[string]any{"y": "1", "x": []any{"2"}},
		"a": []any{"p", "q"},
	}, back)
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"description":"a < b & c","n":1.50}`))
	require.NoError(t, err)

	out, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"description":"a < b & c","n":1.50}`, string(out))
}

func TestParseReplacesInvalidUTF8(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte("{\"a\":\"x\xff\xfey\",\"\xff\":1}"))
	require.NoError(t, err)

	a, ok := GetString(doc, "a")
	require.True(t, ok)
	assert.True(t, utf8.ValidString(a))
	assert.Regexp(t, "^x\uFFFD+y$", a)
	assert.True(t, Has(doc, "\uFFFD"))

	out, err := Marshal(doc)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(out))
}
