package converter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mcncl/textjson/internal/errors"
	"github.com/mcncl/textjson/internal/models"
	"github.com/mcncl/textjson/internal/normalizer"
	"github.com/mcncl/textjson/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(s string) json.Number { return json.Number(s) }

func objectOf(key string, value models.JSONValue) *models.JSONObject {
	obj := models.NewJSONObject()
	obj.Set(key, value)
	return obj
}

func TestConvert_Examples(t *testing.T) {
	c := NewConverter(nil)

	tests := []struct {
		name       string
		input      string
		opts       models.Options
		value      models.JSONValue
		serialized string
		count      int
	}{
		{
			name:       "python list with label",
			input:      "Data: ['a', 'b', None]",
			value:      models.JSONArray{"a", "b", nil},
			serialized: `["a","b",null]`,
			count:      3,
		},
		{
			name:       "combined arrays",
			input:      "[1,2]\n[3,4]",
			opts:       models.Options{CombineArrays: true},
			value:      models.JSONArray{num("1"), num("2"), num("3"), num("4")},
			serialized: `[1,2,3,4]`,
			count:      4,
		},
		{
			name:  "list of lists",
			input: "[1,2]\n[3,4]",
			value: models.JSONArray{
				models.JSONArray{num("1"), num("2")},
				models.JSONArray{num("3"), num("4")},
			},
			serialized: `[[1,2],[3,4]]`,
			count:      4,
		},
		{
			name:       "single array is not wrapped even when combining",
			input:      "Datos:\n[True, False]",
			opts:       models.Options{CombineArrays: true},
			value:      models.JSONArray{true, false},
			serialized: `[true,false]`,
			count:      2,
		},
		{
			name:       "pretty print",
			input:      "[1]",
			opts:       models.Options{PrettyPrint: true},
			value:      models.JSONArray{num("1")},
			serialized: "[\n  1\n]",
			count:      1,
		},
		{
			name:       "bad array lines are skipped",
			input:      "[1]\n[oops]\n[2]",
			opts:       models.Options{CombineArrays: true},
			value:      models.JSONArray{num("1"), num("2")},
			serialized: `[1,2]`,
			count:      2,
		},
		{
			name:       "leading byte order mark",
			input:      "\uFEFF[1]",
			opts:       models.Options{CombineArrays: true},
			value:      models.JSONArray{num("1")},
			serialized: `[1]`,
			count:      1,
		},
		{
			name:       "byte order mark before an object",
			input:      "\uFEFF{'a': 1}",
			value:      objectOf("a", num("1")),
			serialized: `{"a":1}`,
			count:      1,
		},
		{
			name:       "numbers keep their source spelling",
			input:      "[1.0, 2.0, 1e2, -0]",
			value:      models.JSONArray{num("1.0"), num("2.0"), num("1e2"), num("-0")},
			serialized: `[1.0,2.0,1e2,-0]`,
			count:      4,
		},
		{
			name:       "scalar document counts as one",
			input:      "'hello'",
			value:      "hello",
			serialized: `"hello"`,
			count:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.Convert(tt.input, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.value, result.FinalValue)
			assert.Equal(t, tt.serialized, result.Serialized)
			assert.Equal(t, tt.count, result.ElementCount)
		})
	}
}

func TestConvert_ListOfListsCountsInnerElements(t *testing.T) {
	result, err := NewConverter(nil).Convert("[1,2,3]\n[4,5,6]", models.Options{})
	require.NoError(t, err)
	assert.Equal(t, 6, result.ElementCount)
	assert.Equal(t, 2, result.ArraysFound)
}

func TestConvert_ObjectFallback(t *testing.T) {
	input := "Data:\n{'name': 'Ann',\n 'active': True,\n 'score': None}"
	result, err := NewConverter(nil).Convert(input, models.Options{})
	require.NoError(t, err)

	assert.Equal(t, `{"name":"Ann","active":true,"score":null}`, result.Serialized)
	assert.Equal(t, 1, result.ElementCount)
	assert.Zero(t, result.ArraysFound)
}

func TestConvert_MultiLineArrayUsesFallback(t *testing.T) {
	result, err := NewConverter(nil).Convert("[\n  1,\n  2\n]", models.Options{})
	require.NoError(t, err)
	assert.Equal(t, models.JSONArray{num("1"), num("2")}, result.FinalValue)
	assert.Equal(t, 2, result.ElementCount)
}

func TestConvert_ParseError(t *testing.T) {
	_, err := NewConverter(nil).Convert("not json at all", models.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Contains(t, errors.UserFriendlyError(err), "invalid character")
}

func TestConvert_OnlyBadArrayLinesFailsWholeText(t *testing.T) {
	_, err := NewConverter(nil).Convert("[oops]", models.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestConvert_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		_, err := NewConverter(nil).Convert(input, models.Options{})
		require.Error(t, err)
		assert.True(t, errors.IsEmptyInput(err), "input %q", input)
		assert.False(t, errors.IsParseError(err))
	}
}

func TestConvert_LabelOnlyInputIsAParseError(t *testing.T) {
	_, err := NewConverter(nil).Convert("Data:", models.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestConvert_Repair(t *testing.T) {
	c := NewConverter(nil)
	input := "{'a': 1, 'b': [1, 2,]}"

	_, err := c.Convert(input, models.Options{})
	require.Error(t, err)

	result, err := c.Convert(input, models.Options{Repair: true})
	require.NoError(t, err)
	assert.True(t, result.Repaired)
	assert.Equal(t, `{"a":1,"b":[1,2]}`, result.Serialized)
}

func TestConvert_NoArrayLinesMatchesWholeTextParse(t *testing.T) {
	inputs := []string{
		`{'k': 'v'}`,
		"42",
		"Data: True",
		"{\n'a': [1,\n2]\n}",
		"nope",
	}

	c := NewConverter(nil)
	for _, input := range inputs {
		want, wantErr := parser.ParseString(normalizer.Normalize(input))
		result, err := c.Convert(input, models.Options{})
		if wantErr != nil {
			assert.Error(t, err, "input %q", input)
			continue
		}
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, result.FinalValue, "input %q", input)
	}
}

func TestCombine(t *testing.T) {
	a := models.JSONArray{num("1")}
	b := models.JSONArray{"x", models.JSONArray{num("2")}}
	c := models.JSONArray{}

	assert.Equal(t, models.JSONArray{num("1"), "x", models.JSONArray{num("2")}}, Combine([]models.JSONArray{a, b, c}, true))
	assert.Equal(t, models.JSONArray{a, b, c}, Combine([]models.JSONArray{a, b, c}, false))
	assert.Equal(t, b, Combine([]models.JSONArray{b}, true))
	assert.Equal(t, b, Combine([]models.JSONArray{b}, false))
}

func TestElementCount(t *testing.T) {
	tests := []struct {
		name     string
		value    models.JSONValue
		expected int
	}{
		{"object", models.NewJSONObject(), 1},
		{"string", "s", 1},
		{"null", nil, 1},
		{"empty array", models.JSONArray{}, 0},
		{"flat array", models.JSONArray{num("1"), "a", nil}, 3},
		{"array of arrays", models.JSONArray{models.JSONArray{num("1")}, models.JSONArray{num("2"), num("3")}}, 3},
		{"array of empty arrays", models.JSONArray{models.JSONArray{}, models.JSONArray{}}, 0},
		{"mixed led by array", models.JSONArray{models.JSONArray{num("1"), num("2")}, "x"}, 3},
		{"mixed led by scalar", models.JSONArray{"x", models.JSONArray{num("1"), num("2")}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElementCount(tt.value))
		})
	}
}

func TestPreview(t *testing.T) {
	c := NewConverter(nil)

	waiting := c.Preview("  \n ")
	assert.True(t, waiting.Waiting)
	assert.False(t, waiting.OK)

	bom := c.Preview("\uFEFF")
	assert.True(t, bom.Waiting)

	marked := c.Preview("\uFEFF[True]")
	assert.True(t, marked.OK)
	assert.Equal(t, "[true]", marked.Text)

	p := c.Preview("Data: ['a', None]")
	assert.True(t, p.OK)
	assert.Equal(t, `["a", null]`, p.Text)

	c.PreviewLength = 5
	long := c.Preview(strings.Repeat("é", 8))
	assert.Equal(t, strings.Repeat("é", 5)+"...", long.Text)

	exact := c.Preview(strings.Repeat("a", 5))
	assert.Equal(t, "aaaaa", exact.Text)
}

func TestConvertAfter(t *testing.T) {
	c := NewConverter(nil)

	start := time.Now()
	result, err := c.ConvertAfter(context.Background(), 20*time.Millisecond, "[1]", models.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ElementCount)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ConvertAfter(ctx, time.Second, "[1]", models.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkConvert(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("Data: ['item', 1, 2.5, True, None]\n")
	}
	input := sb.String()
	c := NewConverter(nil)
	opts := models.Options{PrettyPrint: true, CombineArrays: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Convert(input, opts); err != nil {
			b.Fatal(err)
		}
	}
}
