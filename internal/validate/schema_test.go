package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	m := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		input string
		want  interface{}
		ok    bool
	}{
		{"string trims", NonEmptyString(), `"  Ada "`, "Ada", true},
		{"blank string", NonEmptyString(), `"   "`, nil, false},
		{"string wrong type", NonEmptyString(), `12`, nil, false},
		{"email", Email(), `"a@x.com"`, "a@x.com", true},
		{"email with slash", Email(), `"a/b@x.com"`, nil, false},
		{"email traversal", Email(), `".."`, nil, false},
		{"email dot", Email(), `"."`, nil, false},
		{"email nul", Email(), `"a\u0000@x.com"`, nil, false},
		{"email trims", Email(), `" a@x.com "`, "a@x.com", true},
		{"length exact", Length(3), `"abc"`, "abc", true},
		{"length short", Length(3), `"ab"`, nil, false},
		{"length wrong type", Length(3), `123`, nil, false},
		{"true", True(), `true`, true, true},
		{"false", True(), `false`, nil, false},
		{"true as string", True(), `"true"`, nil, false},
		{"one of", OneOf("get", "post"), `"post"`, "post", true},
		{"not one of", OneOf("get", "post"), `"patch"`, nil, false},
		{"int in range", IntBetween(1, 5), `5`, 5, true},
		{"int above range", IntBetween(1, 5), `6`, nil, false},
		{"int fraction", IntBetween(1, 5), `2.5`, nil, false},
		{"int as string", IntBetween(1, 5), `"3"`, nil, false},
		{"ints", NonEmptyInts(), `[200, 201]`, []int{200, 201}, true},
		{"ints empty", NonEmptyInts(), `[]`, nil, false},
		{"ints as set", NonEmptyInts(), `[200, 301, 200, 301]`, []int{200, 301}, true},
		{"ints mixed", NonEmptyInts(), `[200, "ok"]`, nil, false},
		{"ints object", NonEmptyInts(), `{"a": 1}`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &input))
			got, ok := tt.rule(input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSchemaApply(t *testing.T) {
	schema := Schema{
		Required("id", Length(4)),
		Optional("url", NonEmptyString()),
		Optional("timeoutSeconds", IntBetween(1, 5)),
	}

	t.Run("valid", func(t *testing.T) {
		values, ok := schema.Apply(decode(t, `{"id":"abcd","url":"x","timeoutSeconds":3}`))
		assert.True(t, ok)
		assert.Equal(t, "abcd", values.String("id"))
		assert.Equal(t, 3, values.Int("timeoutSeconds"))
		assert.True(t, values.Any("url", "method"))
	})

	t.Run("invalid optional is absent", func(t *testing.T) {
		values, ok := schema.Apply(decode(t, `{"id":"abcd","timeoutSeconds":6}`))
		assert.True(t, ok)
		assert.False(t, values.Has("timeoutSeconds"))
		assert.False(t, values.Any("url", "timeoutSeconds"))
	})

	t.Run("missing required", func(t *testing.T) {
		_, ok := schema.Apply(decode(t, `{"url":"x"}`))
		assert.False(t, ok)
	})

	t.Run("invalid required", func(t *testing.T) {
		_, ok := schema.Apply(decode(t, `{"id":"abc"}`))
		assert.False(t, ok)
	})
}
