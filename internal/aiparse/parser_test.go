package aiparse_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plootony/MISTY/internal/aiparse"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "plain object",
			input: `{"isValid": true}`,
			want:  map[string]any{"isValid": true},
		},
		{
			name:  "surrounding whitespace",
			input: "\n\t  {\"isValid\": false, \"reason\": \"x\"}  \n",
			want:  map[string]any{"isValid": false, "reason": "x"},
		},
		{
			name:  "json fence",
			input: "```json\n{\"isValid\": true}\n```",
			want:  map[string]any{"isValid": true},
		},
		{
			name:  "upper-case tag",
			input: "```JSON\n{\"isValid\": true}\n```",
			want:  map[string]any{"isValid": true},
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\": [1, 2]}\n```",
			want:  map[string]any{"a": []any{1.0, 2.0}},
		},
		{
			name:  "prose around object",
			input: "Вот ответ: {\"isValid\": true, \"reason\": null} Надеюсь, помог.",
			want:  map[string]any{"isValid": true, "reason": nil},
		},
		{
			name:  "braces inside strings",
			input: `Sure! {"reason": "use } and { freely", "isValid": false} trailing }`,
			want:  map[string]any{"reason": "use } and { freely", "isValid": false},
		},
		{
			name:  "escaped quote inside string",
			input: `text {"reason": "say \"hi}\"", "isValid": false} more`,
			want:  map[string]any{"reason": `say "hi}"`, "isValid": false},
		},
		{
			name:  "unbalanced brace before object",
			input: `oops { not closed... {"isValid": true}`,
			want:  map[string]any{"isValid": true},
		},
		{
			name:  "nested object",
			input: `answer: {"a": {"b": {"c": 1}}} done`,
			want:  map[string]any{"a": map[string]any{"b": map[string]any{"c": 1.0}}},
		},
		{
			name:  "top-level array",
			input: `[1, 2, 3]`,
			want:  []any{1.0, 2.0, 3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aiparse.ParseJSON(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseJSON mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseJSON_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := aiparse.ParseJSON(in)
		assert.ErrorIs(t, err, aiparse.ErrEmptyInput, "input %q", in)
	}
}

func TestParseJSON_NoJSON(t *testing.T) {
	for _, in := range []string{
		"this is not json at all",
		"{ never closed",
		`prefix {"broken": } suffix`,
	} {
		_, err := aiparse.ParseJSON(in)
		require.ErrorIs(t, err, aiparse.ErrNoJSON, "input %q", in)

		var pe *aiparse.ParseError
		require.True(t, errors.As(err, &pe))
		assert.NotEmpty(t, pe.Cause, "underlying parse error should be kept")
	}
}

// Fence stripping must not change what a well-formed document parses to.
func TestParseJSON_FenceIsLossless(t *testing.T) {
	docs := []string{
		`{"isValid": true}`,
		`{"isValid": false, "reason": "не по теме", "suggestion": "спросите о личной жизни"}`,
		`{"nested": {"list": [1, "two", {"three": 3}]}, "s": "a ` + "```" + ` b"}`,
		`{"multi": "line\nvalue"}`,
	}
	for _, doc := range docs {
		var direct any
		require.NoError(t, json.Unmarshal([]byte(doc), &direct))

		for _, wrapped := range []string{
			"```json\n" + doc + "\n```",
			"```\n" + doc + "\n```",
			"  ```json\n" + doc + "\n```  \n",
		} {
			got, err := aiparse.ParseJSON(wrapped)
			require.NoError(t, err, "wrapped %q", wrapped)
			if diff := cmp.Diff(direct, got); diff != "" {
				t.Errorf("fenced parse differs (-direct +fenced):\n%s", diff)
			}
		}
	}
}
