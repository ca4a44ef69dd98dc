package aiparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plootony/MISTY/internal/aiparse"
	"github.com/plootony/MISTY/internal/domain"
)

func TestIsValidShape(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"valid true", map[string]any{"isValid": true}, true},
		{"false with reason", map[string]any{"isValid": false, "reason": "не по теме"}, true},
		{"false with suggestion", map[string]any{"isValid": false, "suggestion": "спросите иначе"}, true},
		{"false with numeric reason", map[string]any{"isValid": false, "reason": 1.0}, true},
		{"false without explanation", map[string]any{"isValid": false}, false},
		{"false with empty strings", map[string]any{"isValid": false, "reason": "", "suggestion": ""}, false},
		{"false with nulls", map[string]any{"isValid": false, "reason": nil, "suggestion": nil}, false},
		{"false with zero and false", map[string]any{"isValid": false, "reason": 0.0, "suggestion": false}, false},
		{"string isValid", map[string]any{"isValid": "true"}, false},
		{"numeric isValid", map[string]any{"isValid": 1.0}, false},
		{"missing isValid", map[string]any{"reason": "x"}, false},
		{"not an object", []any{true}, false},
		{"nil", nil, false},
		{"string", "isValid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aiparse.IsValidShape(tt.in))
		})
	}
}

func TestNormalize_NonBooleanIsValid(t *testing.T) {
	for _, v := range []any{"true", 1.0, nil, map[string]any{}, []any{true}} {
		got := aiparse.Normalize(map[string]any{"isValid": v})
		assert.False(t, got.IsValid, "isValid=%v", v)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	got := aiparse.Normalize(map[string]any{"isValid": true, "reason": "", "suggestion": false})
	assert.Equal(t, domain.ValidationResult{IsValid: true}, got)
	assert.Nil(t, got.Reason)
	assert.Nil(t, got.Suggestion)

	assert.Equal(t, domain.ValidationResult{}, aiparse.Normalize("not an object"))
	assert.Equal(t, domain.ValidationResult{}, aiparse.Normalize(nil))
}

func TestNormalize_KeepsExplanation(t *testing.T) {
	got := aiparse.Normalize(map[string]any{
		"isValid":    false,
		"reason":     "не по теме",
		"suggestion": "спросите о личной жизни",
	})
	assert.False(t, got.IsValid)
	require.NotNil(t, got.Reason)
	require.NotNil(t, got.Suggestion)
	assert.Equal(t, "не по теме", *got.Reason)
	assert.Equal(t, "спросите о личной жизни", *got.Suggestion)
}

func TestParseValidation(t *testing.T) {
	got, err := aiparse.ParseValidation("```json\n{\"isValid\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationResult{IsValid: true}, got)

	_, err = aiparse.ParseValidation(`{"isValid": false}`)
	assert.ErrorIs(t, err, aiparse.ErrMalformedShape)

	_, err = aiparse.ParseValidation("no json here")
	assert.ErrorIs(t, err, aiparse.ErrNoJSON)
}
