package aiparse

import (
	"encoding/json"
	"errors"

	"github.com/plootony/MISTY/internal/domain"
)

// ErrMalformedShape reports a parsed value that is not a well-formed
// validation verdict.
var ErrMalformedShape = errors.New("malformed validation response")

// IsValidShape reports whether v is a verdict object with a strict boolean
// isValid. A negative verdict must carry a truthy reason or suggestion.
func IsValidShape(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	isValid, ok := obj["isValid"].(bool)
	if !ok {
		return false
	}
	if !isValid && !truthy(obj["reason"]) && !truthy(obj["suggestion"]) {
		return false
	}
	return true
}

// Normalize coerces v into a ValidationResult. It never fails: isValid is
// true only for an exact boolean true, and reason/suggestion are nil when
// absent or falsy.
func Normalize(v any) domain.ValidationResult {
	obj, _ := v.(map[string]any)

	isValid, _ := obj["isValid"].(bool)
	return domain.ValidationResult{
		IsValid:    isValid,
		Reason:     optionalString(obj["reason"]),
		Suggestion: optionalString(obj["suggestion"]),
	}
}

// ParseValidation runs ParseJSON, IsValidShape and Normalize in order.
func ParseValidation(text string) (domain.ValidationResult, error) {
	v, err := ParseJSON(text)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if !IsValidShape(v) {
		return domain.ValidationResult{}, ErrMalformedShape
	}
	return Normalize(v), nil
}

// optionalString keeps truthy values. Non-string values are rendered as JSON.
func optionalString(v any) *string {
	if !truthy(v) {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		s = string(b)
	}
	return &s
}

// truthy follows the loose truthiness model used by JSON producers:
// null, false, 0 and "" are falsy, everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
