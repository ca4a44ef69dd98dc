// Package aiparse turns free-text completions into structured values.
package aiparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput = errors.New("parse error: empty input")
	ErrNoJSON     = errors.New("parse error: no JSON found")
)

// ParseError reports that no JSON could be extracted. Cause holds the
// message of the first strict parse attempt.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNoJSON, e.Cause)
}

func (e *ParseError) Unwrap() error { return ErrNoJSON }

// ParseJSON extracts a JSON value from model output. The output may be
// wrapped in a ``` fence (optionally tagged json) or surrounded by prose.
func ParseJSON(text string) (any, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil, ErrEmptyInput
	}
	clean = stripFence(clean)

	var v any
	firstErr := json.Unmarshal([]byte(clean), &v)
	if firstErr == nil {
		return v, nil
	}

	if candidate, ok := firstObject(clean); ok {
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
	}
	return nil, &ParseError{Cause: firstErr.Error()}
}

// stripFence removes an opening ``` line (with optional json tag) and a
// trailing ``` from s. Text without a leading fence is returned as is.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	// The rest of the opening line is the fence's info string.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && strings.TrimSpace(body[:nl]) == "" {
		body = body[nl+1:]
	}
	body = strings.TrimRight(body, " \t\r\n")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// firstObject returns the first balanced {...} substring of s. Braces inside
// string literals are ignored, and escapes inside strings are honored.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		if end, ok := matchBrace(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
