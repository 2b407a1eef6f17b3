package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// jsonObjectRe finds the outermost JSON object in a completion that may
// be wrapped in prose or markdown fences.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseError indicates the oracle returned content that could not be
// decoded into the expected structure. Raw carries the unparsed output
// so callers can surface it instead of guessing at fields.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ai: failed to parse structured output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvokeStructured calls the provider with a system instruction and a
// user message, expecting a JSON object back. The first {...} block in
// the completion is decoded; anything else yields a *ParseError.
func InvokeStructured(ctx context.Context, p Provider, system, user string) (map[string]any, error) {
	resp, err := p.GenerateResponse(ctx, &GenerateRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	content := resp.Content
	raw := content
	if match := jsonObjectRe.FindString(content); match != "" {
		raw = match
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &ParseError{Raw: content, Err: err}
	}
	return fields, nil
}

// StringField extracts a string field from a structured result,
// reporting whether it was present and a string.
func StringField(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringSliceField extracts a list of strings, skipping non-string
// elements.
func StringSliceField(fields map[string]any, key string) ([]string, bool) {
	v, ok := fields[key]
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
