package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeStructured_CleanJSON(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.AddResponse(`{"intent": "DIRECT_ANSWER"}`)

	fields, err := InvokeStructured(context.Background(), mock, "classify", "hello")
	require.NoError(t, err)

	intent, ok := StringField(fields, "intent")
	assert.True(t, ok)
	assert.Equal(t, "DIRECT_ANSWER", intent)
}

func TestInvokeStructured_JSONEmbeddedInProse(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.AddResponse("Sure, here is the result:\n```json\n{\"queries\": [\"a\", \"b\"]}\n```\nDone.")

	fields, err := InvokeStructured(context.Background(), mock, "expand", "q")
	require.NoError(t, err)

	queries, ok := StringSliceField(fields, "queries")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, queries)
}

func TestInvokeStructured_ParseFailure(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.AddResponse("I cannot answer in JSON today.")

	_, err := InvokeStructured(context.Background(), mock, "sys", "usr")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "I cannot answer in JSON today.", parseErr.Raw)
}

func TestInvokeStructured_ProviderError(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.AddError(errors.New("connection refused"))

	_, err := InvokeStructured(context.Background(), mock, "sys", "usr")
	require.Error(t, err)

	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr), "provider errors are not parse errors")
}

func TestInvokeStructured_RequestShape(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.AddResponse(`{"ok": "yes"}`)

	_, err := InvokeStructured(context.Background(), mock, "system text", "user text")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	req := calls[0].Request
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "system text", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.True(t, req.JSONMode)
}

func TestStringSliceField_SkipsNonStrings(t *testing.T) {
	fields := map[string]any{"queries": []any{"a", 42, "b"}}

	queries, ok := StringSliceField(fields, "queries")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, queries)
}
