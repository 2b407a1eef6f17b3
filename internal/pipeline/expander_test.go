package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"caregate/internal/ai"
)

func TestExpanderReturnsQueries(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["yoga health benefits", "effects of yoga practice", "yoga and wellbeing"]}`)

	e := NewExpander(mock)
	queries := e.Expand(context.Background(), "is yoga good for me?")

	assert.Equal(t, []string{
		"yoga health benefits",
		"effects of yoga practice",
		"yoga and wellbeing",
	}, queries)
}

func TestExpanderProviderErrorFallsBack(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddError(errors.New("timeout"))

	e := NewExpander(mock)
	queries := e.Expand(context.Background(), "is yoga good for me?")

	assert.Equal(t, []string{"is yoga good for me?"}, queries)
}

func TestExpanderGarbageOutputFallsBack(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse("sure, here are some queries!")

	e := NewExpander(mock)
	queries := e.Expand(context.Background(), "original")

	assert.Equal(t, []string{"original"}, queries)
}

func TestExpanderEmptyListFallsBack(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": []}`)

	e := NewExpander(mock)
	queries := e.Expand(context.Background(), "original")

	assert.Equal(t, []string{"original"}, queries)
}

func TestExpanderSkipsNonStringEntries(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["valid query", 42, "another valid query"]}`)

	e := NewExpander(mock)
	queries := e.Expand(context.Background(), "original")

	assert.Equal(t, []string{"valid query", "another valid query"}, queries)
}
