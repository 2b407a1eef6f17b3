package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caregate/internal/ai"
	"caregate/internal/embedding"
	"caregate/internal/vector"
)

func newTestIndex(t *testing.T, docs []vector.Document) *vector.Index {
	t.Helper()
	ix := vector.NewIndex(embedding.NewTFIDF(0), nil)
	_, err := ix.Ingest(context.Background(), docs)
	require.NoError(t, err)
	return ix
}

func TestRetrieveDeduplicatesAcrossQueries(t *testing.T) {
	ix := newTestIndex(t, []vector.Document{
		{Source: "yoga.txt", Text: "Yoga improves flexibility and reduces stress."},
		{Source: "sleep.txt", Text: "Adults need seven to nine hours of sleep nightly."},
	})

	// Both expanded queries hit the same two chunks; dedup keeps each once.
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["yoga flexibility stress", "yoga flexibility stress"]}`)

	r := NewRetriever(NewExpander(mock), ix)
	results, err := r.Retrieve(context.Background(), "is yoga good for stress?")
	require.NoError(t, err)

	require.Len(t, results, 2)
	contents := make(map[string]bool)
	for _, res := range results {
		assert.False(t, contents[res.Content], "duplicate content retained: %s", res.Content)
		contents[res.Content] = true
		assert.Equal(t, "vector", res.RetrievalMethod)
	}
}

func TestRetrieveCollapsesSharedPrefixes(t *testing.T) {
	// Chunks that agree beyond the 50-rune signature window collapse
	// even when their full contents differ; the first-seen one survives.
	prefix := "Gentle yoga practice supports balance and calm breathing."
	ix := newTestIndex(t, []vector.Document{
		{Source: "yoga.txt", Text: prefix + " Daily stretching keeps joints supple."},
		{Source: "copy.txt", Text: prefix + " Hydration matters during long sessions."},
	})

	// The first expanded query matches yoga.txt's tail, so it is seen
	// first; copy.txt then dedups against it despite its distinct body.
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["stretching supple joints", "hydration long sessions"]}`)

	r := NewRetriever(NewExpander(mock), ix)
	results, err := r.Retrieve(context.Background(), "is yoga good for balance?")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "yoga.txt", results[0].Source)
	assert.Contains(t, results[0].Content, "joints supple")
}

func TestRetrieveFirstSeenOrder(t *testing.T) {
	ix := newTestIndex(t, []vector.Document{
		{Source: "yoga.txt", Text: "Yoga improves flexibility and reduces stress levels."},
		{Source: "run.txt", Text: "Running strengthens the cardiovascular system."},
	})

	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["yoga flexibility stress", "running cardiovascular"]}`)

	r := NewRetriever(NewExpander(mock), ix)
	results, err := r.Retrieve(context.Background(), "exercise benefits")
	require.NoError(t, err)

	// The first query's best hit leads the merged list.
	require.NotEmpty(t, results)
	assert.Equal(t, "yoga.txt", results[0].Source)
}

func TestRetrieveCapsEvidence(t *testing.T) {
	ix := newTestIndex(t, []vector.Document{
		{Source: "a.txt", Text: "Yoga improves flexibility in older adults."},
		{Source: "b.txt", Text: "Yoga reduces stress and anxiety symptoms."},
		{Source: "c.txt", Text: "Yoga practice supports better sleep quality."},
		{Source: "d.txt", Text: "Yoga postures build core strength gradually."},
		{Source: "e.txt", Text: "Yoga breathing exercises lower blood pressure."},
		{Source: "f.txt", Text: "Yoga sessions improve balance and posture."},
	})

	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["yoga flexibility", "yoga stress anxiety", "yoga sleep strength"]}`)

	r := NewRetriever(NewExpander(mock), ix)
	results, err := r.Retrieve(context.Background(), "what does yoga help with?")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(results), 4)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	ix := vector.NewIndex(embedding.NewTFIDF(0), nil)

	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"queries": ["anything at all"]}`)

	r := NewRetriever(NewExpander(mock), ix)
	results, err := r.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveExpansionFailureStillSearches(t *testing.T) {
	ix := newTestIndex(t, []vector.Document{
		{Source: "yoga.txt", Text: "Yoga improves flexibility and reduces stress."},
	})

	mock := ai.NewMockProvider("mock")
	mock.AddResponse("not json at all")

	r := NewRetriever(NewExpander(mock), ix)
	results, err := r.Retrieve(context.Background(), "yoga flexibility stress")
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestFuseConfidenceEmpty(t *testing.T) {
	assert.Equal(t, ConfidenceLow, FuseConfidence(nil))
}

func TestFuseConfidenceBuckets(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Confidence
	}{
		{"exact matches", []float64{0.0, 0.0}, ConfidenceHigh},
		{"close matches", []float64{0.2, 0.4}, ConfidenceHigh},
		{"moderate distances", []float64{1.0, 1.5}, ConfidenceMedium},
		{"far matches", []float64{4.0, 5.0}, ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]vector.ScoredResult, len(tt.scores))
			for i, s := range tt.scores {
				results[i] = vector.ScoredResult{Score: s}
			}
			assert.Equal(t, tt.want, FuseConfidence(results))
		})
	}
}

func TestFuseConfidenceCloserIsNeverWorse(t *testing.T) {
	order := map[Confidence]int{ConfidenceLow: 0, ConfidenceMedium: 1, ConfidenceHigh: 2}

	far := FuseConfidence([]vector.ScoredResult{{Score: 2.0}, {Score: 2.0}})
	near := FuseConfidence([]vector.ScoredResult{{Score: 0.5}, {Score: 0.5}})

	assert.GreaterOrEqual(t, order[near], order[far])
}
