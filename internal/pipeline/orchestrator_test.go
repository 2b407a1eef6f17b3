package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caregate/internal/ai"
	"caregate/internal/embedding"
	"caregate/internal/safety"
	"caregate/internal/vector"
)

func TestHandleQueryEmergencyBlocks(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	ix := newTestIndex(t, []vector.Document{
		{Source: "cardio.txt", Text: "Cardiovascular exercise strengthens the heart muscle."},
	})

	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "I think I am having a heart attack")

	assert.Equal(t, "**EMERGENCY ASSISTANCE REQUIRED**", resp.Answer)
	assert.Equal(t, ConfidenceHigh, resp.Confidence)
	assert.False(t, resp.IsSafe)
	assert.Equal(t, "This query implies a medical emergency. Please call 911 immediately.", resp.RefusalReason)
	assert.Equal(t, safety.RiskHigh, resp.RiskLevel)
	assert.NotEmpty(t, resp.Disclaimer)
	assert.Empty(t, resp.Evidence)

	// The block happens before any model or index access.
	assert.Equal(t, 0, mock.CallCount())
}

func TestHandleQueryDirectAnswer(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"intent": "DIRECT_ANSWER"}`)
	mock.AddResponse(`{"answer_summary": "Hello! I am a healthcare assistant.", "detailed_explanation": "", "confidence_score": "High", "evidence_used": []}`)

	ix := vector.NewIndex(embedding.NewTFIDF(0), nil)
	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "who are you?")

	assert.Equal(t, "Hello! I am a healthcare assistant.", resp.Answer)
	assert.Equal(t, ConfidenceHigh, resp.Confidence)
	assert.True(t, resp.IsSafe)
	assert.Empty(t, resp.Evidence)
	assert.Equal(t, safety.RiskLow, resp.RiskLevel)

	// Router plus synthesizer only; no expansion on the direct path.
	assert.Equal(t, 2, mock.CallCount())
}

func TestHandleQueryResearchPath(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"intent": "RAG_RESEARCH"}`)
	mock.AddResponse(`{"queries": ["yoga health benefits", "effects of yoga on stress", "yoga flexibility"]}`)
	mock.AddResponse(`{"answer_summary": "Yoga supports flexibility and stress reduction.", "detailed_explanation": "Indexed guidance describes both effects (yoga.txt).", "confidence_score": "Low", "evidence_used": ["improves flexibility", "reduces stress"]}`)

	ix := newTestIndex(t, []vector.Document{
		{Source: "yoga.txt", Text: "Yoga improves flexibility and reduces stress in regular practitioners."},
		{Source: "sleep.txt", Text: "Adults need seven to nine hours of sleep each night."},
	})

	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "what are the benefits of yoga?")

	assert.Equal(t, "Yoga supports flexibility and stress reduction.", resp.Answer)
	assert.True(t, resp.IsSafe)
	require.NotEmpty(t, resp.Evidence)
	assert.Equal(t, "yoga.txt", resp.Evidence[0].Source)
	assert.Equal(t, 3, mock.CallCount())

	// Deterministic fusion overrides the oracle's self-reported "Low".
	assert.Equal(t, FuseConfidence(resp.Evidence), resp.Confidence)
}

func TestHandleQueryInsufficientEvidence(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"intent": "RAG_RESEARCH"}`)
	mock.AddResponse(`{"queries": ["anything"]}`)

	ix := vector.NewIndex(embedding.NewTFIDF(0), nil)
	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "what is the capital of France?")

	assert.Equal(t, "Insufficient evidence found.", resp.Answer)
	assert.Equal(t, "I could not find relevant medical documents to support an answer.", resp.Explanation)
	assert.Equal(t, ConfidenceLow, resp.Confidence)
	assert.True(t, resp.IsSafe)
	assert.Empty(t, resp.Evidence)

	// The synthesizer is never consulted without evidence.
	assert.Equal(t, 2, mock.CallCount())
}

func TestHandleQuerySynthesisFailureDegrades(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"intent": "RAG_RESEARCH"}`)
	mock.AddResponse(`{"queries": ["yoga benefits"]}`)
	mock.AddResponse("model went off the rails here")

	ix := newTestIndex(t, []vector.Document{
		{Source: "yoga.txt", Text: "Yoga improves flexibility and reduces stress."},
	})

	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "what are the benefits of yoga?")

	assert.Equal(t, "An internal error occurred while processing your request.", resp.Answer)
	assert.Contains(t, resp.Explanation, "model went off the rails here")
	assert.Equal(t, ConfidenceLow, resp.Confidence)
	assert.True(t, resp.IsSafe)
	assert.Empty(t, resp.Evidence)
}

func TestHandleQueryModerateRiskDisclaimer(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"intent": "RAG_RESEARCH"}`)
	mock.AddResponse(`{"queries": ["fever treatment guidance"]}`)
	mock.AddResponse(`{"answer_summary": "Rest and fluids are commonly advised.", "detailed_explanation": "General guidance only (fever.txt).", "confidence_score": "Medium", "evidence_used": []}`)

	ix := newTestIndex(t, []vector.Document{
		{Source: "fever.txt", Text: "Fever treatment guidance recommends rest and fluids for mild cases."},
	})

	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "what is the treatment for a mild fever?")

	assert.Equal(t, safety.RiskModerate, resp.RiskLevel)
	assert.Equal(t, safety.Disclaimer(safety.RiskModerate), resp.Disclaimer)
	assert.True(t, resp.IsSafe)
}

func TestQueryResponseJSONShape(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	ix := vector.NewIndex(embedding.NewTFIDF(0), nil)

	o := NewFromProvider(mock, ix)
	resp := o.HandleQuery(context.Background(), "I took an overdose")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"answer", "explanation", "confidence", "evidence", "is_safe", "refusal_reason", "risk_level", "disclaimer"} {
		assert.Contains(t, decoded, key)
	}
	// Evidence serializes as an empty array, not null.
	assert.Equal(t, []any{}, decoded["evidence"])
}
