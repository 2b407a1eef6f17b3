package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"caregate/internal/pipeline"
	"caregate/internal/safety"
	"caregate/internal/vector"
)

func newBareModel() Model {
	return NewModel(ModelConfig{Styles: DefaultStyles()})
}

func TestRenderAnswerSafe(t *testing.T) {
	m := newBareModel()
	out := m.renderAnswer(pipeline.QueryResponse{
		Answer:      "Yoga helps flexibility.",
		Explanation: "Per indexed guidance.",
		Confidence:  pipeline.ConfidenceMedium,
		Evidence: []vector.ScoredResult{
			{Source: "yoga.txt"}, {Source: "yoga.txt"}, {Source: "sleep.txt"},
		},
		IsSafe:     true,
		Disclaimer: safety.Disclaimer(safety.RiskLow),
	})

	assert.Contains(t, out, "Yoga helps flexibility.")
	assert.Contains(t, out, "Per indexed guidance.")
	assert.Contains(t, out, "Sources: yoga.txt, sleep.txt")
	assert.Contains(t, out, safety.Disclaimer(safety.RiskLow))
}

func TestRenderAnswerRefusal(t *testing.T) {
	m := newBareModel()
	out := m.renderAnswer(pipeline.QueryResponse{
		Answer:        "**EMERGENCY ASSISTANCE REQUIRED**",
		Confidence:    pipeline.ConfidenceHigh,
		IsSafe:        false,
		RefusalReason: "This query implies a medical emergency. Please call 911 immediately.",
		Disclaimer:    safety.Disclaimer(safety.RiskHigh),
	})

	assert.Contains(t, out, "EMERGENCY ASSISTANCE REQUIRED")
	assert.Contains(t, out, "call 911")
}

func TestRenderConfidenceLabels(t *testing.T) {
	m := newBareModel()
	assert.Contains(t, m.renderConfidence(pipeline.ConfidenceHigh), "High")
	assert.Contains(t, m.renderConfidence(pipeline.ConfidenceMedium), "Medium")
	assert.Contains(t, m.renderConfidence(pipeline.ConfidenceLow), "Low")
}
