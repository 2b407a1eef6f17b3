// Package pipeline implements the retrieval-augmented answering flow:
// risk gating, intent routing, query expansion, multi-query retrieval
// with deduplication, confidence fusion, and answer synthesis.
package pipeline

import (
	"caregate/internal/safety"
	"caregate/internal/vector"
)

// Intent is the routing decision for a query.
type Intent string

const (
	// IntentResearch means the query needs evidence retrieval.
	IntentResearch Intent = "RAG_RESEARCH"

	// IntentDirect means the query gets a conversational reply with no
	// retrieval.
	IntentDirect Intent = "DIRECT_ANSWER"
)

// Confidence is the coarse answer confidence bucket.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Synthesis is the structured output of the answer synthesizer.
type Synthesis struct {
	AnswerSummary       string     `json:"answer_summary"`
	DetailedExplanation string     `json:"detailed_explanation"`
	ConfidenceScore     Confidence `json:"confidence_score"`
	EvidenceUsed        []string   `json:"evidence_used"`
}

// QueryResponse is the assembled per-request response returned to the
// presentation layer.
type QueryResponse struct {
	Answer        string                `json:"answer"`
	Explanation   string                `json:"explanation"`
	Confidence    Confidence            `json:"confidence"`
	Evidence      []vector.ScoredResult `json:"evidence"`
	IsSafe        bool                  `json:"is_safe"`
	RefusalReason string                `json:"refusal_reason,omitempty"`
	RiskLevel     safety.RiskLevel      `json:"risk_level"`
	Disclaimer    string                `json:"disclaimer"`
}
