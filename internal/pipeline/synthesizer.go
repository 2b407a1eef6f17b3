package pipeline

import (
	"context"
	"fmt"
	"strings"

	"caregate/internal/ai"
	"caregate/internal/safety"
	"caregate/internal/vector"
)

const directPrompt = `You are a helpful, friendly healthcare assistant.
The user has asked a conversational question (greeting, identity, etc.).
Answer politely and professionally. Do not make up medical facts.

OUTPUT JSON:
{
    "answer_summary": "Your polite response.",
    "detailed_explanation": "",
    "confidence_score": "High",
    "evidence_used": []
}`

const researchPromptFormat = `You are a safe, evidence-based healthcare assistant.
Risk Level of Query: %s

GOAL: Answer using ONLY the provided document context.

RULES:
1. DO NOT provide medical diagnosis or treatment.
2. If evidence is insufficient, state that clearly.
3. Cite sources specifically (e.g., "(WHO, 2024)").
4. Maintain a professional, empathetic tone.

OUTPUT JSON:
{
    "answer_summary": "Concise answer (max 3 sentences).",
    "detailed_explanation": "Thorough explanation with citations.",
    "confidence_score": "High/Medium/Low",
    "evidence_used": ["List of facts/quotes used"]
}`

// Synthesizer generates the final answer from retrieved evidence.
type Synthesizer struct {
	provider ai.Provider
}

// NewSynthesizer creates an answer synthesizer backed by the given oracle.
func NewSynthesizer(provider ai.Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize produces the structured answer. Direct intent gets a
// conversational reply with no document context; research intent is
// constrained to the supplied evidence. Oracle parse failures surface
// as *ai.ParseError carrying the raw content.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, evidence []vector.ScoredResult, risk safety.RiskLevel, intent Intent) (*Synthesis, error) {
	var fields map[string]any
	var err error

	if intent == IntentDirect {
		fields, err = ai.InvokeStructured(ctx, s.provider, directPrompt, query)
	} else {
		system := fmt.Sprintf(researchPromptFormat, risk)
		user := fmt.Sprintf("Query: %s\n\nDocument Context:\n%s", query, contextBlock(evidence))
		fields, err = ai.InvokeStructured(ctx, s.provider, system, user)
	}
	if err != nil {
		return nil, err
	}

	syn := &Synthesis{ConfidenceScore: ConfidenceLow}
	if v, ok := ai.StringField(fields, "answer_summary"); ok {
		syn.AnswerSummary = v
	}
	if v, ok := ai.StringField(fields, "detailed_explanation"); ok {
		syn.DetailedExplanation = v
	}
	if v, ok := ai.StringField(fields, "confidence_score"); ok {
		syn.ConfidenceScore = Confidence(v)
	}
	if v, ok := ai.StringSliceField(fields, "evidence_used"); ok {
		syn.EvidenceUsed = v
	}
	return syn, nil
}

// contextBlock concatenates evidence into labeled source blocks.
func contextBlock(evidence []vector.ScoredResult) string {
	blocks := make([]string, len(evidence))
	for i, e := range evidence {
		blocks[i] = fmt.Sprintf("Source (%s): %s", e.Source, e.Content)
	}
	return strings.Join(blocks, "\n\n")
}
