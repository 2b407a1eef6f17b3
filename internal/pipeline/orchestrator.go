package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"caregate/internal/ai"
	"caregate/internal/safety"
	"caregate/internal/vector"
)

// Fixed payload strings for terminal states.
const (
	emergencyAnswer      = "**EMERGENCY ASSISTANCE REQUIRED**"
	emergencyExplanation = "This query matches symptoms of a life-threatening medical emergency."
	emergencyRefusal     = "This query implies a medical emergency. Please call 911 immediately."

	insufficientAnswer      = "Insufficient evidence found."
	insufficientExplanation = "I could not find relevant medical documents to support an answer."

	degradedAnswer = "An internal error occurred while processing your request."
)

// Orchestrator composes the full query lifecycle:
// safety check, intent routing, retrieval, and synthesis.
type Orchestrator struct {
	gate        *safety.Gate
	router      *Router
	retriever   *Retriever
	synthesizer *Synthesizer
}

// New creates an orchestrator from its components.
func New(gate *safety.Gate, router *Router, retriever *Retriever, synthesizer *Synthesizer) *Orchestrator {
	return &Orchestrator{
		gate:        gate,
		router:      router,
		retriever:   retriever,
		synthesizer: synthesizer,
	}
}

// NewFromProvider wires a full orchestrator over one oracle provider
// and one vector index, with the built-in safety gate.
func NewFromProvider(provider ai.Provider, index *vector.Index) *Orchestrator {
	return New(
		safety.NewGate(),
		NewRouter(provider),
		NewRetriever(NewExpander(provider), index),
		NewSynthesizer(provider),
	)
}

// HandleQuery runs one query through the pipeline and always returns a
// complete response: downstream failures degrade to a Low-confidence
// answer rather than propagating to the caller.
func (o *Orchestrator) HandleQuery(ctx context.Context, query string) QueryResponse {
	// Safety check strictly precedes any oracle or index access.
	risk, disclaimer := o.gate.Classify(query)
	log.Printf("[Orchestrator] Processing query (risk: %s)", risk)

	if risk == safety.RiskHigh {
		return QueryResponse{
			Answer:        emergencyAnswer,
			Explanation:   emergencyExplanation,
			Confidence:    ConfidenceHigh,
			Evidence:      []vector.ScoredResult{},
			IsSafe:        false,
			RefusalReason: emergencyRefusal,
			RiskLevel:     risk,
			Disclaimer:    disclaimer,
		}
	}

	resp, err := o.process(ctx, query, risk)
	if err != nil {
		log.Printf("[Orchestrator] Pipeline error: %v", err)
		return QueryResponse{
			Answer:      degradedAnswer,
			Explanation: degradedDetail(err),
			Confidence:  ConfidenceLow,
			Evidence:    []vector.ScoredResult{},
			IsSafe:      true,
			RiskLevel:   risk,
			Disclaimer:  disclaimer,
		}
	}

	resp.RiskLevel = risk
	resp.Disclaimer = disclaimer
	return resp
}

func (o *Orchestrator) process(ctx context.Context, query string, risk safety.RiskLevel) (QueryResponse, error) {
	intent := o.router.Route(ctx, query)
	log.Printf("[Orchestrator] Detected intent: %s", intent)

	if intent == IntentDirect {
		syn, err := o.synthesizer.Synthesize(ctx, query, nil, risk, IntentDirect)
		if err != nil {
			return QueryResponse{}, err
		}
		// Direct answers have no retrieval scores to fuse; the
		// oracle's self-reported confidence stands.
		return QueryResponse{
			Answer:      syn.AnswerSummary,
			Explanation: syn.DetailedExplanation,
			Confidence:  syn.ConfidenceScore,
			Evidence:    []vector.ScoredResult{},
			IsSafe:      true,
		}, nil
	}

	evidence, err := o.retriever.Retrieve(ctx, query)
	if err != nil {
		return QueryResponse{}, err
	}

	if len(evidence) == 0 {
		return QueryResponse{
			Answer:      insufficientAnswer,
			Explanation: insufficientExplanation,
			Confidence:  ConfidenceLow,
			Evidence:    []vector.ScoredResult{},
			IsSafe:      true,
		}, nil
	}

	syn, err := o.synthesizer.Synthesize(ctx, query, evidence, risk, IntentResearch)
	if err != nil {
		return QueryResponse{}, err
	}

	// The deterministic fusion over retrieval scores is authoritative,
	// overriding the synthesizer's self-reported confidence.
	return QueryResponse{
		Answer:      syn.AnswerSummary,
		Explanation: syn.DetailedExplanation,
		Confidence:  FuseConfidence(evidence),
		Evidence:    evidence,
		IsSafe:      true,
	}, nil
}

// degradedDetail renders a pipeline error for the explanation field,
// surfacing raw oracle output on parse failures instead of guessing at
// fields.
func degradedDetail(err error) string {
	var parseErr *ai.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("%v (raw output: %s)", parseErr, parseErr.Raw)
	}
	return err.Error()
}
