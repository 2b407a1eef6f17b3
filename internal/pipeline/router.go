package pipeline

import (
	"context"
	"log"

	"caregate/internal/ai"
)

const routerPrompt = `You are an intent classifier for a medical AI.
Classify the user's query into one of two categories:

1. "RAG_RESEARCH": Steps needed to answer medical, biological, health, or factual questions.
2. "DIRECT_ANSWER": For greetings, compliments, "who are you", or simple queries not needing external retrieval.

OUTPUT FORMAT:
{ "intent": "RAG_RESEARCH" } or { "intent": "DIRECT_ANSWER" }`

// Router decides whether a query needs retrieval or a direct reply.
type Router struct {
	provider ai.Provider
}

// NewRouter creates an intent router backed by the given oracle.
func NewRouter(provider ai.Provider) *Router {
	return &Router{provider: provider}
}

// Route classifies the query. Any oracle failure, parse failure, or
// missing field defaults to IntentResearch: ambiguous input biases
// toward evidence gathering, never away from it.
func (r *Router) Route(ctx context.Context, query string) Intent {
	fields, err := ai.InvokeStructured(ctx, r.provider, routerPrompt, query)
	if err != nil {
		log.Printf("[Router] Intent classification failed, defaulting to research: %v", err)
		return IntentResearch
	}

	intent, ok := ai.StringField(fields, "intent")
	if !ok {
		return IntentResearch
	}
	if Intent(intent) == IntentDirect {
		return IntentDirect
	}
	return IntentResearch
}
