package pipeline

import (
	"context"
	"log"

	"caregate/internal/ai"
)

const expanderPrompt = `You are a medical search expert.
Generate 3 diverse search queries to retrieve relevant medical information for the user's request.
Focus on medical terminology, synonyms, and related conditions.

OUTPUT FORMAT:
{ "queries": ["query 1", "query 2", "query 3"] }`

// Expander produces diversified search queries for a user question.
type Expander struct {
	provider ai.Provider
}

// NewExpander creates a query expander backed by the given oracle.
func NewExpander(provider ai.Provider) *Expander {
	return &Expander{provider: provider}
}

// Expand returns at least one query. Expansion failure never aborts
// retrieval: on any oracle or parse failure the original query is
// returned unchanged as the single element.
func (e *Expander) Expand(ctx context.Context, query string) []string {
	fields, err := ai.InvokeStructured(ctx, e.provider, expanderPrompt, query)
	if err != nil {
		log.Printf("[Expander] Query expansion failed, using original query: %v", err)
		return []string{query}
	}

	queries, ok := ai.StringSliceField(fields, "queries")
	if !ok || len(queries) == 0 {
		return []string{query}
	}
	return queries
}
