package pipeline

import (
	"context"
	"log"

	"caregate/internal/vector"
)

const (
	// perQueryK is the search fan-out for each expanded query.
	perQueryK = 3

	// fallbackK is the larger fan-out for the direct fallback search
	// when expansion retrieves nothing.
	fallbackK = 6

	// maxEvidence caps the evidence handed to synthesis.
	maxEvidence = 4

	// dedupPrefixLen is the content-prefix signature length. Two
	// distinct chunks sharing this prefix are treated as duplicates;
	// a known, accepted false-positive risk.
	dedupPrefixLen = 50
)

// Retriever drives query expansion and multi-query vector search,
// deduplicating and capping the merged result set.
type Retriever struct {
	expander *Expander
	index    *vector.Index
}

// NewRetriever creates a retrieval aggregator.
func NewRetriever(expander *Expander, index *vector.Index) *Retriever {
	return &Retriever{expander: expander, index: index}
}

// Retrieve returns up to maxEvidence deduplicated results in first-seen
// order across the expanded queries. When expansion retrieves nothing,
// one direct search on the original query with a larger k runs before
// giving up.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]vector.ScoredResult, error) {
	queries := r.expander.Expand(ctx, query)
	log.Printf("[Retriever] Searching with %d expanded queries", len(queries))

	var results []vector.ScoredResult
	seen := make(map[string]bool)

	for _, q := range queries {
		docs, err := r.index.Search(ctx, q, perQueryK)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			sig := prefixSignature(d.Content)
			if seen[sig] {
				continue
			}
			seen[sig] = true
			d.RetrievalMethod = "vector"
			results = append(results, d)
		}
	}

	if len(results) == 0 {
		docs, err := r.index.Search(ctx, query, fallbackK)
		if err != nil {
			return nil, err
		}
		results = docs
	}

	if len(results) > maxEvidence {
		results = results[:maxEvidence]
	}
	return results, nil
}

// prefixSignature returns the dedup signature for a chunk: its first
// dedupPrefixLen characters.
func prefixSignature(content string) string {
	runes := []rune(content)
	if len(runes) > dedupPrefixLen {
		runes = runes[:dedupPrefixLen]
	}
	return string(runes)
}

// FuseConfidence buckets the retained results' scores into a
// confidence level. Raw distances (lower = better) are inverted to
// similarities so that higher means more relevant, then combined as
// 60% best + 40% mean. This deterministic value overrides whatever the
// synthesizer self-reported.
func FuseConfidence(results []vector.ScoredResult) Confidence {
	if len(results) == 0 {
		return ConfidenceLow
	}

	best := 0.0
	sum := 0.0
	for _, r := range results {
		s := 1.0 / (1.0 + r.Score)
		if s > best {
			best = s
		}
		sum += s
	}
	mean := sum / float64(len(results))

	combined := 0.6*best + 0.4*mean
	switch {
	case combined >= 0.55:
		return ConfidenceHigh
	case combined >= 0.35:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
