// Package vector owns chunked document embeddings and exact
// nearest-neighbor search over them.
package vector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"caregate/internal/embedding"
)

// ErrNoChunks indicates a document yielded no indexable text.
var ErrNoChunks = errors.New("vector: no chunks produced from document")

// Chunk is the unit of retrieval: a bounded slice of a document's text.
type Chunk struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Document is a raw source document handed to ingestion.
type Document struct {
	Source string
	Text   string
}

// ScoredResult is a chunk annotated with a search distance
// (lower = more similar).
type ScoredResult struct {
	Content         string  `json:"content"`
	Source          string  `json:"source"`
	Score           float64 `json:"score"`
	RetrievalMethod string  `json:"retrieval_method,omitempty"`
}

// Index stores chunk embeddings and their metadata positionally
// aligned: position i in the flat vector store always corresponds to
// meta[i]. All mutation happens under mu; searches take the read lock.
type Index struct {
	embedder embedding.Embedder
	splitter *Splitter

	mu   sync.RWMutex
	flat *Flat
	meta []Chunk
}

// NewIndex creates an empty index.
func NewIndex(e embedding.Embedder, s *Splitter) *Index {
	if s == nil {
		s = NewSplitter(500, 50)
	}
	return &Index{
		embedder: e,
		splitter: s,
		flat:     NewFlat(),
	}
}

// Ingest bulk-loads documents: chunks each one, embeds all chunks in a
// single batch call, and appends embeddings and metadata positionally.
// Documents yielding no text are skipped. Returns the number of chunks
// indexed.
func (ix *Index) Ingest(ctx context.Context, docs []Document) (int, error) {
	var chunks []Chunk
	for _, doc := range docs {
		for _, content := range ix.splitter.Split(doc.Text) {
			chunks = append(chunks, Chunk{Source: doc.Source, Content: content})
		}
	}
	if len(chunks) == 0 {
		log.Printf("[Index] No chunks to ingest across %d documents", len(docs))
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("vector: embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("vector: embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.flat.Add(vectors); err != nil {
		return 0, err
	}
	ix.meta = append(ix.meta, chunks...)

	log.Printf("[Index] Ingested %d chunks from %d documents (total %d)", len(chunks), len(docs), len(ix.meta))
	return len(chunks), nil
}

// Add incrementally ingests one document. Returns ErrNoChunks (wrapped)
// when the text yields nothing usable; the existing index is untouched
// in that case.
func (ix *Index) Add(ctx context.Context, source, text string) (int, error) {
	n, err := ix.Ingest(ctx, []Document{{Source: source, Text: text}})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoChunks, source)
	}
	return n, nil
}

// Search embeds the query and returns up to k results ordered by
// ascending distance. An empty index returns an empty slice, never an
// error. Out-of-range neighbor positions are filtered out.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]ScoredResult, error) {
	ix.mu.RLock()
	empty := ix.flat.Len() == 0
	ix.mu.RUnlock()
	if empty {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("vector: embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	neighbors, err := ix.flat.Search(vectors[0], k)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredResult, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Position < 0 || n.Position >= len(ix.meta) {
			continue
		}
		chunk := ix.meta[n.Position]
		results = append(results, ScoredResult{
			Content: chunk.Content,
			Source:  chunk.Source,
			Score:   float64(n.Distance),
		})
	}
	return results, nil
}

// Count returns the number of indexed entries.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.meta)
}

// Sources returns the distinct source names currently indexed.
func (ix *Index) Sources() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]bool)
	var sources []string
	for _, c := range ix.meta {
		if !seen[c.Source] {
			seen[c.Source] = true
			sources = append(sources, c.Source)
		}
	}
	return sources
}

// trainable is implemented by local embedders whose vocabulary must be
// rebuilt when an index is restored from a snapshot.
type trainable interface {
	Train(documents []string)
}

// Snapshot writes the current entries to the store, replacing any
// previous snapshot.
func (ix *Index) Snapshot(ctx context.Context, store *SnapshotStore) error {
	ix.mu.RLock()
	chunks := make([]Chunk, len(ix.meta))
	copy(chunks, ix.meta)
	vectors := make([][]float32, len(ix.flat.vectors))
	copy(vectors, ix.flat.vectors)
	ix.mu.RUnlock()

	return store.Save(ctx, chunks, vectors)
}

// Restore replaces the index contents with a previously saved snapshot.
// Local trainable embedders are retrained on the restored chunk text so
// query embeddings keep the snapshot's dimensionality.
func (ix *Index) Restore(ctx context.Context, store *SnapshotStore) error {
	chunks, vectors, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("vector: snapshot misaligned: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	if tr, ok := ix.embedder.(trainable); ok {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		tr.Train(texts)
	}

	flat := NewFlat()
	if err := flat.Add(vectors); err != nil {
		return err
	}

	ix.mu.Lock()
	ix.flat = flat
	ix.meta = chunks
	ix.mu.Unlock()

	log.Printf("[Index] Restored %d chunks from snapshot", len(chunks))
	return nil
}
