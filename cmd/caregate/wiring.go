package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"caregate/internal/ai"
	"caregate/internal/config"
	"caregate/internal/corpus"
	"caregate/internal/embedding"
	"caregate/internal/pipeline"
	"caregate/internal/safety"
	"caregate/internal/vector"
)

// buildProvider constructs the default oracle provider from config.
func buildProvider(cfg *config.Config) (ai.Provider, error) {
	pc, err := cfg.Provider(cfg.AI.DefaultProvider)
	if err != nil {
		return nil, err
	}

	switch pc.Type {
	case "ollama":
		return ai.NewOllamaProvider(pc.Name, pc.Host, pc.Model), nil
	case "openai":
		return ai.NewOpenAIProvider(pc.Name, pc.APIKey, pc.Model)
	default:
		return nil, fmt.Errorf("unknown provider type %q", pc.Type)
	}
}

// buildEmbedder constructs the embedding backend from config.
func buildEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	ec := cfg.Embedding
	switch ec.Provider {
	case "tfidf":
		return embedding.NewTFIDF(ec.Dims), nil
	case "openai":
		return embedding.NewOpenAIEmbedder(ec.APIKey, ec.Model, ec.Dims), nil
	case "ollama":
		return embedding.NewOllamaEmbedder(ec.Host, ec.Model, ec.Dims), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}
}

// buildGate constructs the safety gate, with optional phrase overrides.
func buildGate(cfg *config.Config) (*safety.Gate, error) {
	if cfg.SafetyPhrasesFile == "" {
		return safety.NewGate(), nil
	}
	gate, err := safety.NewGateFromFile(cfg.SafetyPhrasesFile)
	if err != nil {
		return nil, err
	}
	log.Printf("[Main] Loaded safety phrases from %s", cfg.SafetyPhrasesFile)
	return gate, nil
}

// buildIndex creates the vector index, restoring from a snapshot when
// one exists and falling back to a full data-dir load otherwise.
func buildIndex(ctx context.Context, cfg *config.Config) (*vector.Index, *vector.SnapshotStore, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	splitter := vector.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	index := vector.NewIndex(embedder, splitter)

	var snapshots *vector.SnapshotStore
	if cfg.SnapshotPath != "" {
		snapshots, err = vector.OpenSnapshot(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot store: %w", err)
		}
		if err := index.Restore(ctx, snapshots); err != nil {
			log.Printf("[Main] Snapshot restore failed, rebuilding from data dir: %v", err)
		}
	}

	if index.Count() == 0 {
		if _, err := os.Stat(cfg.DataDir); err == nil {
			if _, err := corpus.LoadInto(ctx, index, cfg.DataDir); err != nil {
				return nil, nil, fmt.Errorf("load corpus: %w", err)
			}
			if snapshots != nil && index.Count() > 0 {
				if err := index.Snapshot(ctx, snapshots); err != nil {
					log.Printf("[Main] Initial snapshot failed: %v", err)
				}
			}
		} else {
			log.Printf("[Main] Data dir %s not found, starting with an empty index", cfg.DataDir)
		}
	}

	return index, snapshots, nil
}

// buildOrchestrator wires the full query pipeline from config.
func buildOrchestrator(cfg *config.Config, index *vector.Index) (*pipeline.Orchestrator, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	gate, err := buildGate(cfg)
	if err != nil {
		return nil, err
	}

	expander := pipeline.NewExpander(provider)
	return pipeline.New(
		gate,
		pipeline.NewRouter(provider),
		pipeline.NewRetriever(expander, index),
		pipeline.NewSynthesizer(provider),
	), nil
}
