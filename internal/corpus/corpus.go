// Package corpus discovers and loads source documents from the data
// directory.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"caregate/internal/extract"
	"caregate/internal/vector"
)

// Scan walks dir recursively and extracts text from every supported
// file. Unsupported files and extraction failures are skipped with a
// log line; they never abort the scan. Document sources are paths
// relative to dir.
func Scan(dir string) ([]vector.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus: %s is not a directory", dir)
	}

	var docs []vector.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Dot directories hold editor and VCS state, not corpus text.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !extract.Supported(d.Name()) {
			return nil
		}

		text, err := extract.FromFile(path)
		if err != nil {
			if errors.Is(err, extract.ErrNoText) {
				log.Printf("[Corpus] Skipping empty file: %s", path)
				return nil
			}
			log.Printf("[Corpus] Skipping unreadable file %s: %v", path, err)
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, vector.Document{Source: rel, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus: walk data dir: %w", err)
	}

	log.Printf("[Corpus] Found %d documents in %s", len(docs), dir)
	return docs, nil
}

// LoadInto scans dir and ingests everything found into the index.
// Returns the number of chunks indexed.
func LoadInto(ctx context.Context, ix *vector.Index, dir string) (int, error) {
	docs, err := Scan(dir)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		log.Printf("[Corpus] No documents to ingest from %s", dir)
		return 0, nil
	}
	return ix.Ingest(ctx, docs)
}
