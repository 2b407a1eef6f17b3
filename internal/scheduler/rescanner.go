// Package scheduler periodically re-scans the data directory for new
// documents and ingests them into the vector index.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"caregate/internal/corpus"
	"caregate/internal/vector"
)

// Rescanner watches the data directory on a cron schedule. Sources
// already present in the index are skipped; only new files are
// ingested.
type Rescanner struct {
	dataDir string
	index   *vector.Index

	cron    *cron.Cron
	entryID cron.EntryID

	mu       sync.Mutex // serializes scans
	lastRun  time.Time
	runCount int
}

// NewRescanner creates a rescanner for the given data directory.
func NewRescanner(dataDir string, index *vector.Index) *Rescanner {
	return &Rescanner{
		dataDir: dataDir,
		index:   index,
		cron:    cron.New(),
	}
}

// Start schedules the rescan with the given cron expression and starts
// the scheduler.
func (r *Rescanner) Start(schedule string) error {
	entryID, err := r.cron.AddFunc(schedule, func() {
		if err := r.ScanOnce(context.Background()); err != nil {
			log.Printf("[Rescanner] Scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	r.entryID = entryID
	r.cron.Start()

	next := r.cron.Entry(entryID).Next
	log.Printf("[Rescanner] Watching %s (schedule %q, next run %v)", r.dataDir, schedule, next)
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish.
func (r *Rescanner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()

	r.mu.Lock()
	runs := r.runCount
	r.mu.Unlock()
	log.Printf("[Rescanner] Stopped after %d runs", runs)
}

// ScanOnce scans the data directory and ingests documents whose source
// is not yet indexed. Returns the first error from scanning or
// ingestion.
func (r *Rescanner) ScanOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRun = time.Now()
	r.runCount++

	docs, err := corpus.Scan(r.dataDir)
	if err != nil {
		return err
	}

	indexed := make(map[string]bool)
	for _, src := range r.index.Sources() {
		indexed[src] = true
	}

	var fresh []vector.Document
	for _, doc := range docs {
		if !indexed[doc.Source] {
			fresh = append(fresh, doc)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	n, err := r.index.Ingest(ctx, fresh)
	if err != nil {
		return err
	}
	log.Printf("[Rescanner] Ingested %d new documents (%d chunks)", len(fresh), n)
	return nil
}

// Status reports rescanner state for diagnostics.
func (r *Rescanner) Status() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := map[string]interface{}{
		"data_dir":  r.dataDir,
		"run_count": r.runCount,
	}
	if !r.lastRun.IsZero() {
		status["last_run"] = r.lastRun
	}
	if entry := r.cron.Entry(r.entryID); !entry.Next.IsZero() {
		status["next_run"] = entry.Next
	}
	return status
}
