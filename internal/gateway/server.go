// Package gateway exposes the query pipeline over HTTP and WebSocket.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"caregate/internal/config"
	"caregate/internal/pipeline"
	"caregate/internal/vector"
)

// Server hosts the HTTP API in front of the orchestrator.
type Server struct {
	cfg          *config.Config
	orchestrator *pipeline.Orchestrator
	index        *vector.Index
	snapshots    *vector.SnapshotStore

	httpServer *http.Server
	upgrader   websocket.Upgrader
	startedAt  time.Time

	// Optional rescanner diagnostics surfaced in /health.
	rescanStatus func() map[string]interface{}

	// Serializes uploads so concurrent ingestion cannot interleave
	// embedding batches.
	ingestMu sync.Mutex
}

// NewServer creates a gateway server. snapshots may be nil; when set,
// the index is snapshotted after each successful upload.
func NewServer(cfg *config.Config, orch *pipeline.Orchestrator, index *vector.Index, snapshots *vector.SnapshotStore) *Server {
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		index:        index,
		snapshots:    snapshots,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/documents", s.handleDocuments)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.corsMiddleware(s.requestIDMiddleware(mux)),
	}
	return s
}

// SetRescanStatus wires rescanner diagnostics into the health payload.
func (s *Server) SetRescanStatus(fn func() map[string]interface{}) {
	s.rescanStatus = fn
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.startedAt = time.Now()
	log.Printf("[Gateway] Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware allows cross-origin browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an ID for log correlation.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[Gateway] %s %s (%s) %v", r.Method, r.URL.Path, reqID, time.Since(start))
	})
}
