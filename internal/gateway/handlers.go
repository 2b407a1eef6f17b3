package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caregate/internal/extract"
	"caregate/internal/version"
)

// maxUploadBytes bounds document uploads.
const maxUploadBytes = 20 << 20 // 20 MB

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version,omitempty"`
	Uptime        string    `json:"uptime"`
	IndexedChunks int       `json:"indexed_chunks"`

	Rescanner map[string]interface{} `json:"rescanner,omitempty"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uptime := "unknown"
	if !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Round(time.Second).String()
	}

	resp := HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now(),
		Version:       version.Info(),
		Uptime:        uptime,
		IndexedChunks: s.index.Count(),
	}
	if s.rescanStatus != nil {
		resp.Rescanner = s.rescanStatus()
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, resp)
}

// handleQuery handles POST /api/query
// Request: {"question": "..."}
// Response: the full pipeline response, always 200 once the question
// parses; pipeline failures degrade inside the response body.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSONError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp := s.orchestrator.HandleQuery(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, resp)
}

// handleUpload handles POST /api/upload (multipart, field "file").
// The file is saved to the data directory, its text extracted, and the
// chunks indexed immediately.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		writeJSONError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	if !extract.Supported(name) {
		writeJSONError(w, http.StatusBadRequest, "unsupported file type: "+filepath.Ext(name))
		return
	}

	if err := os.MkdirAll(s.cfg.DataDir, 0755); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "data dir unavailable: "+err.Error())
		return
	}

	dest := filepath.Join(s.cfg.DataDir, name)
	out, err := os.Create(dest)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "save failed: "+err.Error())
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dest)
		writeJSONError(w, http.StatusInternalServerError, "save failed: "+err.Error())
		return
	}
	out.Close()

	text, err := extract.FromFile(dest)
	if err != nil {
		os.Remove(dest)
		if errors.Is(err, extract.ErrNoText) {
			writeJSONError(w, http.StatusBadRequest, "file contains no extractable text")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "extraction failed: "+err.Error())
		return
	}

	s.ingestMu.Lock()
	chunks, err := s.index.Add(r.Context(), name, text)
	s.ingestMu.Unlock()
	if err != nil {
		os.Remove(dest)
		writeJSONError(w, http.StatusInternalServerError, "indexing failed: "+err.Error())
		return
	}

	s.persistSnapshot()

	log.Printf("[Gateway] Uploaded %s (%d chunks)", name, chunks)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":       name,
		"chunks_indexed": chunks,
	})
}

// handleDocuments handles GET /api/documents
// Response: {"sources": [...], "chunks": n}
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sources := s.index.Sources()
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"chunks":  s.index.Count(),
	})
}

// persistSnapshot writes the index to the snapshot store, if configured.
func (s *Server) persistSnapshot() {
	if s.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.index.Snapshot(ctx, s.snapshots); err != nil {
		log.Printf("[Gateway] Snapshot failed: %v", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
