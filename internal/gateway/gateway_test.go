package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caregate/internal/ai"
	"caregate/internal/config"
	"caregate/internal/embedding"
	"caregate/internal/pipeline"
	"caregate/internal/vector"
)

func newTestServer(t *testing.T, mock *ai.MockProvider, docs []vector.Document) *Server {
	t.Helper()

	ix := vector.NewIndex(embedding.NewTFIDF(0), nil)
	if len(docs) > 0 {
		_, err := ix.Ingest(context.Background(), docs)
		require.NoError(t, err)
	}

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	orch := pipeline.NewFromProvider(mock, ix)
	return NewServer(cfg, orch, ix, nil)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), []vector.Document{
		{Source: "a.txt", Text: "Yoga improves flexibility."},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.IndexedChunks)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthIncludesRescannerStatus(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)
	s.SetRescanStatus(func() map[string]interface{} {
		return map[string]interface{}{"data_dir": "./data", "run_count": 3}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Rescanner)
	assert.Equal(t, "./data", resp.Rescanner["data_dir"])
	assert.EqualValues(t, 3, resp.Rescanner["run_count"])
}

func TestQueryEndpointEmergency(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	s := newTestServer(t, mock, nil)

	body := strings.NewReader(`{"question": "I am having a heart attack"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/query", body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp pipeline.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsSafe)
	assert.NotEmpty(t, resp.RefusalReason)
	assert.Equal(t, 0, mock.CallCount())
}

func TestQueryEndpointResearch(t *testing.T) {
	mock := ai.NewMockProvider("mock")
	mock.AddResponse(`{"intent": "RAG_RESEARCH"}`)
	mock.AddResponse(`{"queries": ["yoga benefits"]}`)
	mock.AddResponse(`{"answer_summary": "Yoga helps flexibility.", "detailed_explanation": "Per yoga.txt.", "confidence_score": "Medium", "evidence_used": []}`)

	s := newTestServer(t, mock, []vector.Document{
		{Source: "yoga.txt", Text: "Yoga improves flexibility and reduces stress."},
	})

	body := strings.NewReader(`{"question": "what are the benefits of yoga?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/query", body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp pipeline.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Yoga helps flexibility.", resp.Answer)
	assert.True(t, resp.IsSafe)
	assert.NotEmpty(t, resp.Evidence)
}

func TestQueryEndpointRejectsEmptyQuestion(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)

	for _, body := range []string{`{}`, `{"question": "   "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestQueryEndpointMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)

	buf, contentType := multipartBody(t, "notes.txt", "Yoga improves flexibility and reduces stress.")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notes.txt", resp["filename"])
	assert.Equal(t, float64(1), resp["chunks_indexed"])
	assert.Equal(t, 1, s.index.Count())
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)

	buf, contentType := multipartBody(t, "image.png", "binary stuff")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, s.index.Count())
}

func TestUploadRejectsEmptyText(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)

	buf, contentType := multipartBody(t, "empty.txt", "   \n ")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, s.index.Count())
}

func TestDocumentsEndpoint(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), []vector.Document{
		{Source: "a.txt", Text: "Yoga improves flexibility."},
		{Source: "b.txt", Text: "Adults need enough sleep."},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sources []string `json:"sources"`
		Chunks  int      `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, resp.Sources)
	assert.Equal(t, 2, resp.Chunks)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, ai.NewMockProvider("mock"), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
