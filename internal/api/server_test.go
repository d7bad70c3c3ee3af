package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/resumeparse/internal/config"
	"github.com/dgallion1/resumeparse/internal/metrics"
	"github.com/dgallion1/resumeparse/internal/parser"
	"github.com/dgallion1/resumeparse/internal/pipeline"
	"github.com/dgallion1/resumeparse/internal/storage"
)

const testResume = `Jane Doe
Education
State University
Experience
• Platform Intern at Globex
• Wrote the deploy tooling
Projects
• Resume parser
Technical Skills
Languages: Go, Python`

type testEnv struct {
	srv   *Server
	orch  *pipeline.Orchestrator
	dir   string
	reg   *prometheus.Registry
	start func()
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		Port:           "8000",
		Origins:        []string{"http://localhost:5173"},
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1024,
		JobTTL:         time.Hour,
		StorageBackend: config.StorageLocal,
		StaticDir:      dir,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	store, err := storage.Open(context.Background(), cfg)
	require.NoError(t, err)

	proc := pipeline.NewProcessor(store, nil, m, parser.Options{}, log)
	orch := pipeline.NewOrchestrator(cfg, proc, log)
	t.Cleanup(orch.Stop)

	return &testEnv{
		srv:   NewServer(orch, m, reg, log, cfg),
		orch:  orch,
		dir:   dir,
		reg:   reg,
		start: func() { orch.Start(context.Background()) },
	}
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, nil)
	body, ct := multipartBody(t, "file", map[string]string{"jane.txt": testResume})
	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", body)
	req.Header.Set("Content-Type", ct)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	assert.Equal(t, "Resume uploaded and parsed successfully", resp["message"])
	assert.Equal(t, "jane.txt", resp["original_filename"])

	stored, _ := resp["stored_filename"].(string)
	require.True(t, strings.HasSuffix(stored, ".txt"), stored)
	saved, err := os.ReadFile(filepath.Join(env.dir, "uploads", stored))
	require.NoError(t, err)
	assert.Equal(t, testResume, string(saved))

	data, ok := resp["parsed_data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["internships"])
	assert.Equal(t, []any{"Platform Intern at Globex", "Wrote the deploy tooling"}, data["experience"])
	assert.Equal(t, []any{"Resume parser"}, data["projects"])
	assert.Equal(t, []any{"Go", "Python"}, data["skills"])
	assert.Equal(t, []any{}, data["coursework"])
	assert.Nil(t, data["gpa"])
	assert.Contains(t, data, "gpa")
}

func TestStoredFile_GetAndDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	body, ct := multipartBody(t, "file", map[string]string{"jane.txt": testResume})
	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, _ := decode(t, rec)["stored_filename"].(string)
	require.NotEmpty(t, stored)

	url := "/api/resume/files/" + stored
	rec = env.do(httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testResume, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = env.do(httptest.NewRequest(http.MethodDelete, url, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := os.Stat(filepath.Join(env.dir, "uploads", stored))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, http.StatusNotFound, env.do(httptest.NewRequest(http.MethodGet, url, nil)).Code)
	assert.Equal(t, http.StatusNotFound, env.do(httptest.NewRequest(http.MethodDelete, url, nil)).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(httptest.NewRequest(http.MethodGet, "/api/resume/files/..", nil)).Code)
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		field string
		files map[string]string
		code  int
	}{
		{"unsupported extension", "file", map[string]string{"cv.exe": "MZ"}, http.StatusBadRequest},
		{"missing file", "other", map[string]string{"cv.txt": "x"}, http.StatusBadRequest},
		{"too large", "file", map[string]string{"cv.txt": strings.Repeat("a", 2048)}, http.StatusRequestEntityTooLarge},
		{"unreadable source", "file", map[string]string{"cv.docx": "not a zip"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.field, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", body)
			req.Header.Set("Content-Type", ct)

			rec := env.do(req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
}

func TestBatchAndJobStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.start()

	body, ct := multipartBody(t, "files", map[string]string{
		"a.txt":   testResume,
		"b.pages": "nope",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/resume/batch", body)
	req.Header.Set("Content-Type", ct)

	rec := env.do(req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	jobs, ok := decode(t, rec)["jobs"].([]any)
	require.True(t, ok)
	require.Len(t, jobs, 2)

	var pollURL string
	for _, j := range jobs {
		entry := j.(map[string]any)
		switch entry["filename"] {
		case "a.txt":
			pollURL, _ = entry["poll_url"].(string)
			assert.Len(t, entry["doc_id"], 16)
		case "b.pages":
			assert.Contains(t, entry["error"], "unsupported")
		}
	}
	require.NotEmpty(t, pollURL)

	var snap map[string]any
	require.Eventually(t, func() bool {
		rec := env.do(httptest.NewRequest(http.MethodGet, pollURL, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		snap = decode(t, rec)
		return snap["status"] == "completed"
	}, 2*time.Second, 10*time.Millisecond)

	result, ok := snap["result"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, result["internships"])
	assert.NotEmpty(t, snap["stored_filename"])
}

func TestBatch_QueueFull(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.MaxQueueSize = 1 })
	// Workers are not started, so the second file cannot be queued.

	body, ct := multipartBody(t, "files", map[string]string{"a.txt": "a"})
	req := httptest.NewRequest(http.MethodPost, "/api/resume/batch", body)
	req.Header.Set("Content-Type", ct)
	require.Equal(t, http.StatusAccepted, env.do(req).Code)

	body, ct = multipartBody(t, "files", map[string]string{"b.txt": "b"})
	req = httptest.NewRequest(http.MethodPost, "/api/resume/batch", body)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(req).Code)
}

func TestJobStatus_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/resume/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.APIKey = "s3cret" })

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, env.do(req).Code)

	// Health and metrics stay public.
	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestParseStatsAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil)

	body, ct := multipartBody(t, "file", map[string]string{"jane.txt": testResume})
	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", body)
	req.Header.Set("Content-Type", ct)
	require.Equal(t, http.StatusOK, env.do(req).Code)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	stats := resp["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["count"])
	assert.Equal(t, "1h", resp["window"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `resume_parses_total{format="txt",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `resume_sections_found_total{section="experience"} 1`)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/resume/upload", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.do(req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = env.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\jane\cv.docx`, "cv.docx"},
		{"..", "_"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
