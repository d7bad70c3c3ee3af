package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/resumeparse/internal/parser"
	"github.com/dgallion1/resumeparse/internal/pipeline"
	"github.com/dgallion1/resumeparse/internal/storage"
)

const uploadMessage = "Resume uploaded and parsed successfully"

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		writeReadError(w, err, s.cfg.MaxUploadBytes)
		return
	}

	up, err := s.orchestrator.Processor().Upload(r.Context(), data, filename)
	if err != nil {
		s.log.Error("upload failed", "filename", filename, "error", err)
		writeProcessError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":           uploadMessage,
		"original_filename": up.OriginalFilename,
		"stored_filename":   up.StoredFilename,
		"parsed_data":       up.Result,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	accepted, queueFull := 0, false
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := readLimited(f, s.cfg.MaxUploadBytes)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			queueFull = queueFull || errors.Is(err, pipeline.ErrQueueFull)
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		accepted++
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"doc_id":   job.DocID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/resume/jobs/%s", job.ID),
		})
	}

	code := http.StatusAccepted
	if accepted == 0 && queueFull {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

// handleGetFile streams a stored upload back to the client.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rc, info, err := s.orchestrator.Processor().OpenUpload(r.Context(), key)
	if err != nil {
		s.writeStoreError(w, key, err)
		return
	}
	defer rc.Close()

	ct := info.ContentType
	if ct == "" {
		ct = storage.ContentType(key)
	}
	w.Header().Set("Content-Type", ct)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("stream upload failed", "stored_filename", key, "error", err)
	}
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.orchestrator.Processor().DeleteUpload(r.Context(), key); err != nil {
		s.writeStoreError(w, key, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, key string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		jsonError(w, "file not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrInvalidKey):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("storage request failed", "stored_filename", key, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

var errTooLarge = errors.New("file too large")

// readLimited reads at most limit bytes from r.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

func writeReadError(w http.ResponseWriter, err error, limit int64) {
	if errors.Is(err, errTooLarge) {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", limit), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "failed to read file", http.StatusInternalServerError)
}

func formError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", maxErr.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
}

// writeProcessError maps pipeline errors onto status codes.
func writeProcessError(w http.ResponseWriter, err error) {
	var srcErr *parser.SourceError
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &srcErr):
		jsonError(w, "could not read document: "+srcErr.Cause.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, pipeline.ErrQueueFull):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
