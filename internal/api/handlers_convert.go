package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/outlinexl/internal/extract"
	"github.com/dgallion1/outlinexl/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// convertRequest is the JSON body form of a conversion request. The base64
// payload mirrors the transport the original UI used.
type convertRequest struct {
	DataBase64 string `json:"data_base64"`
	Filename   string `json:"filename"`
}

// handleConvert runs a conversion synchronously and returns the workbook as
// base64 JSON.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	res, err := s.converter.Convert(data, filename)
	if err != nil {
		s.writeConvertError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":           true,
		"filename":          filename,
		"excel_data_base64": base64.StdEncoding.EncodeToString(res.XLSX),
		"rows":              res.Rows,
		"merges":            res.Merges,
	})
}

// handleConvertAsync queues a conversion and returns a poll URL.
func (s *Server) handleConvertAsync(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewJobID(filename, now),
		DocID:     pipeline.ContentHashHex(data)[:16],
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"doc_id":     job.DocID,
		"status":     job.Status,
		"poll_url":   fmt.Sprintf("/api/jobs/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/jobs/%s/result", job.ID),
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

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	result, ok := job.Result()
	if !ok {
		if snap.Status == pipeline.StatusFailed {
			jsonError(w, "job failed: "+strings.Join(snap.Errors, "; "), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, fmt.Sprintf("job not finished (status %s)", snap.Status), http.StatusConflict)
		return
	}

	outName := strings.TrimSuffix(snap.Filename, filepath.Ext(snap.Filename)) + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	w.Write(result)
}

// readDocument accepts either a multipart upload under "file" or a JSON body
// with a base64 payload, enforcing the upload size limit on both.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req convertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
			return nil, "", false
		}
		if req.DataBase64 == "" {
			jsonError(w, "data_base64 is required", http.StatusBadRequest)
			return nil, "", false
		}
		decoded, err := base64.StdEncoding.DecodeString(req.DataBase64)
		if err != nil {
			jsonError(w, "data_base64 is not valid base64: "+err.Error(), http.StatusBadRequest)
			return nil, "", false
		}
		if int64(len(decoded)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("document exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return nil, "", false
		}
		name := sanitizeFilename(req.Filename)
		if !extract.IsSupportedExtension(name) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(name)), http.StatusBadRequest)
			return nil, "", false
		}
		return decoded, name, true
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if !extract.IsSupportedExtension(name) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(name)), http.StatusBadRequest)
		return nil, "", false
	}

	data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, "", false
	}
	return data, name, true
}

// writeConvertError maps conversion failures to structured JSON responses.
// Nothing escapes this boundary as a panic or a bare 500 without a message.
func (s *Server) writeConvertError(w http.ResponseWriter, err error) {
	var xerr *extract.ExtractionError
	switch {
	case errors.Is(err, pipeline.ErrEmptyDocument):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &xerr):
		jsonError(w, xerr.Error(), http.StatusUnprocessableEntity)
	case strings.Contains(err.Error(), "unsupported file extension"):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("conversion failed", "error", err)
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
