package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/outlinexl/internal/config"
	"github.com/dgallion1/outlinexl/internal/extract"
	"github.com/dgallion1/outlinexl/internal/pipeline"
	"github.com/dgallion1/outlinexl/internal/sheet"
)

const sampleOutline = "1 Introduction\n\n1. First item\n\n• loose end\n"

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	conv := pipeline.NewConverter(extract.Factory{PDFEngine: extract.EngineAuto}, sheet.NewWriter(log, ""), log)
	orch := pipeline.NewOrchestrator(conv, log, 2, 10, time.Hour)
	orch.Start(t.Context())
	t.Cleanup(orch.Stop)

	cfg := config.Config{
		Port:           "0",
		APIKey:         apiKey,
		MaxUploadBytes: 1 << 20,
	}
	return NewServer(orch, conv, log, cfg)
}

func postJSON(t *testing.T, srv *Server, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"data_base64": base64.StdEncoding.EncodeToString([]byte(content)),
		"filename":    filename,
	})
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleConvert_JSONBase64(t *testing.T) {
	srv := newTestServer(t, "")

	rec := postJSON(t, srv, "/api/convert", "spec.txt", sampleOutline)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success         bool   `json:"success"`
		Filename        string `json:"filename"`
		ExcelDataBase64 string `json:"excel_data_base64"`
		Rows            int    `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if !resp.Success || resp.Filename != "spec.txt" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Rows != 3 {
		t.Errorf("rows = %d, want 3", resp.Rows)
	}
	xlsx, err := base64.StdEncoding.DecodeString(resp.ExcelDataBase64)
	if err != nil || len(xlsx) == 0 {
		t.Fatalf("excel payload must be non-empty base64: %v", err)
	}
}

func TestHandleConvert_MultipartUpload(t *testing.T) {
	srv := newTestServer(t, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "spec.txt")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(sampleOutline))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleConvert_EmptyContent(t *testing.T) {
	srv := newTestServer(t, "")
	rec := postJSON(t, srv, "/api/convert", "blank.txt", "   \n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("expected structured error body, got %s", rec.Body.String())
	}
}

func TestHandleConvert_UnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, "")
	rec := postJSON(t, srv, "/api/convert", "data.zip", "whatever")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
}

func TestAsyncFlow(t *testing.T) {
	srv := newTestServer(t, "")

	rec := postJSON(t, srv, "/api/convert/async", "spec.txt", sampleOutline)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		JobID     string `json:"job_id"`
		PollURL   string `json:"poll_url"`
		ResultURL string `json:"result_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var snap pipeline.JobSnapshot
	for {
		statusRec := httptest.NewRecorder()
		srv.ServeHTTP(statusRec, httptest.NewRequest(http.MethodGet, submitted.PollURL, nil))
		if statusRec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d", statusRec.Code)
		}
		if err := json.Unmarshal(statusRec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("invalid snapshot json: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish in time, last status %s", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("job failed: %v", snap.Errors)
	}

	resultRec := httptest.NewRecorder()
	srv.ServeHTTP(resultRec, httptest.NewRequest(http.MethodGet, submitted.ResultURL, nil))
	if resultRec.Code != http.StatusOK {
		t.Fatalf("result endpoint = %d, body = %s", resultRec.Code, resultRec.Body.String())
	}
	if ct := resultRec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %q", ct)
	}
	if resultRec.Body.Len() == 0 {
		t.Error("result body must not be empty")
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	srv := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, "sekrit")

	rec := postJSON(t, srv, "/api/convert", "spec.txt", sampleOutline)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request: status = %d, want 401", rec.Code)
	}

	body, _ := json.Marshal(map[string]string{
		"data_base64": base64.StdEncoding.EncodeToString([]byte(sampleOutline)),
		"filename":    "spec.txt",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated request: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	healthRec := httptest.NewRecorder()
	srv.ServeHTTP(healthRec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if healthRec.Code != http.StatusOK {
		t.Errorf("health must stay public, status = %d", healthRec.Code)
	}
}
