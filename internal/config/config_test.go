package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/outlinexl/internal/extract"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolate from the ambient environment.
	for _, key := range []string{"PORT", "PDF_ENGINE", "WORKER_COUNT", "OUTLINEXL_CONFIG"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8091" {
		t.Errorf("port = %q, want 8091", cfg.Port)
	}
	if cfg.PDFEngine != extract.EngineAuto {
		t.Errorf("pdf engine = %q, want auto", cfg.PDFEngine)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("worker count = %d, want 4", cfg.WorkerCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PDF_ENGINE", "pdfcpu")
	t.Setenv("JOB_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.PDFEngine != extract.EnginePDFCPU {
		t.Errorf("pdf engine = %q, want pdfcpu", cfg.PDFEngine)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("job ttl = %v, want 30m", cfg.JobTTL)
	}
}

func TestLoad_YAMLOverlayWinsOverEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outlinexl.yaml")
	body := "port: \"7070\"\nsheet_title: Features\npdf_engine: pdftext\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9000")
	t.Setenv("OUTLINEXL_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("port = %q, want file value 7070", cfg.Port)
	}
	if cfg.SheetTitle != "Features" {
		t.Errorf("sheet title = %q, want Features", cfg.SheetTitle)
	}
	if cfg.PDFEngine != extract.EnginePDFText {
		t.Errorf("pdf engine = %q, want pdftext", cfg.PDFEngine)
	}
}

func TestValidate_RejectsUnknownEngine(t *testing.T) {
	cfg := Config{Port: "8091", PDFEngine: "pymupdf"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}
