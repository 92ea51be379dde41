package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mediapull/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSponsorBlock(t *testing.T) {
	var status int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(status)
	}))
	defer srv.Close()

	status = http.StatusOK
	if result := CheckSponsorBlock(context.Background(), srv.URL+"/"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	status = http.StatusNotFound
	if result := CheckSponsorBlock(context.Background(), srv.URL); !result.Passed {
		t.Fatalf("expected 404 to count as reachable, got: %s", result.Detail)
	}
	status = http.StatusServiceUnavailable
	if result := CheckSponsorBlock(context.Background(), srv.URL); result.Passed {
		t.Fatal("expected failure for 503")
	}
}

func TestCheckSponsorBlock_MissingURL(t *testing.T) {
	if result := CheckSponsorBlock(context.Background(), "  "); result.Passed || result.Detail != "missing url" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfg.SponsorBlock.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 checks, got %+v", results)
	}
	if len(Failed(results)) != 3 {
		t.Fatalf("expected every missing directory to fail, got %+v", results)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	results = RunAll(context.Background(), &cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	cfg.History.Enabled = false
	if got := len(RunAll(context.Background(), &cfg)); got != 2 {
		t.Fatalf("expected history check skipped, got %d results", got)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestBlockingIgnoresAdvisoryChecks(t *testing.T) {
	results := []Result{
		{Name: "Output directory", Passed: true},
		{Name: "Log directory", Detail: "missing"},
		CheckSponsorBlock(context.Background(), ""),
	}
	if got := len(Failed(results)); got != 2 {
		t.Fatalf("expected 2 failed checks, got %d", got)
	}
	blocking := Blocking(results)
	if len(blocking) != 1 || blocking[0].Name != "Log directory" {
		t.Fatalf("expected only the log directory to block, got %+v", blocking)
	}
}
