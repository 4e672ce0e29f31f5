package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoclean/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Scan.Threshold != 0.7 {
		t.Fatalf("unexpected default threshold: %v", cfg.Scan.Threshold)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Scan.Extensions) != 7 {
		t.Fatalf("unexpected default extensions: %v", cfg.Scan.Extensions)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[scan]",
		"threshold = 0.5",
		`extensions = ["JPG", "png"]`,
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved existing path, got %q exists=%v", resolved, exists)
	}
	if cfg.Scan.Threshold != 0.5 {
		t.Fatalf("unexpected threshold: %v", cfg.Scan.Threshold)
	}
	want := []string{".jpg", ".png"}
	if len(cfg.Scan.Extensions) != len(want) {
		t.Fatalf("unexpected extensions: %v", cfg.Scan.Extensions)
	}
	for i, ext := range want {
		if cfg.Scan.Extensions[i] != ext {
			t.Fatalf("extension %d = %q, want %q", i, cfg.Scan.Extensions[i], ext)
		}
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Threshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for threshold 1.5")
	}
	cfg.Scan.Threshold = -0.1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for threshold -0.1")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported log format")
	}
}

func TestExtensionSet(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Extensions = []string{"jpg", ".PNG"}
	set := cfg.ExtensionSet()
	if _, ok := set[".jpg"]; !ok {
		t.Fatal("expected .jpg in extension set")
	}
	if _, ok := set[".png"]; !ok {
		t.Fatal("expected .png in extension set")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.HistoryDB = filepath.Join(dir, "state", "history.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, p := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.HistoryDB)} {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", p, err)
		}
	}
}
