package main

import (
	"os"
	"path/filepath"
	"testing"

	"photoclean/internal/testsupport"
)

func TestScanCommandSortsCleanPhoto(t *testing.T) {
	base := t.TempDir()
	cfgPath := writeTestConfig(t, base, false)

	input := filepath.Join(base, "photos")
	// Neutral square image: base score 0.1, jitter tops out well below 0.99.
	testsupport.WritePNG(t, filepath.Join(input, "holiday.png"), 8, 8, testsupport.NeutralTone)

	out, err := runCLI(t, "-c", cfgPath, "scan", "-i", input, "-t", "0.99")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Clean photos")

	if _, err := os.Stat(filepath.Join(input, "clean_photos", "holiday.png")); err != nil {
		t.Fatalf("expected sorted photo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(input, "scan_report.txt")); err != nil {
		t.Fatalf("expected scan report: %v", err)
	}
}

func TestScanCommandDryRun(t *testing.T) {
	base := t.TempDir()
	cfgPath := writeTestConfig(t, base, false)

	input := filepath.Join(base, "photos")
	testsupport.WritePNG(t, filepath.Join(input, "holiday.png"), 8, 8, testsupport.NeutralTone)

	out, err := runCLI(t, "-c", cfgPath, "scan", "-i", input, "-t", "0.99", "--dry-run")
	if err != nil {
		t.Fatalf("scan --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run")

	if _, err := os.Stat(filepath.Join(input, "holiday.png")); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}
}

func TestScanCommandMissingInputDirectory(t *testing.T) {
	base := t.TempDir()
	cfgPath := writeTestConfig(t, base, false)

	_, err := runCLI(t, "-c", cfgPath, "scan", "-i", filepath.Join(base, "missing"))
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestScanCommandRejectsBadThreshold(t *testing.T) {
	base := t.TempDir()
	cfgPath := writeTestConfig(t, base, false)
	input := filepath.Join(base, "photos")
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "-c", cfgPath, "scan", "-i", input, "-t", "1.5")
	if err == nil {
		t.Fatal("expected error for threshold outside [0,1]")
	}
}
