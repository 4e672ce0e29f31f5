package organizer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"photoclean/internal/organizer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlaceRoutesByClassification(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "input", "photo.jpg")
	writeFile(t, src, "data")

	o := organizer.New(nil)
	dst, err := o.Place(context.Background(), src, root, true)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	want := filepath.Join(root, organizer.SensitiveDirName, "photo.jpg")
	if dst != want {
		t.Fatalf("destination = %q, want %q", dst, want)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected file at destination: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, got %v", err)
	}
}

func TestPlaceCleanDestination(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writeFile(t, src, "data")

	dst, err := organizer.New(nil).Place(context.Background(), src, root, false)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if filepath.Dir(dst) != filepath.Join(root, organizer.CleanDirName) {
		t.Fatalf("unexpected destination dir: %q", dst)
	}
}

func TestPlaceResolvesCollisions(t *testing.T) {
	root := t.TempDir()
	o := organizer.New(nil)

	var got []string
	for i := 0; i < 3; i++ {
		src := filepath.Join(root, "staging", "dup.jpg")
		writeFile(t, src, "copy")
		dst, err := o.Place(context.Background(), src, root, false)
		if err != nil {
			t.Fatalf("Place %d returned error: %v", i, err)
		}
		got = append(got, filepath.Base(dst))
	}

	want := []string{"dup.jpg", "dup_1.jpg", "dup_2.jpg"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collision names = %v, want %v", got, want)
		}
	}
}

func TestPlaceDryRunLeavesFilesystemUntouched(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.jpg")
	writeFile(t, src, "data")

	dst, err := organizer.New(nil, organizer.WithDryRun()).Place(context.Background(), src, root, true)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if dst != filepath.Join(root, organizer.SensitiveDirName, "photo.jpg") {
		t.Fatalf("unexpected computed destination: %q", dst)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected source untouched: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, organizer.SensitiveDirName)); !os.IsNotExist(err) {
		t.Fatalf("expected no destination folder created, got %v", err)
	}
}

func TestPlaceMissingSource(t *testing.T) {
	root := t.TempDir()
	_, err := organizer.New(nil).Place(context.Background(), filepath.Join(root, "absent.jpg"), root, false)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestDestinationDir(t *testing.T) {
	if organizer.DestinationDir(true) != organizer.SensitiveDirName {
		t.Fatal("sensitive classification should route to sensitive_photos")
	}
	if organizer.DestinationDir(false) != organizer.CleanDirName {
		t.Fatal("clean classification should route to clean_photos")
	}
}
