package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"photoclean/internal/testsupport"
)

func newTestService(t *testing.T, scanCount *atomic.Int32) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	scanFn := func(_ context.Context) error {
		scanCount.Add(1)
		return nil
	}
	return New(root, 50*time.Millisecond, scanFn, nil), root
}

func TestRunPerformsInitialScan(t *testing.T) {
	var scanCount atomic.Int32
	svc, _ := newTestService(t, &scanCount)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.Run(ctx); err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := scanCount.Load(); got != 1 {
		t.Errorf("expected 1 initial scan, got %d", got)
	}
}

func TestNewFileTriggersRescan(t *testing.T) {
	var scanCount atomic.Int32
	svc, root := newTestService(t, &scanCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()
	time.Sleep(100 * time.Millisecond) // initial scan + watcher setup

	testsupport.WritePNG(t, filepath.Join(root, "new.png"), 4, 4, testsupport.NeutralTone)

	time.Sleep(300 * time.Millisecond) // settle window + scan
	cancel()
	<-done

	if got := scanCount.Load(); got < 2 {
		t.Errorf("expected a rescan after the new file, got %d scans", got)
	}
}

func TestRapidWritesCoalesce(t *testing.T) {
	var scanCount atomic.Int32
	svc, root := newTestService(t, &scanCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		testsupport.WritePNG(t, filepath.Join(root, "img"+string(rune('a'+i))+".png"), 4, 4, testsupport.NeutralTone)
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	// Initial scan plus one coalesced rescan.
	if got := scanCount.Load(); got != 2 {
		t.Errorf("expected 2 scans total, got %d", got)
	}
}

func TestOutputFoldersDoNotRetrigger(t *testing.T) {
	var scanCount atomic.Int32
	svc, root := newTestService(t, &scanCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.MkdirAll(filepath.Join(root, "clean_photos"), 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WritePNG(t, filepath.Join(root, "clean_photos", "sorted.png"), 4, 4, testsupport.NeutralTone)

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	if got := scanCount.Load(); got != 1 {
		t.Errorf("expected only the initial scan, got %d", got)
	}
}

func TestRelevantFiltersArtifacts(t *testing.T) {
	svc := New("/photos", time.Second, func(context.Context) error { return nil }, nil)

	cases := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"new image", fsnotify.Event{Name: "/photos/new.png", Op: fsnotify.Create}, true},
		{"nested image", fsnotify.Event{Name: "/photos/albums/trip.jpg", Op: fsnotify.Write}, true},
		{"removed image", fsnotify.Event{Name: "/photos/old.jpg", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/photos/new.png", Op: fsnotify.Chmod}, false},
		{"summary report", fsnotify.Event{Name: "/photos/scan_report.txt", Op: fsnotify.Create}, false},
		{"results file", fsnotify.Event{Name: "/photos/scan_results.json", Op: fsnotify.Create}, false},
		{"lock file", fsnotify.Event{Name: "/photos/.photoclean.lock", Op: fsnotify.Create}, false},
		{"temp file", fsnotify.Event{Name: "/photos/.photoclean-123", Op: fsnotify.Create}, false},
		{"clean folder", fsnotify.Event{Name: "/photos/clean_photos/a.png", Op: fsnotify.Create}, false},
		{"sensitive folder", fsnotify.Event{Name: "/photos/sensitive_photos/b.png", Op: fsnotify.Create}, false},
		{"outside root", fsnotify.Event{Name: "/elsewhere/c.png", Op: fsnotify.Create}, false},
	}
	for _, tc := range cases {
		if got := svc.relevant(tc.ev); got != tc.want {
			t.Errorf("%s: relevant(%q %v) = %v, want %v", tc.name, tc.ev.Name, tc.ev.Op, got, tc.want)
		}
	}
}
