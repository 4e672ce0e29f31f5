package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"photoclean/internal/logging"
	"photoclean/internal/organizer"
	"photoclean/internal/report"
	"photoclean/internal/services"
)

// ScanFunc runs one scan over the watched root.
type ScanFunc func(ctx context.Context) error

// Service watches the input root for filesystem changes and triggers a
// rescan once events have settled. Scans are serialized: a triggered scan
// runs to completion before the next settle window can fire.
type Service struct {
	root   string
	scanFn ScanFunc
	logger *slog.Logger
	settle time.Duration

	// ignoredDirs are directory names whose subtrees never trigger a
	// rescan. The scan's own output folders go here, otherwise every
	// triggered scan would immediately retrigger itself.
	ignoredDirs map[string]struct{}
	// ignoredFiles are root-level artifact names the scan itself writes.
	ignoredFiles map[string]struct{}
}

// New constructs a watch service over root. settle is the quiet period
// after the last relevant event before a scan fires.
func New(root string, settle time.Duration, scanFn ScanFunc, logger *slog.Logger) *Service {
	return &Service{
		root:   root,
		scanFn: scanFn,
		logger: logging.NewComponentLogger(logger, "watch"),
		settle: settle,
		ignoredDirs: map[string]struct{}{
			organizer.CleanDirName:     {},
			organizer.SensitiveDirName: {},
		},
		ignoredFiles: map[string]struct{}{
			report.SummaryFileName: {},
			report.ResultsFileName: {},
		},
	}
}

// Run blocks until ctx is canceled. It performs one initial scan to clear
// any backlog, then waits for filesystem events. Scan failures are logged
// and watching continues; only watcher setup errors are fatal.
func (s *Service) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrTransient, "watching", "create watcher", "filesystem notifications unavailable", err)
	}
	defer w.Close() //nolint:errcheck

	if err := s.addTree(w, s.root); err != nil {
		return err
	}

	s.logger.Info("watching for changes",
		logging.String("root", s.root),
		logging.String("settle", s.settle.String()),
	)

	s.runScan(ctx)
	if ctx.Err() != nil {
		return nil
	}

	// Settle timer starts stopped; each relevant event resets it.
	settleTimer := time.NewTimer(0)
	if !settleTimer.Stop() {
		<-settleTimer.C
	}
	scanPending := false

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch stopping")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if err := s.addTree(w, ev.Name); err != nil {
						s.logger.Warn("failed to watch new directory", logging.String("path", ev.Name), logging.Error(err))
					}
				}
			}
			s.logger.Debug("change detected", logging.String("path", ev.Name), logging.String("op", ev.Op.String()))
			if !settleTimer.Stop() {
				select {
				case <-settleTimer.C:
				default:
				}
			}
			settleTimer.Reset(s.settle)
			scanPending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", logging.Error(err))

		case <-settleTimer.C:
			if scanPending {
				scanPending = false
				s.logger.Info("changes settled, rescanning")
				s.runScan(ctx)
			}
		}
	}
}

func (s *Service) runScan(ctx context.Context) {
	if err := s.scanFn(ctx); err != nil {
		s.logger.Error("watch-triggered scan failed", logging.Error(err))
	}
}

// addTree watches path and every subdirectory below it, skipping the
// ignored output folders.
func (s *Service) addTree(w *fsnotify.Watcher, path string) error {
	walkErr := filepath.WalkDir(path, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if p != s.root {
			if _, ignored := s.ignoredDirs[entry.Name()]; ignored {
				return filepath.SkipDir
			}
		}
		return w.Add(p)
	})
	if walkErr != nil {
		return services.Wrap(services.ErrTransient, "watching", "add watch", "failed to watch "+path, walkErr)
	}
	return nil
}

// relevant filters out events the scan itself produces and operations
// that cannot change the set of candidate files.
func (s *Service) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	rel, err := filepath.Rel(s.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}

	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if rel == base {
		if _, ignored := s.ignoredFiles[base]; ignored {
			return false
		}
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if _, ignored := s.ignoredDirs[part]; ignored {
			return false
		}
	}
	return true
}
