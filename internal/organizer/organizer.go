package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"photoclean/internal/fileutil"
	"photoclean/internal/logging"
	"photoclean/internal/services"
)

const (
	// CleanDirName holds photos at or below the threshold.
	CleanDirName = "clean_photos"
	// SensitiveDirName holds photos above the threshold.
	SensitiveDirName = "sensitive_photos"

	maxCollisionAttempts = 10000
)

// Organizer moves scanned files into their destination folders.
type Organizer struct {
	logger      *slog.Logger
	dryRun      bool
	verifyMoves bool
}

// Option customizes organizer construction.
type Option func(*Organizer)

// WithDryRun computes destinations without mutating the filesystem.
func WithDryRun() Option {
	return func(o *Organizer) { o.dryRun = true }
}

// WithVerifiedMoves upgrades cross-device copies to SHA256-verified copies.
func WithVerifiedMoves() Option {
	return func(o *Organizer) { o.verifyMoves = true }
}

// New constructs an organizer.
func New(logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{logger: logging.NewComponentLogger(logger, "organizer")}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DestinationDir returns the subfolder name for the given classification.
func DestinationDir(sensitive bool) string {
	if sensitive {
		return SensitiveDirName
	}
	return CleanDirName
}

// Place moves srcPath into the clean or sensitive subfolder under outputRoot,
// creating the subfolder on demand and resolving name collisions with a _N
// suffix. It returns the destination path. In dry-run mode the destination is
// computed but nothing on disk changes.
func (o *Organizer) Place(ctx context.Context, srcPath, outputRoot string, sensitive bool) (string, error) {
	logger := logging.WithContext(ctx, o.logger)

	destDir := filepath.Join(outputRoot, DestinationDir(sensitive))
	if !o.dryRun {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrTransient, "organizing", "ensure destination", "failed to create "+destDir, err)
		}
	}

	target, err := nextFreePath(destDir, filepath.Base(srcPath))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "organizing", "allocate filename", "unable to allocate destination filename", err)
	}

	if o.dryRun {
		logger.Debug("dry run, destination computed", logging.String("file", srcPath), logging.String("destination", target))
		return target, nil
	}

	if err := o.move(srcPath, target, logger); err != nil {
		return "", err
	}
	logger.Debug("file relocated", logging.String("file", srcPath), logging.String("destination", target))
	return target, nil
}

func (o *Organizer) move(src, dst string, logger *slog.Logger) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		copyFn := fileutil.CopyFile
		if o.verifyMoves {
			copyFn = fileutil.CopyFileVerified
		}
		if copyErr := copyFn(src, dst); copyErr != nil {
			return services.Wrap(services.ErrTransient, "organizing", "copy across devices", "failed to copy file to destination", copyErr)
		}
		if err := os.Remove(src); err != nil {
			logger.Warn("failed to remove source file after copy", logging.String("file", src), logging.Error(err))
		}
		return nil
	}
	return services.Wrap(services.ErrTransient, "organizing", "move file", "failed to move file to destination", renameErr)
}

// nextFreePath probes dir for a filename that does not exist yet, appending
// _1, _2, ... before the extension until a free slot is found.
func nextFreePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for attempt := 0; attempt <= maxCollisionAttempts; attempt++ {
		if attempt > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, attempt, ext))
		}
		_, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted filename slots for %s in %s", name, dir)
}
