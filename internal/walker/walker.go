package walker

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"photoclean/internal/logging"
	"photoclean/internal/services"
)

// sniffHeaderSize covers every magic number filetype knows about.
const sniffHeaderSize = 261

// Options controls which files a walk yields.
type Options struct {
	// Extensions is the lowercase extension allow-list, keys including the dot.
	Extensions map[string]struct{}
	// SniffContent verifies magic bytes and skips files whose content is not
	// an image even when the extension matches.
	SniffContent bool
	// ExcludeDirs holds directory names whose subtrees are not descended
	// into. The scan output folders go here so a rescan never picks up
	// files that were already routed.
	ExcludeDirs map[string]struct{}
	Logger      *slog.Logger
}

// Result holds the outcome of a directory walk.
type Result struct {
	// Files are the candidate image paths, in traversal order.
	Files []string
	// Skipped counts files whose extension matched but whose content did not.
	Skipped int
}

// Walk recursively lists files under root whose extension is in the
// allow-list. It fails with services.ErrNotFound when root does not exist.
// Traversal order follows filepath.WalkDir (lexical); callers must not rely
// on any particular order.
func Walk(ctx context.Context, root string, opts Options) (*Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "walker")

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "walking", "stat root", "input directory does not exist: "+root, nil)
		}
		return nil, services.Wrap(services.ErrTransient, "walking", "stat root", "unable to inspect input directory", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "walking", "stat root", "input path is not a directory: "+root, nil)
	}

	result := &Result{}
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if _, excluded := opts.ExcludeDirs[entry.Name()]; excluded {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := opts.Extensions[ext]; !ok {
			return nil
		}
		if opts.SniffContent {
			ok, sniffErr := isImageContent(path)
			if sniffErr != nil {
				logger.Warn("content sniff failed, keeping file", logging.String("file", path), logging.Error(sniffErr))
			} else if !ok {
				logger.Warn("extension matches but content is not an image, skipping", logging.String("file", path))
				result.Skipped++
				return nil
			}
		}
		result.Files = append(result.Files, path)
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, services.Wrap(services.ErrTransient, "walking", "traverse", "directory traversal failed", walkErr)
	}

	logger.Info("walk completed", logging.Int("files", len(result.Files)), logging.Int("skipped", result.Skipped))
	return result, nil
}

func isImageContent(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, sniffHeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.IsImage(header[:n]), nil
}
