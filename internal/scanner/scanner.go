package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"photoclean/internal/config"
	"photoclean/internal/history"
	"photoclean/internal/logging"
	"photoclean/internal/organizer"
	"photoclean/internal/report"
	"photoclean/internal/scorer"
	"photoclean/internal/services"
	"photoclean/internal/walker"
)

// lockFileName guards the output root against concurrent scans.
const lockFileName = ".photoclean.lock"

// Request describes one scan. It is immutable for the duration of the run.
type Request struct {
	InputDir  string
	OutputDir string
	Threshold float64
	DryRun    bool
	Verbose   bool
}

// Progress reports coarse per-file milestones to the front end.
type Progress struct {
	ScanID      string
	Processed   int
	Total       int
	CurrentFile string
}

// ProgressFunc receives progress updates from the scan loop.
type ProgressFunc func(Progress)

// Scanner runs the walk, score, organize, report pipeline.
type Scanner struct {
	cfg      *config.Config
	logger   *slog.Logger
	scorer   *scorer.Scorer
	store    *history.Store
	progress ProgressFunc
	now      func() time.Time
}

// Option customizes scanner construction.
type Option func(*Scanner)

// WithScorer injects a scorer (tests use a seeded or jitter-free one).
func WithScorer(s *scorer.Scorer) Option {
	return func(sc *Scanner) { sc.scorer = s }
}

// WithHistory records completed runs in the given store.
func WithHistory(store *history.Store) Option {
	return func(sc *Scanner) { sc.store = store }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(sc *Scanner) { sc.progress = fn }
}

// New constructs a scanner with default dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Scanner {
	sc := &Scanner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "scanner"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.scorer == nil {
		sc.scorer = scorer.New(logger)
	}
	return sc
}

// Run executes one scan and returns its summary. Configuration problems
// abort before any work; per-file failures are counted and the scan
// continues. Cancellation is observed between files; the summary for the
// processed prefix is still written and recorded.
func (s *Scanner) Run(ctx context.Context, req Request) (*report.Summary, error) {
	normalized, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	req = normalized

	scanID := uuid.NewString()
	ctx = services.WithScanID(ctx, scanID)
	logger := logging.WithContext(ctx, s.logger)

	logger.Info(
		"starting scan",
		logging.String("input", req.InputDir),
		logging.String("output", req.OutputDir),
		logging.Float64("threshold", req.Threshold),
		logging.Bool("dry_run", req.DryRun),
	)

	if err := s.preflight(req); err != nil {
		return nil, err
	}

	if !req.DryRun {
		unlock, err := s.acquireLock(req.OutputDir)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	walkResult, err := walker.Walk(services.WithStage(ctx, "walking"), req.InputDir, walker.Options{
		Extensions:   s.cfg.ExtensionSet(),
		SniffContent: s.cfg.Scan.SniffContent,
		ExcludeDirs: map[string]struct{}{
			organizer.CleanDirName:     {},
			organizer.SensitiveDirName: {},
		},
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}

	summary := &report.Summary{
		ScanID:    scanID,
		StartedAt: s.now().UTC(),
		Threshold: req.Threshold,
		DryRun:    req.DryRun,
	}
	summary.Stats.Skipped = walkResult.Skipped
	summary.Stats.Total = walkResult.Skipped

	orgOpts := []organizer.Option{}
	if req.DryRun {
		orgOpts = append(orgOpts, organizer.WithDryRun())
	}
	if s.cfg.Scan.VerifyMoves {
		orgOpts = append(orgOpts, organizer.WithVerifiedMoves())
	}
	org := organizer.New(s.logger, orgOpts...)

	found := len(walkResult.Files)
	for i, file := range walkResult.Files {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logger.Warn("scan interrupted", logging.Int("processed", i), logging.Int("found", found))
			break
		}

		s.processFile(ctx, org, req, summary, file)

		if s.progress != nil {
			s.progress(Progress{
				ScanID:      scanID,
				Processed:   i + 1,
				Total:       found,
				CurrentFile: file,
			})
		}
	}
	summary.FinishedAt = s.now().UTC()

	if err := ensureDir(req.OutputDir); err != nil {
		return summary, services.Wrap(services.ErrTransient, "reporting", "ensure output root", "failed to create output directory", err)
	}
	summaryPath, resultsPath, err := report.WriteFiles(req.OutputDir, summary)
	if err != nil {
		return summary, services.Wrap(services.ErrTransient, "reporting", "write artifacts", "failed to write scan reports", err)
	}
	logger.Info("reports written", logging.String("summary", summaryPath), logging.String("results", resultsPath))

	s.recordHistory(ctx, req, summary, logger)

	logger.Info(
		"scan completed",
		logging.Int("total", summary.Stats.Total),
		logging.Int("clean", summary.Stats.Clean),
		logging.Int("sensitive", summary.Stats.Sensitive),
		logging.Int("errors", summary.Stats.Errors),
		logging.Int("skipped", summary.Stats.Skipped),
		logging.Bool("interrupted", summary.Interrupted),
	)
	return summary, nil
}

func (s *Scanner) processFile(ctx context.Context, org *organizer.Organizer, req Request, summary *report.Summary, file string) {
	logger := logging.WithContext(ctx, s.logger)
	summary.Stats.Total++

	result := report.Result{File: file, Timestamp: s.now().UTC()}

	score, err := s.scorer.Score(services.WithStage(ctx, "scoring"), file)
	if err != nil {
		// Unreadable files stay where they are instead of being routed to
		// the clean folder; silently downgrading risk hides failures from
		// the operator.
		summary.Stats.Errors++
		result.Error = err.Error()
		summary.Results = append(summary.Results, result)
		logger.Warn("scoring failed, file left in place", logging.String("file", file), logging.Error(err))
		return
	}

	result.Score = score
	result.IsSensitive = score > req.Threshold

	destination, err := org.Place(services.WithStage(ctx, "organizing"), file, req.OutputDir, result.IsSensitive)
	if err != nil {
		summary.Stats.Errors++
		result.Error = err.Error()
		summary.Results = append(summary.Results, result)
		logger.Warn("organize failed, file left in place", logging.String("file", file), logging.Error(err))
		return
	}
	result.Destination = destination
	summary.Results = append(summary.Results, result)

	if result.IsSensitive {
		summary.Stats.Sensitive++
		logger.Info("SENSITIVE", logging.Float64("score", score), logging.String("file", file), logging.String("destination", destination))
	} else {
		summary.Stats.Clean++
		if req.Verbose {
			logger.Debug("clean", logging.Float64("score", score), logging.String("file", file), logging.String("destination", destination))
		}
	}
}

func (s *Scanner) normalizeRequest(req Request) (Request, error) {
	if strings.TrimSpace(req.InputDir) == "" {
		return req, services.Wrap(services.ErrConfiguration, "scan", "validate request", "input directory is required", nil)
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return req, services.Wrap(services.ErrConfiguration, "scan", "validate request",
			fmt.Sprintf("threshold must be between 0.0 and 1.0, got %g", req.Threshold), nil)
	}

	input, err := config.ExpandPath(req.InputDir)
	if err != nil {
		return req, services.Wrap(services.ErrConfiguration, "scan", "resolve input", "invalid input directory", err)
	}
	req.InputDir = input

	output := strings.TrimSpace(req.OutputDir)
	if output == "" {
		output = s.cfg.Paths.OutputDir
	}
	if output == "" {
		output = req.InputDir
	}
	if output, err = config.ExpandPath(output); err != nil {
		return req, services.Wrap(services.ErrConfiguration, "scan", "resolve output", "invalid output directory", err)
	}
	req.OutputDir = output
	return req, nil
}

func (s *Scanner) preflight(req Request) error {
	check := checkDirectoryAccess("input", req.InputDir, readAccess)
	if !check.Passed {
		marker := services.ErrConfiguration
		if strings.Contains(check.Detail, "does not exist") {
			marker = services.ErrNotFound
		}
		return services.Wrap(marker, "scan", "preflight", check.Detail, nil)
	}

	// The output root may not exist yet; it is created on demand. Only an
	// existing, unwritable root fails preflight.
	if req.OutputDir != req.InputDir {
		return nil
	}
	if req.DryRun {
		return nil
	}
	check = checkDirectoryAccess("output", req.OutputDir, readWriteAccess)
	if !check.Passed {
		return services.Wrap(services.ErrConfiguration, "scan", "preflight", check.Detail, nil)
	}
	return nil
}

func (s *Scanner) acquireLock(outputRoot string) (func(), error) {
	if err := ensureDir(outputRoot); err != nil {
		return nil, services.Wrap(services.ErrTransient, "scan", "ensure output root", "failed to create output directory", err)
	}
	lock := flock.New(filepath.Join(outputRoot, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scan", "acquire lock", "failed to acquire output lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "acquire lock",
			"another scan is already running against "+outputRoot, nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}, nil
}

func (s *Scanner) recordHistory(ctx context.Context, req Request, summary *report.Summary, logger *slog.Logger) {
	if s.store == nil || !s.cfg.History.Enabled {
		return
	}
	run := &history.Run{
		ID:          summary.ScanID,
		StartedAt:   summary.StartedAt,
		FinishedAt:  summary.FinishedAt,
		InputDir:    req.InputDir,
		OutputDir:   req.OutputDir,
		Threshold:   req.Threshold,
		DryRun:      req.DryRun,
		Interrupted: summary.Interrupted,
		Stats:       summary.Stats,
	}
	// Recording runs with a canceled context would always fail; history is
	// best effort after interruption.
	recordCtx := ctx
	if recordCtx.Err() != nil {
		recordCtx = context.Background()
	}
	if err := s.store.RecordRun(recordCtx, run, summary.Results); err != nil {
		logger.Warn("failed to record scan history", logging.Error(err))
	}
}

func ensureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("empty directory path")
	}
	return os.MkdirAll(path, 0o755)
}
