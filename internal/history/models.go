package history

import (
	"time"

	"photoclean/internal/report"
)

// Run describes one recorded scan.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	InputDir    string
	OutputDir   string
	Threshold   float64
	DryRun      bool
	Interrupted bool
	Stats       report.Stats
}

// Duration returns the wall-clock length of the run, or zero when the run
// never finished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
