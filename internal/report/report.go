package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"photoclean/internal/fileutil"
)

const (
	// SummaryFileName is the human-readable report written under the output root.
	SummaryFileName = "scan_report.txt"
	// ResultsFileName is the JSON results array written under the output root.
	ResultsFileName = "scan_results.json"
)

// Result records the outcome for a single file. Field names match the
// original report format consumed by downstream tooling.
type Result struct {
	File        string    `json:"file"`
	Score       float64   `json:"nsfw_score"`
	IsSensitive bool      `json:"is_sensitive"`
	Timestamp   time.Time `json:"timestamp"`
	Destination string    `json:"destination,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Stats counts outcomes across one scan. Counters only ever increase during
// a run.
type Stats struct {
	Total     int `json:"total"`
	Clean     int `json:"clean"`
	Sensitive int `json:"sensitive"`
	Errors    int `json:"errors"`
	Skipped   int `json:"skipped"`
}

// Consistent reports whether every file is accounted for exactly once.
func (s Stats) Consistent() bool {
	return s.Clean+s.Sensitive+s.Errors+s.Skipped == s.Total
}

// SensitivePercent returns the share of sensitive files in percent.
func (s Stats) SensitivePercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Sensitive) / float64(s.Total) * 100
}

// Summary bundles everything the report writers need.
type Summary struct {
	ScanID      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Threshold   float64
	DryRun      bool
	Interrupted bool
	Stats       Stats
	Results     []Result
}

// WriteFiles writes the text summary and JSON results under outputRoot.
// Both are whole-file overwrites staged through a temp file.
func WriteFiles(outputRoot string, summary *Summary) (summaryPath, resultsPath string, err error) {
	summaryPath = filepath.Join(outputRoot, SummaryFileName)
	resultsPath = filepath.Join(outputRoot, ResultsFileName)

	if err = fileutil.WriteFileAtomic(summaryPath, []byte(renderSummaryText(summary)), 0o644); err != nil {
		return "", "", fmt.Errorf("write summary: %w", err)
	}

	results := summary.Results
	if results == nil {
		results = []Result{}
	}
	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode results: %w", err)
	}
	if err = fileutil.WriteFileAtomic(resultsPath, append(encoded, '\n'), 0o644); err != nil {
		return "", "", fmt.Errorf("write results: %w", err)
	}
	return summaryPath, resultsPath, nil
}

func renderSummaryText(summary *Summary) string {
	var b strings.Builder

	title := "Photo Cleaner Scan Report"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	b.WriteString(fmt.Sprintf("Scan Date: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Threshold: %g\n", summary.Threshold))
	if summary.DryRun {
		b.WriteString("Mode: dry run (no files were moved)\n")
	}
	b.WriteString("\n")

	stats := summary.Stats
	b.WriteString(fmt.Sprintf("Total Files: %d\n", stats.Total))
	b.WriteString(fmt.Sprintf("Clean Photos: %d\n", stats.Clean))
	b.WriteString(fmt.Sprintf("Sensitive Photos: %d\n", stats.Sensitive))
	b.WriteString(fmt.Sprintf("Errors: %d\n", stats.Errors))
	if stats.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Skipped: %d\n", stats.Skipped))
	}
	b.WriteString("\n")

	if stats.Total > 0 {
		b.WriteString(fmt.Sprintf("Sensitive Content: %.1f%%\n", stats.SensitivePercent()))
	}

	b.WriteString("\nNOTE: Scores come from basic pixel heuristics, not a trained model.\n")
	b.WriteString("Do not rely on this classification for anything that matters.\n")
	return b.String()
}
