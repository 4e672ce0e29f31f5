package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"photoclean/internal/history"
	"photoclean/internal/report"
)

// renderRunsTable lists recorded scans, one row per run.
func renderRunsTable(runs []history.Run) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"ID", "Started", "Input", "Total", "Sensitive", "Errors", "Dry Run"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.InputDir,
			run.Stats.Total,
			run.Stats.Sensitive,
			run.Stats.Errors,
			yesNo(run.DryRun),
		})
	}
	tw.SetColumnConfigs(rightAligned(4, 5, 6))
	return tw.Render()
}

// renderResultsTable lists the per-file outcomes of one recorded scan.
func renderResultsTable(results []report.Result) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"File", "Score", "Status"})
	for _, result := range results {
		tw.AppendRow(table.Row{result.File, fmt.Sprintf("%.3f", result.Score), resultStatus(result)})
	}
	tw.SetColumnConfigs(rightAligned(2))
	return tw.Render()
}

func resultStatus(result report.Result) string {
	switch {
	case result.Error != "":
		return "error"
	case result.IsSensitive:
		return "sensitive"
	default:
		return "clean"
	}
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// rightAligned right-aligns the numeric columns while keeping headers flush
// left, matching the scan summary table in internal/report.
func rightAligned(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, number := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      number,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	return configs
}
