package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderTable renders the scan summary as a console table.
func RenderTable(summary *Summary) string {
	p := message.NewPrinter(language.English)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "Count"})
	tw.AppendRows([]table.Row{
		{"Total files", p.Sprintf("%d", summary.Stats.Total)},
		{"Clean photos", p.Sprintf("%d", summary.Stats.Clean)},
		{"Sensitive photos", p.Sprintf("%d", summary.Stats.Sensitive)},
		{"Errors", p.Sprintf("%d", summary.Stats.Errors)},
		{"Skipped", p.Sprintf("%d", summary.Stats.Skipped)},
	})
	if summary.Stats.Total > 0 {
		tw.AppendFooter(table.Row{"Sensitive content", fmt.Sprintf("%.1f%%", summary.Stats.SensitivePercent())})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
