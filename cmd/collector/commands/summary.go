package commands

import (
	"strconv"

	"nbadata-backend/services/collector"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderSummary(report collector.Report) string {
	w := table.NewWriter()
	w.SetTitle("collection summary")
	w.AppendHeader(table.Row{"source", "rows", "skipped players"})

	sources := []struct {
		name string
		c    collector.Collection
	}{
		{"stats", report.Stats},
		{"awards", report.Awards},
		{"salaries", report.Salaries},
	}
	for _, source := range sources {
		skipped := ""
		for i, skip := range source.c.Skipped {
			if i > 0 {
				skipped += ", "
			}
			skipped += skip.Player.FullName
		}
		w.AppendRow(table.Row{source.name, len(source.c.Table.Rows), skipped})
	}

	w.AppendFooter(table.Row{
		"merged",
		strconv.Itoa(len(report.Merged.Rows)),
		report.OutputFile,
	})
	return w.Render()
}
