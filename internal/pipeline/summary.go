package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/backmassage/clipstitch/internal/display"
)

// logSummary prints the per-partition result table and the closing
// totals line.
func (r *Runner) logSummary(stats *RunStats) {
	if len(stats.Parts) == 0 {
		return
	}

	fmt.Println(renderSummary(stats))

	if stats.Failed > 0 {
		r.Log.Warn("%d merged, %d skipped, %d failed in %s",
			stats.Encoded, stats.Skipped, stats.Failed, display.FormatDuration(stats.Elapsed))
		return
	}
	r.Log.Success("%d merged, %d skipped in %s",
		stats.Encoded, stats.Skipped, display.FormatDuration(stats.Elapsed))
}

func renderSummary(stats *RunStats) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Part", "Output", "Clips", "Result", "Size", "Time"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Part", Align: text.AlignRight},
		{Name: "Clips", Align: text.AlignRight},
		{Name: "Size", Align: text.AlignRight},
		{Name: "Time", Align: text.AlignRight},
	})

	for _, p := range stats.Parts {
		size := ""
		if p.OutputBytes > 0 {
			size = humanize.IBytes(uint64(p.OutputBytes))
		}
		elapsed := ""
		if p.Elapsed > 0 {
			elapsed = display.FormatDuration(p.Elapsed)
		}
		t.AppendRow(table.Row{
			p.Number,
			filepath.Base(p.OutputPath),
			p.ClipCount,
			string(p.Status),
			size,
			elapsed,
		})
	}
	return t.Render()
}
