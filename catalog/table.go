package catalog

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Table renders catalog records as rows for `gwa runs`.
func Table(recs []*Record) pterm.TableData {
	data := pterm.TableData{
		{"run", "pulsar", "model", "status", "progress", "acc", "max lnpost", "updated"},
	}
	for _, r := range recs {
		data = append(data, []string{
			r.ID,
			r.Pulsar,
			r.Model,
			r.Status,
			fmt.Sprintf("%d/%d", r.Completed, r.Iterations),
			fmt.Sprintf("%.2f", r.Acceptance),
			fmt.Sprintf("%.1f", r.MaxLnPost),
			r.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return data
}

// Render prints the run table to the terminal.
func Render(recs []*Record) error {
	if len(recs) == 0 {
		pterm.Info.Println("No runs cataloged yet")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(Table(recs)).Render()
}
