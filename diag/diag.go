// Package diag post-processes finished runs: burn-in, marginal summary
// tables, diagnostic plots, and hypermodel model selection.
package diag

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/Hazboun6/gwa/chain"
)

// Report summarizes a burned chain.
type Report struct {
	Dir          string
	Pulsar       string
	Model        string
	Samples      int // rows loaded
	Kept         int // rows after burn-in
	BurnFraction float64
	Acceptance   float64
	MaxLnPost    float64
	LnPostACT    float64
	Params       []chain.ParamSummary
}

// BuildReport loads summaries from a chain after discarding the leading
// burn fraction.
func BuildReport(c *chain.Chain, burn float64) *Report {
	b := c.Burn(burn)
	_, maxPost := b.MaxPosterior()

	r := &Report{
		Dir:          c.Dir,
		Samples:      c.Len(),
		Kept:         b.Len(),
		BurnFraction: burn,
		Acceptance:   chain.Acceptance(b),
		MaxLnPost:    maxPost,
		LnPostACT:    chain.AutocorrTime(b.LnPost()),
		Params:       chain.Summaries(b),
	}
	if c.Manifest != nil {
		r.Pulsar = c.Manifest.Pulsar
		r.Model = c.Manifest.Model
	}
	return r
}

// Table lays the per-parameter summaries out for rendering.
func (r *Report) Table() pterm.TableData {
	data := pterm.TableData{
		{"parameter", "median", "16%", "84%", "MAP"},
	}
	for _, p := range r.Params {
		data = append(data, []string{
			p.Name,
			fmt.Sprintf("%.4g", p.Median),
			fmt.Sprintf("%.4g", p.P16),
			fmt.Sprintf("%.4g", p.P84),
			fmt.Sprintf("%.4g", p.MaxPost),
		})
	}
	return data
}

// Render prints the report to the terminal.
func (r *Report) Render() error {
	title := r.Dir
	if r.Pulsar != "" {
		title = fmt.Sprintf("%s  %s  (%s)", r.Pulsar, r.Model, r.Dir)
	}
	pterm.DefaultSection.Println(title)
	pterm.Printfln("samples %d  kept %d (burn %.0f%%)  acceptance %.2f  max lnpost %.2f  lnpost ACT %.1f",
		r.Samples, r.Kept, 100*r.BurnFraction, r.Acceptance, r.MaxLnPost, r.LnPostACT)
	return pterm.DefaultTable.WithHasHeader().WithData(r.Table()).Render()
}
