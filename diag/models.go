package diag

import (
	"fmt"
	"math"

	"github.com/pterm/pterm"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// OddsPair is the posterior odds of model B over model A.
type OddsPair struct {
	A     int
	B     int
	Ratio float64
	Sigma float64
}

// ModelReport is the model-selection view of a hypermodel chain.
type ModelReport struct {
	K         int
	Counts    []int
	Fractions []float64
	Odds      []OddsPair // each model vs model 0
}

// ModelSelection reads the model-index column of a burned hypermodel
// chain and tallies posterior support per model.
func ModelSelection(c *chain.Chain) (*ModelReport, error) {
	nmodel, err := c.Column(chain.NModelColumn)
	if err != nil {
		return nil, errors.WithHint(err, "model selection needs a hypermodel chain; run gwa hyper")
	}

	k := 2
	for _, v := range nmodel {
		if i := int(math.Round(v)); i+1 > k {
			k = i + 1
		}
	}

	r := &ModelReport{K: k, Counts: chain.ModelCounts(nmodel, k)}
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	r.Fractions = make([]float64, k)
	for i, n := range r.Counts {
		r.Fractions[i] = float64(n) / float64(total)
	}

	for j := 1; j < k; j++ {
		ratio, sigma, err := chain.OddsRatio(nmodel, 0, j, k)
		if err != nil {
			logger.Warnw("Odds ratio unavailable", "model", j, "error", err)
			continue
		}
		r.Odds = append(r.Odds, OddsPair{A: 0, B: j, Ratio: ratio, Sigma: sigma})
	}
	return r, nil
}

// Table lays the per-model tallies out for rendering.
func (r *ModelReport) Table() pterm.TableData {
	data := pterm.TableData{
		{"model", "samples", "fraction", "odds vs model 0"},
	}
	for i := 0; i < r.K; i++ {
		odds := "1"
		if i > 0 {
			odds = "n/a"
			for _, p := range r.Odds {
				if p.B == i {
					odds = fmt.Sprintf("%.3g +- %.2g", p.Ratio, p.Sigma)
				}
			}
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", r.Counts[i]),
			fmt.Sprintf("%.3f", r.Fractions[i]),
			odds,
		})
	}
	return data
}

// Render prints the model-selection table.
func (r *ModelReport) Render() error {
	pterm.DefaultSection.Println("model selection")
	return pterm.DefaultTable.WithHasHeader().WithData(r.Table()).Render()
}
