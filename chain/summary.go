package chain

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ParamSummary holds the marginal statistics of one parameter.
type ParamSummary struct {
	Name    string
	Median  float64
	P16     float64
	P84     float64
	MaxPost float64 // value at the highest-posterior sample
}

// Summaries computes marginal statistics for every parameter. Callers
// burn the chain first.
func Summaries(c *Chain) []ParamSummary {
	mapIdx, _ := c.MaxPosterior()
	mapRow := c.Sample(mapIdx)

	out := make([]ParamSummary, len(c.Names))
	for i, name := range c.Names {
		col := c.columnAt(i)
		sort.Float64s(col)
		out[i] = ParamSummary{
			Name:    name,
			Median:  stat.Quantile(0.5, stat.Empirical, col, nil),
			P16:     stat.Quantile(0.16, stat.Empirical, col, nil),
			P84:     stat.Quantile(0.84, stat.Empirical, col, nil),
			MaxPost: mapRow[i],
		}
	}
	return out
}

// Acceptance returns the final running acceptance fraction.
func Acceptance(c *Chain) float64 {
	ar := c.AcceptRate()
	return ar[len(ar)-1]
}

// AutocorrTime estimates the integrated autocorrelation time of a
// series by summing the empirical autocorrelation until it first drops
// below 0.05, capped at a third of the series length. Short or constant
// series report 1.
func AutocorrTime(xs []float64) float64 {
	n := len(xs)
	if n < 4 {
		return 1
	}

	mean := stat.Mean(xs, nil)
	var c0 float64
	for _, x := range xs {
		d := x - mean
		c0 += d * d
	}
	c0 /= float64(n)
	if c0 == 0 {
		return 1
	}

	tau := 1.0
	maxLag := n / 3
	for lag := 1; lag <= maxLag; lag++ {
		var ck float64
		for i := 0; i < n-lag; i++ {
			ck += (xs[i] - mean) * (xs[i+lag] - mean)
		}
		ck /= float64(n) * c0
		if ck < 0.05 {
			break
		}
		tau += 2 * ck
	}
	return tau
}

// EffectiveSamples estimates the number of independent samples in a
// series.
func EffectiveSamples(xs []float64) float64 {
	return float64(len(xs)) / AutocorrTime(xs)
}
