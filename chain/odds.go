package chain

import (
	"math"

	"github.com/Hazboun6/gwa/errors"
)

// NModelColumn is the parameter name of the model index in a
// hypermodel chain.
const NModelColumn = "nmodel"

// ModelCounts tallies how many samples each of k models received,
// rounding the model-index column. Samples rounding outside [0, k) are
// ignored.
func ModelCounts(nmodel []float64, k int) []int {
	counts := make([]int, k)
	for _, v := range nmodel {
		i := int(math.Round(v))
		if i >= 0 && i < k {
			counts[i]++
		}
	}
	return counts
}

// OddsRatio estimates the posterior odds of model kb over model ka from
// a hypermodel chain's model-index column, with the Monte-Carlo
// counting uncertainty sigma = ratio * sqrt(1/na + 1/nb).
func OddsRatio(nmodel []float64, ka, kb, k int) (ratio, sigma float64, err error) {
	if ka < 0 || ka >= k || kb < 0 || kb >= k {
		return 0, 0, errors.Newf("model indices must be in [0, %d), got %d and %d", k, ka, kb)
	}
	counts := ModelCounts(nmodel, k)
	na, nb := counts[ka], counts[kb]
	if na == 0 || nb == 0 {
		return 0, 0, errors.WithHintf(
			errors.Newf("model %d visited %d times, model %d visited %d times", ka, na, kb, nb),
			"the chain never reached one of the models; run longer or raise the prior-draw jump weight")
	}
	ratio = float64(nb) / float64(na)
	sigma = ratio * math.Sqrt(1.0/float64(na)+1.0/float64(nb))
	return ratio, sigma, nil
}
