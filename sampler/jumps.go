package sampler

import (
	"math"
	"math/rand/v2"
)

// Jump proposal names, used in adaptation logging.
const (
	jumpSCAM      = "scam"
	jumpAM        = "am"
	jumpDE        = "de"
	jumpPriorDraw = "prior"
)

// DEBufferSize is the history ring the differential-evolution proposal
// draws pairs from.
const DEBufferSize = 1000

// scaleMode occasionally inflates or shrinks a jump to cross between
// posterior modes.
func scaleMode(rng *rand.Rand) float64 {
	p := rng.Float64()
	switch {
	case p > 0.97:
		return 10.0
	case p > 0.90:
		return 0.2
	default:
		return 1.0
	}
}

// proposal is one jump: the proposed point and the log of the forward
// to reverse proposal density ratio entering the acceptance rule.
type proposal struct {
	name string
	y    []float64
	lqxy float64
}

// jumper owns the proposal machinery: the adapted covariance, the DE
// history ring, and the weighted choice between jump kinds.
type jumper struct {
	target Target
	cov    *covEstimator
	cd     float64 // 2.4/sqrt(2 ndim), the Haario scaling

	history [][]float64
	hpos    int
	hfull   bool

	// cumulative weights for scam, am, de, prior draws
	cum    [4]float64
	ptotal float64
}

func newJumper(target Target, cov *covEstimator, scamW, amW, deW, priorW int) *jumper {
	j := &jumper{
		target:  target,
		cov:     cov,
		cd:      2.4 / math.Sqrt(2.0*float64(target.Dim())),
		history: make([][]float64, 0, DEBufferSize),
	}
	ws := [4]float64{float64(scamW), float64(amW), float64(deW), float64(priorW)}
	total := 0.0
	for i, w := range ws {
		total += w
		j.cum[i] = total
	}
	j.ptotal = total
	return j
}

// remember folds the current state into the DE history ring.
func (j *jumper) remember(x []float64) {
	cp := make([]float64, len(x))
	copy(cp, x)
	if len(j.history) < DEBufferSize {
		j.history = append(j.history, cp)
		return
	}
	j.history[j.hpos] = cp
	j.hpos = (j.hpos + 1) % DEBufferSize
	j.hfull = true
}

// propose picks a jump kind by weight and builds the proposal.
func (j *jumper) propose(x []float64, rng *rand.Rand) proposal {
	u := rng.Float64() * j.ptotal
	switch {
	case u < j.cum[0]:
		return proposal{name: jumpSCAM, y: j.cov.scam(x, j.cd*scaleMode(rng), rng)}
	case u < j.cum[1]:
		return proposal{name: jumpAM, y: j.cov.am(x, j.cd*scaleMode(rng), rng)}
	case u < j.cum[2]:
		return j.proposeDE(x, rng)
	default:
		return j.proposePriorDraw(x, rng)
	}
}

// proposeDE jumps along the difference of two history points. Until
// the history holds enough points it degrades to a SCAM move.
func (j *jumper) proposeDE(x []float64, rng *rand.Rand) proposal {
	n := len(j.history)
	if n < 3 {
		return proposal{name: jumpSCAM, y: j.cov.scam(x, j.cd*scaleMode(rng), rng)}
	}

	i1 := rng.IntN(n)
	i2 := rng.IntN(n)
	for i2 == i1 {
		i2 = rng.IntN(n)
	}

	// half the DE moves use the unscaled difference, crossing between
	// modes in one step
	gamma := j.cd
	if rng.Float64() < 0.5 {
		gamma = 1.0
	}

	y := make([]float64, len(x))
	for k := range x {
		y[k] = x[k] + gamma*(j.history[i1][k]-j.history[i2][k])
	}
	return proposal{name: jumpDE, y: y}
}

// proposePriorDraw redraws one component from its prior. The proposal
// density is the prior itself, so the correction is the prior ratio of
// old over new, leaving the acceptance driven by likelihood alone.
func (j *jumper) proposePriorDraw(x []float64, rng *rand.Rand) proposal {
	y := make([]float64, len(x))
	copy(y, x)
	i := rng.IntN(len(x))
	y[i] = j.target.PriorSample(rng, i)
	lqxy := j.target.LogPrior(x) - j.target.LogPrior(y)
	if math.IsNaN(lqxy) || math.IsInf(lqxy, 0) {
		lqxy = 0
	}
	return proposal{name: jumpPriorDraw, y: y, lqxy: lqxy}
}
