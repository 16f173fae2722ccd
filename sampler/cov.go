package sampler

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// eigenFloor keeps degenerate directions from collapsing jump scales
// to zero.
const eigenFloor = 1e-16

// covEstimator accumulates a running mean and co-moment over chain
// samples and exposes the eigendecomposition the SCAM and AM jumps
// draw from. The decomposition is refreshed explicitly, not per
// sample.
type covEstimator struct {
	dim   int
	n     int
	mean  []float64
	m2    *mat.SymDense // co-moment sum, cov = m2/(n-1)
	delta []float64     // scratch, pre-update deltas of the last sample

	// last refreshed decomposition
	seeded bool
	vecs   *mat.Dense
	scale  []float64 // sqrt of eigenvalues
}

func newCovEstimator(dim int) *covEstimator {
	return &covEstimator{
		dim:   dim,
		mean:  make([]float64, dim),
		m2:    mat.NewSymDense(dim, nil),
		delta: make([]float64, dim),
		vecs:  mat.NewDense(dim, dim, nil),
		scale: make([]float64, dim),
	}
}

// seed initializes the decomposition from a diagonal covariance before
// any chain history exists.
func (c *covEstimator) seed(diag []float64) {
	for i := 0; i < c.dim; i++ {
		for j := 0; j < c.dim; j++ {
			v := 0.0
			if i == j {
				v = 1.0
			}
			c.vecs.Set(i, j, v)
		}
		c.scale[i] = math.Sqrt(math.Max(diag[i], eigenFloor))
	}
	c.seeded = true
}

// seedFrom initializes the decomposition from a full covariance, used
// when resuming from a cov.txt snapshot.
func (c *covEstimator) seedFrom(cov *mat.SymDense) bool {
	return c.decompose(cov)
}

// add folds one sample into the running moments. The co-moment takes
// the pre-update delta on one side and the post-update delta on the
// other, so all means must move before any product is formed.
func (c *covEstimator) add(x []float64) {
	c.n++
	fn := float64(c.n)
	for i := 0; i < c.dim; i++ {
		c.delta[i] = x[i] - c.mean[i]
		c.mean[i] += c.delta[i] / fn
	}
	for i := 0; i < c.dim; i++ {
		for j := i; j < c.dim; j++ {
			c.m2.SetSym(i, j, c.m2.At(i, j)+c.delta[i]*(x[j]-c.mean[j]))
		}
	}
}

// cov returns the current sample covariance, nil with fewer than two
// samples.
func (c *covEstimator) cov() *mat.SymDense {
	if c.n < 2 {
		return nil
	}
	out := mat.NewSymDense(c.dim, nil)
	for i := 0; i < c.dim; i++ {
		for j := i; j < c.dim; j++ {
			out.SetSym(i, j, c.m2.At(i, j)/float64(c.n-1))
		}
	}
	return out
}

// refresh recomputes the eigendecomposition from the accumulated
// covariance. Keeps the previous decomposition when the factorization
// fails or there is not enough history.
func (c *covEstimator) refresh() bool {
	cov := c.cov()
	if cov == nil {
		return false
	}
	return c.decompose(cov)
}

func (c *covEstimator) decompose(cov *mat.SymDense) bool {
	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return false
	}
	es.VectorsTo(c.vecs)
	vals := es.Values(nil)
	for i, v := range vals {
		c.scale[i] = math.Sqrt(math.Max(v, eigenFloor))
	}
	c.seeded = true
	return true
}

// scam moves along one random eigendirection.
func (c *covEstimator) scam(x []float64, cd float64, rng *rand.Rand) []float64 {
	y := make([]float64, c.dim)
	i := rng.IntN(c.dim)
	step := cd * c.scale[i] * rng.NormFloat64()
	for k := 0; k < c.dim; k++ {
		y[k] = x[k] + step*c.vecs.At(k, i)
	}
	return y
}

// am moves in all eigendirections at once.
func (c *covEstimator) am(x []float64, cd float64, rng *rand.Rand) []float64 {
	y := make([]float64, c.dim)
	copy(y, x)
	for i := 0; i < c.dim; i++ {
		step := cd * c.scale[i] * rng.NormFloat64()
		for k := 0; k < c.dim; k++ {
			y[k] += step * c.vecs.At(k, i)
		}
	}
	return y
}
