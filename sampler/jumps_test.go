package sampler

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(99, 0))
}

func TestCovEstimator_MatchesTwoPass(t *testing.T) {
	rng := testRNG()
	const dim, n = 3, 200

	c := newCovEstimator(dim)
	data := make([][]float64, n)
	for i := range data {
		x := []float64{rng.NormFloat64(), 2 * rng.NormFloat64(), rng.Float64()}
		data[i] = x
		c.add(x)
	}

	cov := c.cov()
	require.NotNil(t, cov)

	// two-pass reference
	col := func(j int) []float64 {
		out := make([]float64, n)
		for i := range data {
			out[i] = data[i][j]
		}
		return out
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			want := stat.Covariance(col(i), col(j), nil)
			assert.InDelta(t, want, cov.At(i, j), math.Abs(want)*1e-10+1e-12, "cov[%d,%d]", i, j)
		}
	}
}

func TestCovEstimator_TooFewSamples(t *testing.T) {
	c := newCovEstimator(2)
	assert.Nil(t, c.cov())
	assert.False(t, c.refresh())
	c.add([]float64{1, 2})
	assert.Nil(t, c.cov())
}

func TestCovEstimator_Refresh(t *testing.T) {
	rng := testRNG()
	c := newCovEstimator(2)
	for i := 0; i < 100; i++ {
		c.add([]float64{rng.NormFloat64(), 3 * rng.NormFloat64()})
	}
	require.True(t, c.refresh())
	assert.True(t, c.seeded)

	for i := 0; i < 2; i++ {
		assert.Greater(t, c.scale[i], 0.0)
	}

	// eigenvectors are orthonormal
	var gram mat.Dense
	gram.Mul(c.vecs.T(), c.vecs)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, gram.At(i, j), 1e-10)
		}
	}
}

func TestCovEstimator_Seed(t *testing.T) {
	c := newCovEstimator(2)
	c.seed([]float64{0.04, 0.25})
	assert.True(t, c.seeded)
	assert.InDelta(t, 0.2, c.scale[0], 1e-12)
	assert.InDelta(t, 0.5, c.scale[1], 1e-12)
	assert.Equal(t, 1.0, c.vecs.At(0, 0))
	assert.Equal(t, 0.0, c.vecs.At(0, 1))
}

func TestCovEstimator_SeedFloor(t *testing.T) {
	c := newCovEstimator(1)
	c.seed([]float64{0})
	assert.Greater(t, c.scale[0], 0.0, "degenerate directions keep a floor scale")
}

func TestJumps_MoveAndPreserveLength(t *testing.T) {
	rng := testRNG()
	c := newCovEstimator(2)
	c.seed([]float64{0.01, 0.01})

	x := []float64{1.0, -2.0}
	y := c.scam(x, 0.5, rng)
	require.Len(t, y, 2)
	assert.NotEqual(t, x, y)

	y = c.am(x, 0.5, rng)
	require.Len(t, y, 2)
	assert.NotEqual(t, x, y)
	for _, v := range y {
		assert.False(t, math.IsNaN(v))
	}
}

func TestJumper_DEFallsBackWithoutHistory(t *testing.T) {
	rng := testRNG()
	g := newGaussTarget()
	c := newCovEstimator(g.Dim())
	c.seed([]float64{0.01, 0.01})
	j := newJumper(g, c, 0, 0, 100, 0)

	prop := j.propose([]float64{0, 0}, rng)
	assert.Equal(t, jumpSCAM, prop.name, "empty history degrades DE to SCAM")

	for i := 0; i < 10; i++ {
		j.remember([]float64{float64(i), float64(-i)})
	}
	prop = j.propose([]float64{0, 0}, rng)
	assert.Equal(t, jumpDE, prop.name)
	require.Len(t, prop.y, 2)
	for _, v := range prop.y {
		assert.False(t, math.IsNaN(v))
	}
}

func TestJumper_HistoryRing(t *testing.T) {
	g := newGaussTarget()
	c := newCovEstimator(g.Dim())
	c.seed([]float64{0.01, 0.01})
	j := newJumper(g, c, 100, 0, 0, 0)

	for i := 0; i < DEBufferSize+50; i++ {
		j.remember([]float64{float64(i), 0})
	}
	assert.Len(t, j.history, DEBufferSize)
	assert.True(t, j.hfull)
	// oldest entries were overwritten
	assert.Equal(t, float64(DEBufferSize), j.history[0][0])
}

func TestJumper_PriorDraw(t *testing.T) {
	rng := testRNG()
	g := newGaussTarget()
	c := newCovEstimator(g.Dim())
	c.seed([]float64{0.01, 0.01})
	j := newJumper(g, c, 0, 0, 0, 100)

	x := []float64{1.0, -2.0}
	for i := 0; i < 50; i++ {
		prop := j.propose(x, rng)
		require.Equal(t, jumpPriorDraw, prop.name)

		changed := 0
		for k := range x {
			if prop.y[k] != x[k] {
				changed++
			}
		}
		assert.Equal(t, 1, changed, "prior draw redraws exactly one component")
		// flat priors make the correction vanish
		assert.Equal(t, 0.0, prop.lqxy)
	}
}

func TestScaleMode(t *testing.T) {
	rng := testRNG()
	seen := map[float64]int{}
	for i := 0; i < 10000; i++ {
		s := scaleMode(rng)
		seen[s]++
		switch s {
		case 10.0, 0.2, 1.0:
		default:
			t.Fatalf("unexpected scale mode %v", s)
		}
	}
	assert.Greater(t, seen[1.0], seen[10.0], "unit scale dominates")
	assert.Greater(t, seen[1.0], seen[0.2])
	assert.Greater(t, seen[10.0], 0)
	assert.Greater(t, seen[0.2], 0)
}
