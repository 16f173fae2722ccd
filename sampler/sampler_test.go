package sampler

import (
	"context"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/errors"
)

// gaussTarget is a product of independent Gaussians under a flat prior,
// an analytically known posterior for end-to-end sampler checks.
type gaussTarget struct {
	mu    []float64
	sigma []float64
	lo    float64
	hi    float64
}

func newGaussTarget() *gaussTarget {
	return &gaussTarget{
		mu:    []float64{1.0, -2.0},
		sigma: []float64{0.5, 1.5},
		lo:    -10,
		hi:    10,
	}
}

func (g *gaussTarget) Dim() int { return len(g.mu) }

func (g *gaussTarget) ParamNames() []string {
	return []string{"gauss_x", "gauss_y"}[:len(g.mu)]
}

func (g *gaussTarget) LogPrior(x []float64) float64 {
	lp := 0.0
	for _, v := range x {
		if v < g.lo || v > g.hi {
			return math.Inf(-1)
		}
		lp += -math.Log(g.hi - g.lo)
	}
	return lp
}

func (g *gaussTarget) LogPosterior(x []float64) (float64, float64) {
	lp := g.LogPrior(x)
	if math.IsInf(lp, -1) {
		return math.Inf(-1), math.Inf(-1)
	}
	ll := 0.0
	for i, v := range x {
		z := (v - g.mu[i]) / g.sigma[i]
		ll += -0.5*z*z - math.Log(g.sigma[i]*math.Sqrt(2*math.Pi))
	}
	return lp + ll, ll
}

func (g *gaussTarget) InitialSample(rng *rand.Rand) []float64 {
	x := make([]float64, len(g.mu))
	for i := range x {
		x[i] = g.lo + rng.Float64()*(g.hi-g.lo)
	}
	return x
}

func (g *gaussTarget) PriorSample(rng *rand.Rand, i int) float64 {
	return g.lo + rng.Float64()*(g.hi-g.lo)
}

func testOptions(dir string) Options {
	return Options{
		Iterations: 2000,
		Thin:       10,
		SaveEvery:  500,
		CovUpdate:  500,
		Seed:       42,
		OutDir:     dir,
	}
}

func TestRun_ChainContract(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	opts := testOptions(dir)
	opts.Pulsar = "J0000+0000"
	opts.Model = "wn"

	sum, err := New(newGaussTarget(), opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000, sum.Iterations)
	assert.Equal(t, 200, sum.Samples)
	assert.Greater(t, sum.Acceptance, 0.0)
	assert.Less(t, sum.Acceptance, 1.0)

	c, err := chain.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"gauss_x", "gauss_y"}, c.Names)
	assert.Equal(t, 200, c.Len())

	require.NotNil(t, c.Manifest)
	assert.Equal(t, "J0000+0000", c.Manifest.Pulsar)
	assert.Equal(t, "wn", c.Manifest.Model)
	assert.Equal(t, int64(42), c.Manifest.Seed)
	assert.Equal(t, 2000, c.Manifest.Completed)
	assert.Equal(t, chain.StatusComplete, c.Manifest.Status)

	acc := chain.Acceptance(c)
	assert.Greater(t, acc, 0.0)
	assert.Less(t, acc, 1.0)
	for _, v := range c.SwapAcceptRate() {
		assert.Equal(t, 0.0, v, "single chain attempts no swaps")
	}

	_, err = os.Stat(filepath.Join(dir, chain.CovFile))
	assert.NoError(t, err, "covariance snapshot written at cov updates")
}

func TestRun_Deterministic(t *testing.T) {
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	_, err := New(newGaussTarget(), testOptions(dirA)).Run(context.Background())
	require.NoError(t, err)
	_, err = New(newGaussTarget(), testOptions(dirB)).Run(context.Background())
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dirA, chain.ChainFile))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dirB, chain.ChainFile))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must reproduce the chain")
}

func TestRun_Resume(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	_, err := New(newGaussTarget(), testOptions(dir)).Run(context.Background())
	require.NoError(t, err)

	opts := testOptions(dir)
	opts.Resume = true
	opts.Iterations = 4000
	opts.Seed = 43
	sum, err := New(newGaussTarget(), opts).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Resumed)
	assert.Equal(t, 4000, sum.Iterations)

	c, err := chain.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 400, c.Len(), "resume appends, never truncates")
	assert.Equal(t, 4000, c.Manifest.Completed)
	assert.Equal(t, 4000, c.Manifest.Iterations)
	assert.Equal(t, chain.StatusComplete, c.Manifest.Status)
}

func TestRun_ResumeAlreadyComplete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	_, err := New(newGaussTarget(), testOptions(dir)).Run(context.Background())
	require.NoError(t, err)

	opts := testOptions(dir)
	opts.Resume = true
	_, err = New(newGaussTarget(), opts).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--iterations")
}

func TestRun_ResumeVersionGate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	_, err := New(newGaussTarget(), testOptions(dir)).Run(context.Background())
	require.NoError(t, err)

	m, err := chain.ReadManifest(dir)
	require.NoError(t, err)
	m.Version = "9.0.0"
	require.NoError(t, chain.WriteManifest(dir, m))

	opts := testOptions(dir)
	opts.Resume = true
	opts.Iterations = 4000
	_, err = New(newGaussTarget(), opts).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleRun))
}

func TestRun_RefusesExistingDirWithoutResume(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	_, err := New(newGaussTarget(), testOptions(dir)).Run(context.Background())
	require.NoError(t, err)

	_, err = New(newGaussTarget(), testOptions(dir)).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--resume")
}

func TestRun_ContextCancel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := New(newGaussTarget(), testOptions(dir)).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, sum, "an interrupted run still reports a summary")
	assert.Equal(t, 0, sum.Samples)

	m, err := chain.ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, chain.StatusInterrupted, m.Status)
}

func TestRun_RecoversPosteriorMean(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	opts := testOptions(dir)
	opts.Iterations = 30000
	opts.Thin = 5

	_, err := New(newGaussTarget(), opts).Run(context.Background())
	require.NoError(t, err)

	c, err := chain.Load(dir)
	require.NoError(t, err)
	b := c.Burn(0.25)

	xs, err := b.Column("gauss_x")
	require.NoError(t, err)
	ys, err := b.Column("gauss_y")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, stat.Mean(xs, nil), 0.15)
	assert.InDelta(t, -2.0, stat.Mean(ys, nil), 0.3)
	assert.InDelta(t, 0.5, stat.StdDev(xs, nil), 0.15)
	assert.InDelta(t, 1.5, stat.StdDev(ys, nil), 0.4)
}

func TestRun_PriorDrawJumps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	opts := testOptions(dir)
	opts.PriorDrawWeight = 25

	sum, err := New(newGaussTarget(), opts).Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, sum.Acceptance, 0.0)
}
