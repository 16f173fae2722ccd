package chain

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazboun6/gwa/errors"
)

// writeChain builds a run directory with n deterministic rows. Row r
// records params [r, 10+r] with lnpost=-r, lnlike=-2r, accept=0.5.
func writeChain(t *testing.T, n int) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "run")
	w, err := Create(dir, []string{"a_param", "b_param"}, &Manifest{
		Version: "0.3.0", Pulsar: "J0000+0000", Model: "wn", Iterations: n,
	})
	require.NoError(t, err)
	for r := 0; r < n; r++ {
		fr := float64(r)
		require.NoError(t, w.Record([]float64{fr, 10 + fr}, -fr, -2*fr, 0.5, 0.0))
	}
	require.NoError(t, w.Checkpoint(n, StatusComplete))
	require.NoError(t, w.Close())
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeChain(t, 8)
	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a_param", "b_param"}, c.Names)
	assert.Equal(t, 8, c.Len())
	require.NotNil(t, c.Manifest)
	assert.Equal(t, "J0000+0000", c.Manifest.Pulsar)

	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, mustColumn(t, c, "a_param"))
	assert.Equal(t, 17.0, mustColumn(t, c, "b_param")[7])
	assert.Equal(t, -7.0, c.LnPost()[7])
	assert.Equal(t, -14.0, c.LnLike()[7])
	assert.Equal(t, 0.5, c.AcceptRate()[0])
	assert.Equal(t, 0.0, c.SwapAcceptRate()[0])
}

func mustColumn(t *testing.T, c *Chain, name string) []float64 {
	t.Helper()
	col, err := c.Column(name)
	require.NoError(t, err)
	return col
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	dir := writeChain(t, 4)

	// simulate a partial final write
	f, err := os.OpenFile(filepath.Join(dir, ChainFile), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("1.0 2.0 -1.0\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
}

func TestLoad_MissingChain(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WritePars(dir, []string{"a"}))
	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrChainMissing))
}

func TestLoad_MissingPars(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestBurn(t *testing.T) {
	dir := writeChain(t, 100)
	c, err := Load(dir)
	require.NoError(t, err)

	t.Run("quarter", func(t *testing.T) {
		b := c.Burn(0.25)
		assert.Equal(t, 75, b.Len())
		assert.Equal(t, 25.0, mustColumn(t, b, "a_param")[0])
	})

	t.Run("zero keeps everything", func(t *testing.T) {
		assert.Equal(t, 100, c.Burn(0).Len())
	})

	t.Run("invalid fraction falls back to default", func(t *testing.T) {
		assert.Equal(t, 75, c.Burn(1.5).Len())
		assert.Equal(t, 75, c.Burn(-0.1).Len())
	})

	t.Run("never burns the whole chain", func(t *testing.T) {
		b := c.Burn(0.999999)
		assert.GreaterOrEqual(t, b.Len(), 1)
	})
}

func TestColumn_Unknown(t *testing.T) {
	dir := writeChain(t, 4)
	c, err := Load(dir)
	require.NoError(t, err)

	_, err = c.Column("c_param")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoSuchParameter))
	assert.Contains(t, errors.FlattenHints(err), "a_param")
}

func TestMaxPosterior(t *testing.T) {
	dir := writeChain(t, 10)
	c, err := Load(dir)
	require.NoError(t, err)

	idx, val := c.MaxPosterior()
	assert.Equal(t, 0, idx) // lnpost = -r peaks at the first row
	assert.Equal(t, 0.0, val)
	assert.Equal(t, []float64{0, 10}, c.Sample(idx))
}

func TestSummaries(t *testing.T) {
	dir := writeChain(t, 101) // a_param uniform over 0..100
	c, err := Load(dir)
	require.NoError(t, err)

	s := Summaries(c)
	require.Len(t, s, 2)
	assert.Equal(t, "a_param", s[0].Name)
	assert.InDelta(t, 50.0, s[0].Median, 1.0)
	assert.InDelta(t, 16.0, s[0].P16, 1.5)
	assert.InDelta(t, 84.0, s[0].P84, 1.5)
	assert.Equal(t, 0.0, s[0].MaxPost)
	assert.InDelta(t, 60.0, s[1].Median, 1.0)
}

func TestAcceptance(t *testing.T) {
	dir := writeChain(t, 5)
	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.5, Acceptance(c))
}

func TestAutocorrTime(t *testing.T) {
	t.Run("alternating series decorrelates immediately", func(t *testing.T) {
		xs := make([]float64, 200)
		for i := range xs {
			xs[i] = float64(1 - 2*(i%2))
		}
		assert.Equal(t, 1.0, AutocorrTime(xs))
	})

	t.Run("blocky series is strongly correlated", func(t *testing.T) {
		xs := make([]float64, 400)
		for i := range xs {
			xs[i] = float64((i / 50) % 2)
		}
		tau := AutocorrTime(xs)
		assert.Greater(t, tau, 5.0)
	})

	t.Run("constant series", func(t *testing.T) {
		assert.Equal(t, 1.0, AutocorrTime([]float64{3, 3, 3, 3, 3, 3}))
	})

	t.Run("short series", func(t *testing.T) {
		assert.Equal(t, 1.0, AutocorrTime([]float64{1, 2}))
	})
}

func TestEffectiveSamples(t *testing.T) {
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = float64(1 - 2*(i%2))
	}
	assert.Equal(t, 200.0, EffectiveSamples(xs))
}

func TestModelCounts(t *testing.T) {
	nmodel := []float64{-0.4, 0.1, 0.4, 0.6, 1.2, 1.4, 0.9, 5.0, -0.6}
	counts := ModelCounts(nmodel, 2)
	assert.Equal(t, []int{3, 4}, counts) // 5.0 and -0.6 fall outside
}

func TestOddsRatio(t *testing.T) {
	nmodel := make([]float64, 0, 300)
	for i := 0; i < 100; i++ {
		nmodel = append(nmodel, 0.0)
	}
	for i := 0; i < 200; i++ {
		nmodel = append(nmodel, 1.0)
	}

	ratio, sigma, err := OddsRatio(nmodel, 0, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, ratio, 1e-12)
	assert.InDelta(t, 2.0*math.Sqrt(1.0/100+1.0/200), sigma, 1e-12)

	t.Run("unvisited model", func(t *testing.T) {
		_, _, err := OddsRatio([]float64{0, 0, 0}, 0, 1, 2)
		require.Error(t, err)
		assert.Contains(t, errors.FlattenHints(err), "run longer")
	})

	t.Run("index out of range", func(t *testing.T) {
		_, _, err := OddsRatio(nmodel, 0, 2, 2)
		require.Error(t, err)
	})
}
