package toasim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/Hazboun6/gwa/psr"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{Seed: 7, NTOA: 50}

	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Residuals, b.Residuals)

	cfg.Seed = 8
	c, err := Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Residuals, c.Residuals)
}

func TestGenerate_WhiteAmplitude(t *testing.T) {
	d, err := Generate(Config{
		Seed:   3,
		NTOA:   2000,
		TOAErr: 1.0, // 1 microsecond reported
		EFAC:   2.0,
	})
	require.NoError(t, err)

	// Injected sd = EFAC * sigma = 2 microseconds
	sd := stat.StdDev(d.Residuals, nil)
	assert.InDelta(t, 2.0e-6, sd, 0.1e-6)

	for _, e := range d.Errors {
		assert.Equal(t, 1.0e-6, e, "reported uncertainty stays unscaled")
	}
}

func TestGenerate_EpochStructure(t *testing.T) {
	d, err := Generate(Config{
		Seed:     1,
		NTOA:     6,
		Freqs:    []float64{1400, 820},
		Backends: []string{"GUPPI", "PUPPI"},
	})
	require.NoError(t, err)

	step := 120.0 / psr.SecPerDay
	assert.Equal(t, 55000.0, d.MJDs[0])
	assert.InDelta(t, 55000.0+step, d.MJDs[1], 1e-12)
	assert.InDelta(t, 55014.0, d.MJDs[2], 1e-12)

	assert.Equal(t, []float64{1400, 820, 1400, 820, 1400, 820}, d.Freqs)
	assert.Equal(t, []string{"GUPPI", "GUPPI", "PUPPI", "PUPPI", "GUPPI", "GUPPI"}, d.Backends)

	for i := 1; i < len(d.MJDs); i++ {
		assert.Greater(t, d.MJDs[i], d.MJDs[i-1], "TOAs must be time-ordered")
	}
}

func TestGenerate_RedInjection(t *testing.T) {
	base := Config{Seed: 11, NTOA: 100}
	white, err := Generate(base)
	require.NoError(t, err)

	base.RedModes = 30
	base.RedLog10A = -13
	base.RedGamma = 13.0 / 3
	withRed, err := Generate(base)
	require.NoError(t, err)

	var redMean, redRMS float64
	for _, r := range withRed.Red {
		redMean += r
		redRMS += r * r
	}
	redMean /= float64(len(withRed.Red))
	redRMS = math.Sqrt(redRMS / float64(len(withRed.Red)))
	assert.Greater(t, redRMS, 0.0, "injection must add signal")

	// Same seed draws the same white noise, so the residual difference
	// is exactly the mean-subtracted red realization.
	for i := range white.Residuals {
		diff := withRed.Residuals[i] - white.Residuals[i]
		assert.InDelta(t, withRed.Red[i]-redMean, diff, 1e-15)
	}
}

func TestGenerate_Invalid(t *testing.T) {
	_, err := Generate(Config{NTOA: 1})
	assert.Error(t, err)

	_, err = Generate(Config{RedModes: 2, RedGamma: 0})
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	d, err := Generate(Config{
		Seed:     5,
		NTOA:     12,
		Backends: []string{"GUPPI"},
		Dataset:  "NANOGrav",
	})
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := d.Write(dir)
	require.NoError(t, err)

	sets, err := psr.Discover(dir)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "J0000+0000", sets[0].Name)
	assert.Equal(t, paths.Par, sets[0].Par)

	p, err := psr.Load(sets[0])
	require.NoError(t, err)
	assert.Equal(t, 12, p.N())
	assert.True(t, p.HasDatasetFlag("NANOGrav"))
	assert.Equal(t, []string{"GUPPI"}, p.UniqueBackends())

	for i := range d.Residuals {
		assert.InEpsilon(t, d.Residuals[i], p.Residuals[i], 1e-9)
		assert.InEpsilon(t, d.Errors[i], p.Errors[i], 1e-5)
	}
}

func TestWrite_ParContent(t *testing.T) {
	d, err := Generate(Config{Seed: 2, NTOA: 10, Name: "J1909-3744"})
	require.NoError(t, err)

	paths, err := d.Write(t.TempDir())
	require.NoError(t, err)

	par, err := psr.ParsePar(paths.Par)
	require.NoError(t, err)
	assert.Equal(t, "J1909-3744", par.Name)
	assert.Equal(t, 300.0, par.F0)
	assert.Equal(t, "DE440", par.Ephem)

	start, finish := d.Span()
	assert.InDelta(t, start, par.START, 1e-3)
	assert.InDelta(t, finish, par.FINISH, 1e-3)
}
