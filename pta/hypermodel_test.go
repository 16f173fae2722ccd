package pta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHyperModel(t *testing.T) *HyperModel {
	t.Helper()
	p := testPulsar()
	m0, err := BuildModel(p, wnRecipe())
	require.NoError(t, err)
	m1, err := BuildModel(p, wnRnRecipe())
	require.NoError(t, err)
	h, err := NewHyperModel([]*Model{m0, m1})
	require.NoError(t, err)
	return h
}

func TestNewHyperModel(t *testing.T) {
	h := testHyperModel(t)

	// union of 4 white + 2 red, plus the model index
	assert.Equal(t, 7, h.Dim())
	names := h.ParamNames()
	assert.Equal(t, NModelName, names[len(names)-1])
	assert.Contains(t, names, "J1744-1134_GUPPI_efac")
	assert.Contains(t, names, "J1744-1134_red_noise_log10_A")

	// shared parameters appear once
	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	for n, c := range seen {
		assert.Equal(t, 1, c, "parameter %s duplicated", n)
	}
}

func TestNewHyperModel_Errors(t *testing.T) {
	p := testPulsar()
	m0, err := BuildModel(p, wnRecipe())
	require.NoError(t, err)

	t.Run("single model", func(t *testing.T) {
		_, err := NewHyperModel([]*Model{m0})
		require.Error(t, err)
	})

	t.Run("mixed pulsars", func(t *testing.T) {
		p2 := testPulsar()
		p2.Name = "B1937+21"
		p2.Par.Name = "B1937+21"
		m1, err := BuildModel(p2, wnRecipe())
		require.NoError(t, err)
		_, err = NewHyperModel([]*Model{m0, m1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "B1937+21")
	})
}

func TestHyperModel_ActiveModel(t *testing.T) {
	h := testHyperModel(t)

	cases := []struct {
		nmodel float64
		want   int
	}{
		{-0.4, 0},
		{0.0, 0},
		{0.4, 0},
		{0.6, 1},
		{1.0, 1},
		{1.4, 1},
		{1.6, -1},
		{-0.6, -1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, h.ActiveModel(c.nmodel), "nmodel=%.1f", c.nmodel)
	}
}

func TestHyperModel_LikelihoodDispatch(t *testing.T) {
	h := testHyperModel(t)

	pos := map[string]int{}
	for i, n := range h.ParamNames() {
		pos[n] = i
	}

	x := h.InitialSample(testRNG())
	for k, m := range h.Models {
		x[pos[NModelName]] = float64(k)
		got := h.LogLikelihood(x)

		xm := make([]float64, m.Dim())
		for i, name := range m.ParamNames() {
			xm[i] = x[pos[name]]
		}
		want := m.LogLikelihood(xm)
		assert.InDelta(t, want, got, math.Abs(want)*1e-12, "model %d", k)
	}
}

func TestHyperModel_SharedParametersAlias(t *testing.T) {
	h := testHyperModel(t)

	pos := map[string]int{}
	for i, n := range h.ParamNames() {
		pos[n] = i
	}

	// moving a white-noise parameter shifts both models' likelihoods
	x := h.InitialSample(testRNG())
	i := pos["J1744-1134_GUPPI_efac"]
	for k := range h.Models {
		x[pos[NModelName]] = float64(k)
		before := h.LogLikelihood(x)
		x[i] *= 1.5
		after := h.LogLikelihood(x)
		x[i] /= 1.5
		assert.NotEqual(t, before, after, "model %d ignores shared efac", k)
	}
}

func TestHyperModel_Posterior(t *testing.T) {
	h := testHyperModel(t)
	rng := testRNG()

	for i := 0; i < 20; i++ {
		x := h.InitialSample(rng)
		lnpost, lnlike := h.LogPosterior(x)
		assert.False(t, math.IsNaN(lnpost))
		assert.False(t, math.IsInf(lnpost, 0))
		assert.False(t, math.IsNaN(lnlike))
	}

	x := h.InitialSample(rng)
	x[h.Dim()-1] = 5.0 // model index outside the prior
	lnpost, _ := h.LogPosterior(x)
	assert.True(t, math.IsInf(lnpost, -1))
}

func TestHyperModel_PriorSample(t *testing.T) {
	h := testHyperModel(t)
	rng := testRNG()

	last := h.Dim() - 1
	for i := 0; i < 100; i++ {
		v := h.PriorSample(rng, last)
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 1.5)
	}
}
