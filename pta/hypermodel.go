package pta

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
	"github.com/Hazboun6/gwa/signals"
)

// NModelName is the model-index parameter of a hypermodel chain.
const NModelName = "nmodel"

// HyperModel is the product-space union of several models for the same
// pulsar. The sampled vector holds the union of all model parameters
// sorted by name, with the continuous model index appended last.
// Rounding the index selects the active model; parameters the active
// model does not use are ignored by the likelihood but still carry
// their priors, which keeps the product-space measure proper.
type HyperModel struct {
	Models []*Model

	params []signals.Parameter
	// index into the union vector for each model's own parameters,
	// in the model's chain order
	slots [][]int
}

// NewHyperModel builds the product-space union. All models must refer
// to the same pulsar.
func NewHyperModel(ms []*Model) (*HyperModel, error) {
	if len(ms) < 2 {
		return nil, errors.Newf("hypermodel needs at least two models, got %d", len(ms))
	}
	for _, m := range ms[1:] {
		if m.Pulsar.Name != ms[0].Pulsar.Name {
			return nil, errors.Newf("hypermodel mixes pulsars %s and %s",
				ms[0].Pulsar.Name, m.Pulsar.Name)
		}
	}

	h := &HyperModel{Models: ms}

	seen := make(map[string]signals.Parameter)
	for _, m := range ms {
		for _, p := range m.Params() {
			if _, ok := seen[p.Name]; !ok {
				seen[p.Name] = p
			}
		}
	}
	h.params = make([]signals.Parameter, 0, len(seen)+1)
	for _, p := range seen {
		h.params = append(h.params, p)
	}
	sort.Slice(h.params, func(i, j int) bool { return h.params[i].Name < h.params[j].Name })

	k := float64(len(ms))
	h.params = append(h.params, signals.Parameter{
		Name:  NModelName,
		Prior: signals.Uniform{Lo: -0.5, Hi: k - 0.5},
	})

	pos := make(map[string]int, len(h.params))
	for i, p := range h.params {
		pos[p.Name] = i
	}
	h.slots = make([][]int, len(ms))
	for mi, m := range ms {
		names := m.ParamNames()
		h.slots[mi] = make([]int, len(names))
		for pi, name := range names {
			h.slots[mi][pi] = pos[name]
		}
	}

	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Recipe.Name
	}
	logger.Infow("Composed hypermodel",
		"pulsar", ms[0].Pulsar.Name,
		"models", names,
		"params", len(h.params))
	return h, nil
}

// Dim returns the size of the union parameter vector.
func (h *HyperModel) Dim() int { return len(h.params) }

// ParamNames returns the union parameter names in chain column order,
// nmodel last.
func (h *HyperModel) ParamNames() []string {
	names := make([]string, len(h.params))
	for i, p := range h.params {
		names[i] = p.Name
	}
	return names
}

// ActiveModel maps a model-index value to the model it selects, or -1
// when the index is outside the prior support.
func (h *HyperModel) ActiveModel(nmodel float64) int {
	k := int(math.Round(nmodel))
	if k < 0 || k >= len(h.Models) {
		return -1
	}
	return k
}

// LogPrior sums the priors of every union parameter, active or not.
func (h *HyperModel) LogPrior(x []float64) float64 {
	lp := 0.0
	for i, p := range h.params {
		lp += p.Prior.LogPDF(x[i])
	}
	return lp
}

// LogLikelihood evaluates the active model's likelihood on its slice of
// the union vector.
func (h *HyperModel) LogLikelihood(x []float64) float64 {
	k := h.ActiveModel(x[len(x)-1])
	if k < 0 {
		return math.Inf(-1)
	}
	m := h.Models[k]
	xm := make([]float64, len(h.slots[k]))
	for i, s := range h.slots[k] {
		xm[i] = x[s]
	}
	return m.LogLikelihood(xm)
}

// LogPosterior returns the log posterior and log likelihood at x.
func (h *HyperModel) LogPosterior(x []float64) (lnpost, lnlike float64) {
	lp := h.LogPrior(x)
	if math.IsInf(lp, -1) {
		return math.Inf(-1), math.Inf(-1)
	}
	ll := h.LogLikelihood(x)
	return lp + ll, ll
}

// InitialSample draws a starting point from the union priors.
func (h *HyperModel) InitialSample(rng *rand.Rand) []float64 {
	x := make([]float64, len(h.params))
	for i, p := range h.params {
		x[i] = p.Prior.Sample(rng)
	}
	return x
}

// PriorSample redraws component i from its prior.
func (h *HyperModel) PriorSample(rng *rand.Rand, i int) float64 {
	return h.params[i].Prior.Sample(rng)
}
