// Package pta composes per-pulsar noise models from signal recipes and
// evaluates their posteriors. A Model owns the ordered parameter vector
// the sampler walks through and the marginalized Gaussian-process
// likelihood over the pulsar's residuals.
package pta

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
	"github.com/Hazboun6/gwa/psr"
	"github.com/Hazboun6/gwa/signals"
)

// EcorrDataset is the dataset flag that carries epoch-correlated noise:
// NANOGrav backends record multiple simultaneous TOAs per observation.
const EcorrDataset = "NANOGrav"

// DipPulsar is the pulsar with known dispersion-dip events.
const DipPulsar = "J1713+0747"

// Model is a composed noise model for one pulsar.
type Model struct {
	Pulsar *psr.Pulsar
	Recipe signals.Recipe

	Signals []signals.Signal

	white []signals.WhiteSignal
	bases []signals.BasisSignal
	det   []signals.DeterministicSignal

	// sampled parameters, sorted by name; constants live in consts
	params []signals.Parameter
	consts signals.Values

	// concatenated basis, fixed over a run
	basis      *mat.Dense
	basisCols  []int // columns per basis signal
	basisTotal int
}

// BuildModel composes a model from a recipe, applying the conditional
// signals: ECORR when the pulsar carries the NANOGrav dataset flag, the
// dispersion dip for J1713+0747.
func BuildModel(p *psr.Pulsar, r signals.Recipe) (*Model, error) {
	if err := r.Validate(); err != nil {
		return nil, errors.Wrapf(err, "recipe %s", r.Name)
	}

	m := &Model{Pulsar: p, Recipe: r, consts: make(signals.Values)}

	sel := signals.ByBackend(p)

	if r.WhiteNoise {
		m.add(signals.NewMeasurementNoise(p, sel))
	}

	if enabled(r.Ecorr, p.HasDatasetFlag(EcorrDataset)) {
		ek := signals.NewEcorrKernel(p, sel)
		if ek.NEpochs() == 0 {
			logger.Debugw("No multi-TOA epochs, ECORR basis is empty",
				"pulsar", p.Name)
		}
		m.add(ek)
	}

	if r.RedNoise {
		m.add(signals.NewRedNoise(p, r.RedModes))
	}

	if r.DMGP {
		m.add(signals.NewDMVariations(p, r.DMModes))
	}

	if enabled(r.Dip, p.Name == DipPulsar) {
		m.add(signals.NewDispersionDip(p, r.DipWindow[0], r.DipWindow[1]))
	}

	tm, err := signals.NewTimingModel(p)
	if err != nil {
		return nil, err
	}
	m.add(tm)

	m.indexParams()
	m.concatBases()

	logger.Infow("Composed model",
		"pulsar", p.Name,
		"model", r.Name,
		"params", len(m.params),
		"toas", p.N())
	return m, nil
}

func enabled(sw string, auto bool) bool {
	switch sw {
	case signals.SwitchOn:
		return true
	case signals.SwitchOff:
		return false
	default:
		return auto
	}
}

func (m *Model) add(s signals.Signal) {
	m.Signals = append(m.Signals, s)
	if w, ok := s.(signals.WhiteSignal); ok {
		m.white = append(m.white, w)
	}
	if b, ok := s.(signals.BasisSignal); ok {
		m.bases = append(m.bases, b)
	}
	if d, ok := s.(signals.DeterministicSignal); ok {
		m.det = append(m.det, d)
	}
}

// indexParams collects non-constant parameters sorted by name. Sorted
// order is the chain column order, so it must be stable across runs.
func (m *Model) indexParams() {
	m.params = m.params[:0]
	for _, s := range m.Signals {
		for _, p := range s.Params() {
			if c, ok := p.Prior.(signals.Constant); ok {
				m.consts[p.Name] = c.Value
				continue
			}
			m.params = append(m.params, p)
		}
	}
	sort.Slice(m.params, func(i, j int) bool { return m.params[i].Name < m.params[j].Name })
}

func (m *Model) concatBases() {
	m.basisCols = m.basisCols[:0]
	m.basisTotal = 0
	for _, b := range m.bases {
		_, c := b.Basis().Dims()
		m.basisCols = append(m.basisCols, c)
		m.basisTotal += c
	}
	if m.basisTotal == 0 {
		m.basis = nil
		return
	}

	n := m.Pulsar.N()
	m.basis = mat.NewDense(n, m.basisTotal, nil)
	col := 0
	for _, b := range m.bases {
		sub := b.Basis()
		_, c := sub.Dims()
		for j := 0; j < c; j++ {
			for i := 0; i < n; i++ {
				m.basis.Set(i, col+j, sub.At(i, j))
			}
		}
		col += c
	}
}

// Dim returns the number of sampled parameters.
func (m *Model) Dim() int { return len(m.params) }

// ParamNames returns the sampled parameter names in chain column order.
func (m *Model) ParamNames() []string {
	names := make([]string, len(m.params))
	for i, p := range m.params {
		names[i] = p.Name
	}
	return names
}

// Params returns the sampled parameters in chain column order.
func (m *Model) Params() []signals.Parameter { return m.params }

// SetConstants pins every sampled parameter whose name appears in the
// noise dictionary to its dictionary value, removing it from the sampled
// vector. Returns the number of parameters pinned.
func (m *Model) SetConstants(noise map[string]float64) int {
	pinned := 0
	for _, s := range m.Signals {
		for _, p := range s.Params() {
			if v, ok := noise[p.Name]; ok {
				m.consts[p.Name] = v
				pinned++
			}
		}
	}
	if pinned == 0 {
		return 0
	}

	kept := m.params[:0]
	for _, p := range m.params {
		if _, ok := m.consts[p.Name]; !ok {
			kept = append(kept, p)
		}
	}
	m.params = kept

	logger.Infow("Pinned parameters from noise dictionary",
		"pulsar", m.Pulsar.Name,
		"count", pinned,
		"params", len(m.params))
	return pinned
}

// values builds the full name -> value map for a sampled point.
func (m *Model) values(x []float64) signals.Values {
	v := make(signals.Values, len(m.consts)+len(x))
	for name, val := range m.consts {
		v[name] = val
	}
	for i, p := range m.params {
		v[p.Name] = x[i]
	}
	return v
}

// LogPrior returns the sum of log prior densities, -Inf outside support.
func (m *Model) LogPrior(x []float64) float64 {
	lp := 0.0
	for i, p := range m.params {
		lp += p.Prior.LogPDF(x[i])
	}
	return lp
}

// InitialSample draws a starting point from the priors.
func (m *Model) InitialSample(rng *rand.Rand) []float64 {
	x := make([]float64, len(m.params))
	for i, p := range m.params {
		x[i] = p.Prior.Sample(rng)
	}
	return x
}

// PriorSample redraws component i from its prior. Used by prior-draw
// jump proposals.
func (m *Model) PriorSample(rng *rand.Rand, i int) float64 {
	return m.params[i].Prior.Sample(rng)
}
