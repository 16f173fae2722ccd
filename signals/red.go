package signals

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/psr"
)

// Default red-noise prior ranges on the powerlaw amplitude and spectral
// index.
var (
	redAmpPrior   = Uniform{Lo: -20, Hi: -11}
	redGammaPrior = Uniform{Lo: 0, Hi: 7}
)

// DefaultRedModes is the number of Fourier modes for achromatic red noise.
const DefaultRedModes = 30

// RedNoise is an achromatic powerlaw Gaussian process on a Fourier basis.
type RedNoise struct {
	pulsar *psr.Pulsar
	params []Parameter

	basis *mat.Dense
	freqs []float64
	df    float64
}

// NewRedNoise builds a red-noise GP with nmodes sine/cosine pairs over the
// pulsar's observation span.
func NewRedNoise(p *psr.Pulsar, nmodes int) *RedNoise {
	tspan := p.Tspan()
	basis, freqs := FourierBasis(p.TOAs, tspan, nmodes)

	return &RedNoise{
		pulsar: p,
		params: []Parameter{
			{Name: p.Name + "_red_noise_log10_A", Prior: redAmpPrior},
			{Name: p.Name + "_red_noise_gamma", Prior: redGammaPrior},
		},
		basis: basis,
		freqs: freqs,
		df:    1.0 / tspan,
	}
}

func (rn *RedNoise) Name() string { return "red_noise" }

func (rn *RedNoise) Params() []Parameter { return rn.params }

func (rn *RedNoise) Basis() *mat.Dense { return rn.basis }

// BasisPrior writes the powerlaw PSD value at each basis column frequency.
func (rn *RedNoise) BasisPrior(v Values, out []float64) {
	log10A := v[rn.pulsar.Name+"_red_noise_log10_A"]
	gamma := v[rn.pulsar.Name+"_red_noise_gamma"]
	for j, f := range rn.freqs {
		out[j] = Powerlaw(f, log10A, gamma, rn.df)
	}
}

// Freqs returns the frequency of each basis column.
func (rn *RedNoise) Freqs() []float64 { return rn.freqs }
