package signals

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/psr"
)

// DMRefFreq is the reference observing frequency (MHz) at which chromatic
// signals are normalized: the chromatic scale factor is exactly 1 there.
const DMRefFreq = 1400.0

// DefaultDMModes is the number of Fourier modes for DM variations.
const DefaultDMModes = 30

// DMVariations is a chromatic powerlaw Gaussian process: the red-noise
// Fourier basis with each row scaled by (1400 MHz / freq)^2, so
// low-frequency TOAs see a larger signal, as dispersion does.
type DMVariations struct {
	pulsar *psr.Pulsar
	params []Parameter

	basis *mat.Dense
	freqs []float64
	df    float64
}

// NewDMVariations builds a DM-noise GP with nmodes sine/cosine pairs.
func NewDMVariations(p *psr.Pulsar, nmodes int) *DMVariations {
	tspan := p.Tspan()
	basis, freqs := FourierBasis(p.TOAs, tspan, nmodes)

	// Scale rows by the chromatic factor
	n, m := basis.Dims()
	for i := 0; i < n; i++ {
		scale := chromaticScale(p.Freqs[i])
		for j := 0; j < m; j++ {
			basis.Set(i, j, basis.At(i, j)*scale)
		}
	}

	return &DMVariations{
		pulsar: p,
		params: []Parameter{
			{Name: p.Name + "_dm_gp_log10_A", Prior: redAmpPrior},
			{Name: p.Name + "_dm_gp_gamma", Prior: redGammaPrior},
		},
		basis: basis,
		freqs: freqs,
		df:    1.0 / tspan,
	}
}

// chromaticScale is (1400/freq)^2 for freq in MHz.
func chromaticScale(freq float64) float64 {
	r := DMRefFreq / freq
	return r * r
}

func (dm *DMVariations) Name() string { return "dm_gp" }

func (dm *DMVariations) Params() []Parameter { return dm.params }

func (dm *DMVariations) Basis() *mat.Dense { return dm.basis }

// BasisPrior writes the powerlaw PSD value at each basis column frequency.
func (dm *DMVariations) BasisPrior(v Values, out []float64) {
	log10A := v[dm.pulsar.Name+"_dm_gp_log10_A"]
	gamma := v[dm.pulsar.Name+"_dm_gp_gamma"]
	for j, f := range dm.freqs {
		out[j] = Powerlaw(f, log10A, gamma, dm.df)
	}
}
