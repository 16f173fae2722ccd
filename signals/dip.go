package signals

import (
	"math"

	"github.com/Hazboun6/gwa/psr"
)

// Dispersion-dip prior ranges. The epoch window brackets the known
// J1713+0747 dip events; amplitude and recovery time are broad.
var (
	dipAmpPrior = Uniform{Lo: -10, Hi: -2}
	dipTauPrior = Uniform{Lo: 0, Hi: 2.5} // log10 days
)

// DispersionDip is a deterministic chromatic exponential-dip waveform: a
// sudden decrease in dispersion measure at epoch t0 recovering on
// timescale tau,
//
//	delay(t) = 0                                                  t < t0
//	delay(t) = -10^log10_Amp * exp(-(t-t0)/10^log10_tau) * (1400/freq)^2   t >= t0
//
// with t and t0 in MJD, tau in days, and the amplitude in seconds at the
// 1400 MHz reference frequency.
type DispersionDip struct {
	pulsar *psr.Pulsar
	params []Parameter
	prefix string
}

// NewDispersionDip builds a dip waveform with a t0 prior over the given
// MJD window.
func NewDispersionDip(p *psr.Pulsar, t0Lo, t0Hi float64) *DispersionDip {
	prefix := p.Name + "_dmexp"
	return &DispersionDip{
		pulsar: p,
		prefix: prefix,
		params: []Parameter{
			{Name: prefix + "_log10_Amp", Prior: dipAmpPrior},
			{Name: prefix + "_t0", Prior: Uniform{Lo: t0Lo, Hi: t0Hi}},
			{Name: prefix + "_log10_tau", Prior: dipTauPrior},
		},
	}
}

func (d *DispersionDip) Name() string { return "dmexp" }

func (d *DispersionDip) Params() []Parameter { return d.params }

// Delay writes the dip waveform per TOA.
func (d *DispersionDip) Delay(v Values, out []float64) {
	amp := math.Pow(10, v[d.prefix+"_log10_Amp"])
	t0 := v[d.prefix+"_t0"]
	tau := math.Pow(10, v[d.prefix+"_log10_tau"])

	for i, t := range d.pulsar.MJDs {
		if t < t0 {
			out[i] = 0
			continue
		}
		out[i] = -amp * math.Exp(-(t-t0)/tau) * chromaticScale(d.pulsar.Freqs[i])
	}
}
