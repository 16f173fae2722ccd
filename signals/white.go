package signals

import (
	"math"

	"github.com/Hazboun6/gwa/psr"
)

// Default white-noise prior ranges. EFAC scales the reported TOA
// uncertainty; EQUAD adds in quadrature (TempoNest convention, applied
// after EFAC).
var (
	efacPrior  = Uniform{Lo: 0.01, Hi: 10}
	equadPrior = Uniform{Lo: -8.5, Hi: -5}
)

// MeasurementNoise models per-backend white noise:
//
//	N_ii = efac^2 * sigma_i^2 + 10^(2 * log10_equad)
type MeasurementNoise struct {
	pulsar    *psr.Pulsar
	selection Selection
	params    []Parameter
	// sigma2 caches squared TOA uncertainties
	sigma2 []float64
}

// NewMeasurementNoise builds EFAC/EQUAD white noise with one parameter
// pair per selection group.
func NewMeasurementNoise(p *psr.Pulsar, sel Selection) *MeasurementNoise {
	mn := &MeasurementNoise{
		pulsar:    p,
		selection: sel,
		sigma2:    make([]float64, p.N()),
	}
	for i, e := range p.Errors {
		mn.sigma2[i] = e * e
	}

	for _, group := range sel.Names {
		mn.params = append(mn.params,
			Parameter{Name: paramName(p.Name, group, "efac"), Prior: efacPrior},
			Parameter{Name: paramName(p.Name, group, "log10_equad"), Prior: equadPrior},
		)
	}
	return mn
}

func (mn *MeasurementNoise) Name() string { return "measurement_noise" }

func (mn *MeasurementNoise) Params() []Parameter { return mn.params }

// WhiteDiag adds efac^2 sigma^2 + 10^(2 log10_equad) per TOA.
func (mn *MeasurementNoise) WhiteDiag(v Values, out []float64) {
	for _, group := range mn.selection.Names {
		efac := v[paramName(mn.pulsar.Name, group, "efac")]
		equad2 := math.Pow(10, 2*v[paramName(mn.pulsar.Name, group, "log10_equad")])
		for _, i := range mn.selection.Groups[group] {
			out[i] += efac*efac*mn.sigma2[i] + equad2
		}
	}
}

// paramName builds the flat "<pulsar>[_<group>]_<param>" name used both for
// sampled parameters and noise-dictionary keys.
func paramName(pulsar, group, param string) string {
	if group == "" {
		return pulsar + "_" + param
	}
	return pulsar + "_" + group + "_" + param
}
