package signals

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SecPerYear is the Julian year in seconds, the reference timescale for
// powerlaw amplitudes.
const SecPerYear = 365.25 * 86400

// FYr is the reference frequency 1/yr in Hz.
const FYr = 1.0 / SecPerYear

// FourierBasis builds the rank-reduced GP basis: alternating sine and
// cosine columns at frequencies j/T for j = 1..nmodes.
//
// Returns the basis F (n x 2*nmodes) and the frequency of each column
// (each f_j appears twice, for its sine and cosine columns).
func FourierBasis(toas []float64, tspan float64, nmodes int) (*mat.Dense, []float64) {
	n := len(toas)
	f := mat.NewDense(n, 2*nmodes, nil)
	freqs := make([]float64, 2*nmodes)

	for j := 1; j <= nmodes; j++ {
		fj := float64(j) / tspan
		freqs[2*(j-1)] = fj
		freqs[2*(j-1)+1] = fj
		for i, t := range toas {
			phase := 2 * math.Pi * fj * t
			f.Set(i, 2*(j-1), math.Sin(phase))
			f.Set(i, 2*(j-1)+1, math.Cos(phase))
		}
	}
	return f, freqs
}

// Powerlaw evaluates the red-noise power spectral density integrated over
// a frequency bin of width df:
//
//	phi(f) = A^2 / (12 pi^2) * f_yr^(gamma-3) * f^(-gamma) * df
//
// with A = 10^log10A the amplitude at f_yr. The result has units s^2 and
// is the prior variance of a Fourier amplitude at frequency f.
func Powerlaw(f, log10A, gamma, df float64) float64 {
	a := math.Pow(10, log10A)
	return a * a / (12 * math.Pi * math.Pi) *
		math.Pow(FYr, gamma-3) * math.Pow(f, -gamma) * df
}
