package signals

import "gonum.org/v1/gonum/mat"

// Signal is one term of a noise model. Concrete signals additionally
// implement WhiteSignal, BasisSignal, or DeterministicSignal depending on
// how they enter the likelihood.
type Signal interface {
	// Name identifies the signal within a model, e.g. "measurement_noise".
	Name() string
	// Params returns the signal's parameters in a fixed order.
	Params() []Parameter
}

// WhiteSignal contributes to the diagonal white-noise covariance.
type WhiteSignal interface {
	Signal
	// WhiteDiag adds the signal's variance contribution (s^2) to out,
	// indexed by TOA.
	WhiteDiag(v Values, out []float64)
}

// BasisSignal contributes a rank-reduced Gaussian process: a fixed basis
// T (n x m) with a diagonal prior covariance B over basis amplitudes.
type BasisSignal interface {
	Signal
	// Basis returns the signal's basis matrix. The matrix is fixed over a
	// sampling run and may be cached by the caller.
	Basis() *mat.Dense
	// BasisPrior writes the prior variance of each basis amplitude into
	// out (length = basis columns).
	BasisPrior(v Values, out []float64)
}

// DeterministicSignal contributes a parameterized waveform subtracted from
// the residuals before the Gaussian likelihood is evaluated.
type DeterministicSignal interface {
	Signal
	// Delay writes the waveform (s) into out, indexed by TOA.
	Delay(v Values, out []float64)
}
