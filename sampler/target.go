// Package sampler implements a single-chain adaptive Metropolis-Hastings
// sampler with SCAM, AM, and differential-evolution jump proposals, the
// scheme pulsar noise analyses conventionally run.
package sampler

import "math/rand/v2"

// Target is a posterior the sampler can walk. pta.Model and
// pta.HyperModel both satisfy it.
type Target interface {
	// Dim returns the number of sampled parameters.
	Dim() int

	// ParamNames returns the parameter names in chain column order.
	ParamNames() []string

	// LogPosterior evaluates the log posterior and log likelihood at x.
	LogPosterior(x []float64) (lnpost, lnlike float64)

	// LogPrior evaluates the log prior density at x.
	LogPrior(x []float64) float64

	// InitialSample draws a full starting vector from the priors.
	InitialSample(rng *rand.Rand) []float64

	// PriorSample redraws component i from its prior.
	PriorSample(rng *rand.Rand, i int) float64
}
