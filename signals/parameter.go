// Package signals provides the composable terms of a pulsar noise model:
// white measurement noise, epoch-correlated noise, Fourier-basis Gaussian
// processes for red and DM noise, deterministic waveforms, and the timing
// model marginalization basis. A model is an ordered collection of signals;
// the pta package composes them and evaluates the likelihood.
package signals

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Values maps parameter names to their current sample values.
type Values map[string]float64

// Prior is a one-dimensional prior distribution.
type Prior interface {
	// LogPDF returns the log prior density at x (-Inf outside support).
	LogPDF(x float64) float64
	// Sample draws from the prior.
	Sample(rng *rand.Rand) float64
	String() string
}

// Parameter is a named sampled quantity with a prior.
type Parameter struct {
	Name  string
	Prior Prior
}

// Uniform is a flat prior on [Lo, Hi].
type Uniform struct {
	Lo, Hi float64
}

func (u Uniform) LogPDF(x float64) float64 {
	if x < u.Lo || x > u.Hi {
		return math.Inf(-1)
	}
	return -math.Log(u.Hi - u.Lo)
}

func (u Uniform) Sample(rng *rand.Rand) float64 {
	return u.Lo + rng.Float64()*(u.Hi-u.Lo)
}

func (u Uniform) String() string {
	return fmt.Sprintf("Uniform(%g, %g)", u.Lo, u.Hi)
}

// Normal is a Gaussian prior.
type Normal struct {
	Mu, Sigma float64
}

func (n Normal) LogPDF(x float64) float64 {
	d := distuv.Normal{Mu: n.Mu, Sigma: n.Sigma}
	return d.LogProb(x)
}

func (n Normal) Sample(rng *rand.Rand) float64 {
	d := distuv.Normal{Mu: n.Mu, Sigma: n.Sigma, Src: rng}
	return d.Rand()
}

func (n Normal) String() string {
	return fmt.Sprintf("Normal(%g, %g)", n.Mu, n.Sigma)
}

// Constant pins a parameter to a fixed value. Constant parameters do not
// enter the sampled vector.
type Constant struct {
	Value float64
}

func (c Constant) LogPDF(x float64) float64 {
	if x != c.Value {
		return math.Inf(-1)
	}
	return 0
}

func (c Constant) Sample(_ *rand.Rand) float64 {
	return c.Value
}

func (c Constant) String() string {
	return fmt.Sprintf("Constant(%g)", c.Value)
}

// IsConstant reports whether a parameter is pinned.
func (p Parameter) IsConstant() bool {
	_, ok := p.Prior.(Constant)
	return ok
}
