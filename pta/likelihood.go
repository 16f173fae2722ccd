package pta

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/logger"
)

const log2Pi = 1.8378770664093453

// LogLikelihood evaluates the Gaussian-process-marginalized likelihood
// at a sampled point.
//
// With N the white-noise diagonal, T the concatenated basis and B the
// diagonal of basis prior variances, the residual covariance is
// C = N + T B Tt. The Woodbury identity reduces the solve to the
// basis-rank system Sigma = Binv + Tt Ninv T:
//
//	rt Cinv r = rt Ninv r - dt Sigmainv d,  d = Tt Ninv r
//	ln det C  = ln det N + ln det B + ln det Sigma
//
// Points where Sigma is not positive definite return -Inf.
func (m *Model) LogLikelihood(x []float64) float64 {
	v := m.values(x)
	n := m.Pulsar.N()

	// detrended residuals
	r := make([]float64, n)
	copy(r, m.Pulsar.Residuals)
	if len(m.det) > 0 {
		delay := make([]float64, n)
		for _, d := range m.det {
			for i := range delay {
				delay[i] = 0
			}
			d.Delay(v, delay)
			for i := range r {
				r[i] -= delay[i]
			}
		}
	}

	// white-noise diagonal
	ndiag := make([]float64, n)
	for _, w := range m.white {
		w.WhiteDiag(v, ndiag)
	}

	rNr := 0.0
	lndetN := 0.0
	for i := 0; i < n; i++ {
		rNr += r[i] * r[i] / ndiag[i]
		lndetN += math.Log(ndiag[i])
	}

	if m.basisTotal == 0 {
		return -0.5 * (rNr + lndetN + float64(n)*log2Pi)
	}

	// basis prior diagonal
	phi := make([]float64, m.basisTotal)
	col := 0
	for i, b := range m.bases {
		b.BasisPrior(v, phi[col:col+m.basisCols[i]])
		col += m.basisCols[i]
	}

	nb := m.basisTotal
	d := make([]float64, nb) // Tt Ninv r
	sigma := mat.NewSymDense(nb, nil)

	for j := 0; j < nb; j++ {
		for i := 0; i < n; i++ {
			d[j] += m.basis.At(i, j) * r[i] / ndiag[i]
		}
	}
	for j := 0; j < nb; j++ {
		for k := j; k < nb; k++ {
			s := 0.0
			for i := 0; i < n; i++ {
				s += m.basis.At(i, j) * m.basis.At(i, k) / ndiag[i]
			}
			sigma.SetSym(j, k, s)
		}
	}

	lndetB := 0.0
	for j := 0; j < nb; j++ {
		lndetB += math.Log(phi[j])
		sigma.SetSym(j, j, sigma.At(j, j)+1.0/phi[j])
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sigma); !ok {
		logger.Debugw("Sigma factorization failed", "pulsar", m.Pulsar.Name)
		return math.Inf(-1)
	}

	dv := mat.NewVecDense(nb, d)
	sol := mat.NewVecDense(nb, nil)
	if err := chol.SolveVecTo(sol, dv); err != nil {
		logger.Debugw("Sigma solve failed", "pulsar", m.Pulsar.Name, "error", err)
		return math.Inf(-1)
	}
	dSd := mat.Dot(dv, sol)

	lndetC := lndetN + lndetB + chol.LogDet()
	return -0.5 * (rNr - dSd + lndetC + float64(n)*log2Pi)
}

// LogPosterior returns the log posterior and log likelihood at x. The
// likelihood is skipped when the point falls outside the prior support.
func (m *Model) LogPosterior(x []float64) (lnpost, lnlike float64) {
	lp := m.LogPrior(x)
	if math.IsInf(lp, -1) {
		return math.Inf(-1), math.Inf(-1)
	}
	ll := m.LogLikelihood(x)
	return lp + ll, ll
}
