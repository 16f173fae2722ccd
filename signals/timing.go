package signals

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/psr"
)

// TimingModelWeight is the prior variance on timing-model basis
// amplitudes. Effectively infinite: the Gaussian marginalization then
// projects the residuals orthogonal to the design matrix, equivalent to an
// unconstrained linear timing-model fit.
const TimingModelWeight = 1e40

// TimingModel marginalizes the linearized timing model: the pulsar's
// design matrix, SVD-normalized for numerical balance, used as a basis
// with a flat, effectively infinite prior. It carries no sampled
// parameters.
type TimingModel struct {
	basis *mat.Dense
	ncols int
}

// NewTimingModel builds the normalized design-matrix basis.
func NewTimingModel(p *psr.Pulsar) (*TimingModel, error) {
	design, _ := p.DesignMatrix()

	// Replace the design matrix by its left singular vectors: same column
	// span, orthonormal columns, so the huge prior weight cannot overwhelm
	// the conditioning of Sigma.
	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, errors.Newf("SVD of %s design matrix failed", p.Name)
	}

	var u mat.Dense
	svd.UTo(&u)

	_, c := u.Dims()
	basis := mat.DenseCopyOf(&u)
	return &TimingModel{basis: basis, ncols: c}, nil
}

func (tm *TimingModel) Name() string { return "linear_timing_model" }

// Params returns nil: the timing model is fully marginalized.
func (tm *TimingModel) Params() []Parameter { return nil }

func (tm *TimingModel) Basis() *mat.Dense { return tm.basis }

// BasisPrior writes the infinite-weight prior for every column.
func (tm *TimingModel) BasisPrior(_ Values, out []float64) {
	for j := 0; j < tm.ncols; j++ {
		out[j] = TimingModelWeight
	}
}
