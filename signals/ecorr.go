package signals

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/psr"
)

var ecorrPrior = Uniform{Lo: -8.5, Hi: -5}

// DefaultQuantizeDT is the epoch grouping window in seconds. TOAs from the
// same observation land within a few seconds of each other once folded.
const DefaultQuantizeDT = 1.0

// minEpochSize is the smallest TOA group that defines an epoch; singletons
// carry no cross-TOA correlation.
const minEpochSize = 2

// quantize groups sorted TOAs (s) into observation epochs: a new epoch
// starts when a TOA is more than dt from the epoch's first TOA. Groups
// smaller than minEpochSize are dropped.
func quantize(toas []float64, dt float64) [][]int {
	var epochs [][]int
	var current []int
	var start float64

	for i, t := range toas {
		if len(current) == 0 {
			current = []int{i}
			start = t
			continue
		}
		if t-start <= dt {
			current = append(current, i)
			continue
		}
		if len(current) >= minEpochSize {
			epochs = append(epochs, current)
		}
		current = []int{i}
		start = t
	}
	if len(current) >= minEpochSize {
		epochs = append(epochs, current)
	}
	return epochs
}

// EcorrKernel models epoch-correlated white noise (ECORR) as a
// rank-reduced basis: one indicator column per observation epoch, with a
// per-backend 10^(2 log10_ecorr) prior variance on each epoch amplitude.
type EcorrKernel struct {
	pulsar    *psr.Pulsar
	selection Selection
	params    []Parameter

	basis *mat.Dense
	// epochGroup names the selection group of each basis column
	epochGroup []string
}

// NewEcorrKernel builds the quantization basis per selection group.
// Epochs are built within each group so a column never mixes backends.
func NewEcorrKernel(p *psr.Pulsar, sel Selection) *EcorrKernel {
	ek := &EcorrKernel{pulsar: p, selection: sel}

	type column struct {
		group   string
		indices []int
	}
	var columns []column

	for _, group := range sel.Names {
		indices := sel.Groups[group]
		toas := make([]float64, len(indices))
		for j, i := range indices {
			toas[j] = p.TOAs[i]
		}
		for _, epoch := range quantize(toas, DefaultQuantizeDT) {
			// Map positions within the group back to TOA indices
			cols := make([]int, len(epoch))
			for j, pos := range epoch {
				cols[j] = indices[pos]
			}
			columns = append(columns, column{group: group, indices: cols})
		}

		ek.params = append(ek.params,
			Parameter{Name: paramName(p.Name, group, "log10_ecorr"), Prior: ecorrPrior})
	}

	if len(columns) == 0 {
		// No multi-TOA epochs anywhere: zero-column basis
		ek.basis = mat.NewDense(p.N(), 1, nil)
		ek.epochGroup = []string{""}
		return ek
	}

	ek.basis = mat.NewDense(p.N(), len(columns), nil)
	ek.epochGroup = make([]string, len(columns))
	for j, col := range columns {
		ek.epochGroup[j] = col.group
		for _, i := range col.indices {
			ek.basis.Set(i, j, 1.0)
		}
	}
	return ek
}

func (ek *EcorrKernel) Name() string { return "ecorr" }

func (ek *EcorrKernel) Params() []Parameter { return ek.params }

func (ek *EcorrKernel) Basis() *mat.Dense { return ek.basis }

// BasisPrior writes 10^(2 log10_ecorr) of each column's backend.
func (ek *EcorrKernel) BasisPrior(v Values, out []float64) {
	for j, group := range ek.epochGroup {
		if group == "" {
			// Placeholder column of an epoch-free dataset
			out[j] = 1e-40
			continue
		}
		out[j] = math.Pow(10, 2*v[paramName(ek.pulsar.Name, group, "log10_ecorr")])
	}
}

// NEpochs returns the number of correlated epochs in the basis.
func (ek *EcorrKernel) NEpochs() int {
	_, c := ek.basis.Dims()
	if len(ek.epochGroup) == 1 && ek.epochGroup[0] == "" {
		return 0
	}
	return c
}
