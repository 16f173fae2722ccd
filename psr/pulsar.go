package psr

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/errors"
)

// KDM is the dispersion slope constant in s MHz^2 / (pc cm^-3): a signal
// with dispersion measure DM is delayed by KDM * DM / freq^2 seconds at
// observing frequency freq MHz.
const KDM = 4.148808e3

// SecPerDay converts MJD intervals to seconds.
const SecPerDay = 86400.0

// Pulsar is the assembled timing dataset for one pulsar, sorted by epoch.
// All slices are indexed by TOA.
type Pulsar struct {
	Name string
	Par  *ParFile

	MJDs      []float64 // arrival times, MJD
	TOAs      []float64 // arrival times, s (MJD * 86400)
	Residuals []float64 // timing residuals, s
	Errors    []float64 // TOA uncertainties, s
	Freqs     []float64 // observing frequencies, MHz
	Backends  []string  // backend system per TOA
	Flags     []map[string]string

	RA, Dec float64 // radians

	Distance      float64 // kpc
	DistanceError float64 // kpc

	designMatrix *mat.Dense
	designNames  []string
}

// residMJDTolerance is the maximum MJD disagreement between a TOA and its
// residual row, in days (~9 ms).
const residMJDTolerance = 1e-7

// NewPulsar assembles a Pulsar from parsed products. TOAs and residual rows
// are sorted by epoch and paired 1:1; a count or epoch mismatch means the
// residual product is stale relative to the tim file.
func NewPulsar(par *ParFile, toas []TOA, resids []Residual) (*Pulsar, error) {
	if len(toas) == 0 {
		return nil, errors.Newf("pulsar %s has no TOAs", par.Name)
	}
	if len(toas) != len(resids) {
		return nil, errors.Newf("pulsar %s: %d TOAs but %d residual rows (stale residual product?)",
			par.Name, len(toas), len(resids))
	}

	sorted := make([]TOA, len(toas))
	copy(sorted, toas)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MJD < sorted[j].MJD })

	sortedResids := make([]Residual, len(resids))
	copy(sortedResids, resids)
	sort.SliceStable(sortedResids, func(i, j int) bool {
		return sortedResids[i].MJD < sortedResids[j].MJD
	})

	p := &Pulsar{
		Name:      par.Name,
		Par:       par,
		MJDs:      make([]float64, len(sorted)),
		TOAs:      make([]float64, len(sorted)),
		Residuals: make([]float64, len(sorted)),
		Errors:    make([]float64, len(sorted)),
		Freqs:     make([]float64, len(sorted)),
		Backends:  make([]string, len(sorted)),
		Flags:     make([]map[string]string, len(sorted)),
		RA:        par.RAJ,
		Dec:       par.DECJ,
	}

	for i, toa := range sorted {
		r := sortedResids[i]
		if math.Abs(toa.MJD-r.MJD) > residMJDTolerance {
			return nil, errors.Newf(
				"pulsar %s: TOA %d at MJD %.9f has residual row at MJD %.9f (stale residual product?)",
				par.Name, i, toa.MJD, r.MJD)
		}
		p.MJDs[i] = toa.MJD
		p.TOAs[i] = toa.MJD * SecPerDay
		p.Residuals[i] = r.Resid
		p.Errors[i] = r.Error
		p.Freqs[i] = toa.Freq
		p.Backends[i] = toa.Backend()
		p.Flags[i] = toa.Flags
	}

	p.Distance, p.DistanceError = lookupDistance(par.Name)

	return p, nil
}

// N returns the number of TOAs.
func (p *Pulsar) N() int {
	return len(p.TOAs)
}

// Tspan returns the observation span in seconds.
func (p *Pulsar) Tspan() float64 {
	return (p.MJDs[len(p.MJDs)-1] - p.MJDs[0]) * SecPerDay
}

// UniqueBackends returns the distinct backend systems in sorted order.
// Backend order determines per-backend parameter naming, so it must be
// deterministic.
func (p *Pulsar) UniqueBackends() []string {
	seen := make(map[string]bool)
	for _, b := range p.Backends {
		seen[b] = true
	}
	out := make([]string, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// HasDatasetFlag reports whether any TOA carries the given -pta flag value.
func (p *Pulsar) HasDatasetFlag(dataset string) bool {
	for _, f := range p.Flags {
		if f["pta"] == dataset {
			return true
		}
	}
	return false
}

// DesignMatrix returns the analytic timing-model design matrix (n x p) and
// its column names. Columns: phase offset, spin (F0, F1), dispersion (DM,
// plus DM1/DM2 when fit or nonzero), and one indicator per JUMP. The
// matrix is used as a marginalization basis after SVD normalization, so
// column scaling is immaterial.
func (p *Pulsar) DesignMatrix() (*mat.Dense, []string) {
	if p.designMatrix != nil {
		return p.designMatrix, p.designNames
	}

	n := p.N()
	names := []string{"Offset", "F0", "F1", "DM"}
	withDM1 := p.Par.Fit["DM1"] || p.Par.DM1 != 0
	withDM2 := p.Par.Fit["DM2"] || p.Par.DM2 != 0
	if withDM1 {
		names = append(names, "DM1")
	}
	if withDM2 {
		names = append(names, "DM2")
	}
	for _, j := range p.Par.Jumps {
		names = append(names, fmt.Sprintf("JUMP_%s_%s", j.Flag, j.Value))
	}

	m := mat.NewDense(n, len(names), nil)
	for i := 0; i < n; i++ {
		// Time since PEPOCH in seconds
		t := (p.MJDs[i] - p.Par.PEPOCH) * SecPerDay
		invFreq2 := 1.0 / (p.Freqs[i] * p.Freqs[i])

		col := 0
		m.Set(i, col, 1.0)
		col++
		m.Set(i, col, t)
		col++
		m.Set(i, col, t*t/2)
		col++
		m.Set(i, col, KDM*invFreq2)
		col++
		if withDM1 {
			m.Set(i, col, KDM*invFreq2*t)
			col++
		}
		if withDM2 {
			m.Set(i, col, KDM*invFreq2*t*t/2)
			col++
		}
		for _, j := range p.Par.Jumps {
			if p.Flags[i][j.Flag] == j.Value {
				m.Set(i, col, 1.0)
			}
			col++
		}
	}

	p.designMatrix = m
	p.designNames = names
	return m, names
}
