package psr

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// DataSet is a par/tim pair discovered under a data directory.
type DataSet struct {
	Name string // pulsar name from the file stem, e.g. "J1713+0747"
	Par  string // par file path
	Tim  string // tim file path
}

// Discover globs the data directory for par files with matching tim files
// and returns them sorted by pulsar name. Stems follow the release naming
// convention `<psr>_<release>.[gls.]par` / `<psr>_<release>.tim`; the
// pulsar name is everything before the first underscore, or the whole stem
// when there is none.
func Discover(dataDir string) ([]DataSet, error) {
	pars, err := filepath.Glob(filepath.Join(dataDir, "*.par"))
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %s", dataDir)
	}
	if len(pars) == 0 {
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrNotFound, "no par files under %s", dataDir),
			"set data.dir in gwa.toml or GWA_DATA_DIR")
	}

	var sets []DataSet
	for _, par := range pars {
		tim := timPathFor(par)
		if tim == "" {
			logger.Debugw("Par file has no matching tim file, skipping",
				"file", par)
			continue
		}
		sets = append(sets, DataSet{
			Name: pulsarNameFromStem(par),
			Par:  par,
			Tim:  tim,
		})
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

// timPathFor finds the tim file sharing a par file's stem, trying the full
// stem first and then the stem without a trailing ".gls" fit marker.
func timPathFor(parPath string) string {
	stem := strings.TrimSuffix(parPath, ".par")
	for _, candidate := range []string{stem + ".tim", strings.TrimSuffix(stem, ".gls") + ".tim"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// ResidPathFor locates the residual product for a par/tim pair, preferring
// the tim file's stem. The returned path may not exist; LoadResiduals
// reports ErrNoResiduals in that case.
func ResidPathFor(ds DataSet) string {
	timStem := strings.TrimSuffix(ds.Tim, ".tim")
	if _, err := os.Stat(timStem + ".resid"); err == nil {
		return timStem + ".resid"
	}
	parStem := strings.TrimSuffix(strings.TrimSuffix(ds.Par, ".par"), ".gls")
	if _, err := os.Stat(parStem + ".resid"); err == nil {
		return parStem + ".resid"
	}
	return timStem + ".resid"
}

func pulsarNameFromStem(path string) string {
	stem := filepath.Base(path)
	stem = strings.TrimSuffix(stem, ".par")
	stem = strings.TrimSuffix(stem, ".gls")
	if i := strings.Index(stem, "_"); i > 0 {
		return stem[:i]
	}
	return stem
}

// Filter intersects discovered datasets with an allow-list of pulsar
// names. An empty allow-list keeps everything. Names in the allow-list
// with no matching dataset are logged, not fatal: data releases do not
// all carry the same pulsars.
func Filter(sets []DataSet, allow []string) []DataSet {
	if len(allow) == 0 {
		return sets
	}

	want := make(map[string]bool, len(allow))
	for _, name := range allow {
		want[name] = true
	}

	var out []DataSet
	for _, ds := range sets {
		if want[ds.Name] {
			out = append(out, ds)
			delete(want, ds.Name)
		}
	}
	for name := range want {
		logger.Warnw("Pulsar in allow-list not found in data directory",
			"pulsar", name)
	}
	return out
}

// Load reads one dataset into a Pulsar.
func Load(ds DataSet) (*Pulsar, error) {
	par, err := ParsePar(ds.Par)
	if err != nil {
		return nil, err
	}
	toas, err := ParseTim(ds.Tim)
	if err != nil {
		return nil, err
	}
	resids, err := LoadResiduals(ResidPathFor(ds))
	if err != nil {
		return nil, err
	}

	p, err := NewPulsar(par, toas, resids)
	if err != nil {
		return nil, err
	}

	logger.Infow("Loaded pulsar",
		"pulsar", p.Name,
		"toas", p.N(),
		"backends", len(p.UniqueBackends()))
	return p, nil
}

// LoadAll discovers, filters, and loads every pulsar in the data directory.
func LoadAll(dataDir string, allow []string) ([]*Pulsar, error) {
	sets, err := Discover(dataDir)
	if err != nil {
		return nil, err
	}
	sets = Filter(sets, allow)
	if len(sets) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound,
			"no pulsars left after filtering %s", dataDir)
	}

	pulsars := make([]*Pulsar, 0, len(sets))
	for _, ds := range sets {
		p, err := Load(ds)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", ds.Name)
		}
		pulsars = append(pulsars, p)
	}
	return pulsars, nil
}
