// Package chain owns the on-disk layout of a run directory and its
// post-processing: loading, burn-in, per-parameter summaries, and
// model-selection odds ratios.
//
// A run directory contains:
//
//	chain_1.txt  whitespace-delimited samples, one row per saved step:
//	             parameter columns in pars.txt order, then lnpost,
//	             lnlike, acceptance fraction, swap acceptance
//	pars.txt     parameter names, one per line, in chain column order
//	cov.txt      latest proposal covariance snapshot
//	run.toml     manifest: version, pulsar, model, seed, progress
package chain

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/Hazboun6/gwa/errors"
)

// Files of a run directory.
const (
	ChainFile    = "chain_1.txt"
	ParsFile     = "pars.txt"
	CovFile      = "cov.txt"
	ManifestFile = "run.toml"
)

// BookkeepingCols is the number of trailing non-parameter columns in a
// chain row: lnpost, lnlike, acceptance fraction, swap acceptance.
const BookkeepingCols = 4

// Manifest records the provenance of a run directory.
type Manifest struct {
	Version    string    `toml:"version"`
	Pulsar     string    `toml:"pulsar"`
	Model      string    `toml:"model"`
	NDim       int       `toml:"ndim"`
	Seed       int64     `toml:"seed"`
	Iterations int       `toml:"iterations"`
	Completed  int       `toml:"completed"`
	Status     string    `toml:"status"`
	CreatedAt  time.Time `toml:"created_at"`
	UpdatedAt  time.Time `toml:"updated_at"`
}

// Run statuses recorded in the manifest.
const (
	StatusRunning     = "running"
	StatusComplete    = "complete"
	StatusInterrupted = "interrupted"
)

// WriteManifest writes the run manifest, replacing any existing one.
func WriteManifest(dir string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "encoding run manifest")
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadManifest reads the run manifest from a run directory.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &m, nil
}

// WritePars writes the parameter name file. Column order in the chain
// file follows this listing.
func WritePars(dir string, names []string) error {
	path := filepath.Join(dir, ParsFile)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadPars reads the parameter name file.
func ReadPars(dir string) ([]string, error) {
	path := filepath.Join(dir, ParsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return names, nil
}
