package chain

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// Writer appends samples to a run directory. Rows are buffered and hit
// disk on Flush, so a crash loses at most one save interval.
type Writer struct {
	Dir   string
	names []string

	f *os.File
	w *bufio.Writer

	manifest *Manifest
}

// Create starts a fresh run directory. Fails if the directory already
// holds a chain file.
func Create(dir string, names []string, m *Manifest) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating run directory %s", dir)
	}
	chainPath := filepath.Join(dir, ChainFile)
	if _, err := os.Stat(chainPath); err == nil {
		return nil, errors.WithHintf(
			errors.Newf("run directory %s already has a chain", dir),
			"pass --resume to continue it, or choose a fresh output directory")
	}

	if err := WritePars(dir, names); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m.NDim = len(names)
	m.Status = StatusRunning
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := WriteManifest(dir, m); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(chainPath, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", chainPath)
	}
	return &Writer{Dir: dir, names: names, f: f, w: bufio.NewWriterSize(f, 1<<16), manifest: m}, nil
}

// Append reopens an existing run directory for more samples. The
// parameter listing must match the one the directory was created with.
func Append(dir string, names []string) (*Writer, error) {
	existing, err := ReadPars(dir)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(names) {
		return nil, parsMismatch(dir, existing, names)
	}
	for i := range names {
		if existing[i] != names[i] {
			return nil, parsMismatch(dir, existing, names)
		}
	}

	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	chainPath := filepath.Join(dir, ChainFile)
	f, err := os.OpenFile(chainPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", chainPath)
	}
	return &Writer{Dir: dir, names: names, f: f, w: bufio.NewWriterSize(f, 1<<16), manifest: m}, nil
}

func parsMismatch(dir string, existing, names []string) error {
	return errors.WithHintf(
		errors.Wrapf(errors.ErrIncompatibleRun,
			"run directory %s was sampled with %d parameters, model has %d",
			dir, len(existing), len(names)),
		"the model composition changed since this run was created; start a fresh run directory")
}

// Manifest returns the writer's manifest.
func (w *Writer) Manifest() *Manifest { return w.manifest }

// Record appends one sample row.
func (w *Writer) Record(x []float64, lnpost, lnlike, accept, swapAccept float64) error {
	var b strings.Builder
	b.Grow(26 * (len(x) + BookkeepingCols))
	for _, v := range x {
		b.WriteString(strconv.FormatFloat(v, 'e', 17, 64))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%.17e %.17e %.17e %.17e\n", lnpost, lnlike, accept, swapAccept)
	if _, err := w.w.WriteString(b.String()); err != nil {
		return errors.Wrap(err, "writing chain row")
	}
	return nil
}

// WriteCov snapshots the proposal covariance to cov.txt.
func (w *Writer) WriteCov(cov *mat.SymDense) error {
	n := cov.SymmetricDim()
	var b strings.Builder
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(cov.At(i, j), 'e', 17, 64))
		}
		b.WriteByte('\n')
	}
	path := filepath.Join(w.Dir, CovFile)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// Checkpoint flushes buffered rows and records progress in the manifest.
func (w *Writer) Checkpoint(completed int, status string) error {
	if err := w.w.Flush(); err != nil {
		return errors.Wrap(err, "flushing chain")
	}
	w.manifest.Completed = completed
	w.manifest.Status = status
	w.manifest.UpdatedAt = time.Now().UTC()
	return WriteManifest(w.Dir, w.manifest)
}

// Close flushes and closes the chain file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		logger.Errorw("Flushing chain on close", "dir", w.Dir, "error", err)
	}
	return w.f.Close()
}

// ReadCov loads a covariance snapshot written by WriteCov.
func ReadCov(dir string, ndim int) (*mat.SymDense, error) {
	path := filepath.Join(dir, CovFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	defer f.Close()

	cov := mat.NewSymDense(ndim, nil)
	sc := bufio.NewScanner(f)
	row := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if row >= ndim || len(fields) != ndim {
			return nil, errors.Newf("cov.txt in %s is not a %dx%d matrix", dir, ndim, ndim)
		}
		for j, fstr := range fields {
			v, err := strconv.ParseFloat(fstr, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "cov.txt row %d", row)
			}
			if j >= row {
				cov.SetSym(row, j, v)
			}
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if row != ndim {
		return nil, errors.Newf("cov.txt in %s has %d rows, want %d", dir, row, ndim)
	}
	return cov, nil
}

// LastSample returns the parameter vector of the final chain row, for
// resuming a run where it stopped. Returns ErrChainMissing when the
// chain file is absent or empty.
func LastSample(dir string, ndim int) ([]float64, error) {
	path := filepath.Join(dir, ChainFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrChainMissing, "no %s in %s", ChainFile, dir)
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var last string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			last = line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if last == "" {
		return nil, errors.Wrapf(errors.ErrChainMissing, "%s in %s is empty", ChainFile, dir)
	}

	fields := strings.Fields(last)
	if len(fields) < ndim {
		return nil, errors.Newf("last chain row in %s has %d columns, want at least %d",
			dir, len(fields), ndim)
	}
	x := make([]float64, ndim)
	for i := 0; i < ndim; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "last chain row in %s", dir)
		}
		x[i] = v
	}
	return x, nil
}
