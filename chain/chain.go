package chain

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// DefaultBurnFraction is the leading fraction of a chain discarded
// before computing summaries.
const DefaultBurnFraction = 0.25

// Chain is a loaded run directory.
type Chain struct {
	Dir      string
	Names    []string
	Manifest *Manifest // nil when the directory has no manifest

	rows [][]float64 // each row: params then bookkeeping columns
}

// Load reads a run directory. Rows with an unexpected column count
// (a partial write from an interrupted run) are skipped.
func Load(dir string) (*Chain, error) {
	names, err := ReadPars(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "run directory %s has no parameter listing", dir)
	}
	ncols := len(names) + BookkeepingCols

	path := filepath.Join(dir, ChainFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrChainMissing, "no %s in %s", ChainFile, dir),
				"the run may not have reached its first save interval")
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	c := &Chain{Dir: dir, Names: names}
	skipped := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != ncols {
			skipped++
			continue
		}
		row := make([]float64, ncols)
		ok := true
		for i, fstr := range fields {
			v, err := strconv.ParseFloat(fstr, 64)
			if err != nil {
				ok = false
				break
			}
			row[i] = v
		}
		if !ok {
			skipped++
			continue
		}
		c.rows = append(c.rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(c.rows) == 0 {
		return nil, errors.Wrapf(errors.ErrChainMissing, "%s in %s has no complete rows", ChainFile, dir)
	}
	if skipped > 0 {
		logger.Warnw("Skipped malformed chain rows", "dir", dir, "count", skipped)
	}

	if m, err := ReadManifest(dir); err == nil {
		c.Manifest = m
	} else {
		logger.Debugw("Run directory has no readable manifest", "dir", dir, "error", err)
	}

	logger.Infow("Loaded chain", "dir", dir, "params", len(names), "count", len(c.rows))
	return c, nil
}

// Len returns the number of samples.
func (c *Chain) Len() int { return len(c.rows) }

// Burn returns a view of the chain with the leading fraction discarded.
// A fraction outside [0, 1) falls back to the default.
func (c *Chain) Burn(fraction float64) *Chain {
	if fraction < 0 || fraction >= 1 {
		fraction = DefaultBurnFraction
	}
	n := int(fraction * float64(len(c.rows)))
	if n >= len(c.rows) {
		n = len(c.rows) - 1
	}
	b := *c
	b.rows = c.rows[n:]
	return &b
}

// Column returns the samples of a named parameter. Name lookup is a
// linear scan over the pars.txt listing.
func (c *Chain) Column(name string) ([]float64, error) {
	for i, n := range c.Names {
		if n == name {
			return c.columnAt(i), nil
		}
	}
	return nil, errors.WithHintf(
		errors.Wrapf(errors.ErrNoSuchParameter, "%q not in chain %s", name, c.Dir),
		"chain parameters: %s", strings.Join(c.Names, ", "))
}

func (c *Chain) columnAt(i int) []float64 {
	col := make([]float64, len(c.rows))
	for r, row := range c.rows {
		col[r] = row[i]
	}
	return col
}

// Bookkeeping column accessors.

// LnPost returns the log posterior column.
func (c *Chain) LnPost() []float64 { return c.columnAt(len(c.Names)) }

// LnLike returns the log likelihood column.
func (c *Chain) LnLike() []float64 { return c.columnAt(len(c.Names) + 1) }

// AcceptRate returns the running acceptance fraction column.
func (c *Chain) AcceptRate() []float64 { return c.columnAt(len(c.Names) + 2) }

// SwapAcceptRate returns the swap acceptance column.
func (c *Chain) SwapAcceptRate() []float64 { return c.columnAt(len(c.Names) + 3) }

// MaxPosterior returns the row index and value of the highest posterior
// sample.
func (c *Chain) MaxPosterior() (int, float64) {
	li := len(c.Names)
	best, bestVal := 0, c.rows[0][li]
	for r, row := range c.rows {
		if row[li] > bestVal {
			best, bestVal = r, row[li]
		}
	}
	return best, bestVal
}

// Sample returns row r's parameter vector.
func (c *Chain) Sample(r int) []float64 {
	return c.rows[r][:len(c.Names):len(c.Names)]
}
