package toasim

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// Paths locates a written dataset triple.
type Paths struct {
	Par   string
	Tim   string
	Resid string
}

// Fixed timing-model values for simulated pulsars. Only the design
// matrix shape depends on them, not the injected noise.
const (
	simRAJ  = "12:00:00.0"
	simDECJ = "-30:00:00.0"
	simF0   = 300.0
	simF1   = -1.0e-15
	simDM   = 10.0
	simSite = "@" // barycentric TOAs, no observatory
)

// Write writes the dataset into dir as `<name>_sim.{par,tim,resid}`,
// a stem psr.Discover resolves back to the pulsar name.
func (d *Dataset) Write(dir string) (*Paths, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}

	stem := filepath.Join(dir, d.Config.Name+"_sim")
	p := &Paths{Par: stem + ".par", Tim: stem + ".tim", Resid: stem + ".resid"}

	if err := d.writePar(p.Par); err != nil {
		return nil, err
	}
	if err := d.writeTim(p.Tim); err != nil {
		return nil, err
	}
	if err := d.writeResid(p.Resid); err != nil {
		return nil, err
	}

	logger.Infow("Wrote simulated dataset",
		"pulsar", d.Config.Name,
		"toas", len(d.MJDs),
		"dir", dir)
	return p, nil
}

func (d *Dataset) writePar(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	start, finish := d.Span()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "PSRJ       %s\n", d.Config.Name)
	fmt.Fprintf(w, "RAJ        %s\n", simRAJ)
	fmt.Fprintf(w, "DECJ       %s\n", simDECJ)
	fmt.Fprintf(w, "F0         %.6f\n", simF0)
	fmt.Fprintf(w, "F1         %.6e\n", simF1)
	fmt.Fprintf(w, "PEPOCH     %.2f\n", (start+finish)/2)
	fmt.Fprintf(w, "DM         %.4f\n", simDM)
	fmt.Fprintf(w, "START      %.4f\n", start)
	fmt.Fprintf(w, "FINISH     %.4f\n", finish)
	fmt.Fprintf(w, "EPHEM      DE440\n")
	fmt.Fprintf(w, "CLK        TT(BIPM2019)\n")
	fmt.Fprintf(w, "UNITS      TDB\n")
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func (d *Dataset) writeTim(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "FORMAT 1")
	for i := range d.MJDs {
		// MJD formatting must match writeResid exactly so the loader
		// pairs rows without tolerance issues
		fmt.Fprintf(w, "%s_sim %.4f %.9f %.4f %s -f %s",
			d.Config.Name, d.Freqs[i], d.MJDs[i], d.Errors[i]*1e6, simSite, d.Backends[i])
		if d.Config.Dataset != "" {
			fmt.Fprintf(w, " -pta %s", d.Config.Dataset)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func (d *Dataset) writeResid(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# MJD residual(s) uncertainty(s) freq(MHz)")
	for i := range d.MJDs {
		fmt.Fprintf(w, "%.9f %.12e %.6e %.4f\n",
			d.MJDs[i], d.Residuals[i], d.Errors[i], d.Freqs[i])
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
