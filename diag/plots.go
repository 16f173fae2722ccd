package diag

import (
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// DefaultBins is the histogram bin count.
const DefaultBins = 40

// HistogramPlot writes a marginal posterior histogram as a PNG.
func HistogramPlot(xs []float64, name, path string, bins int) error {
	if bins <= 0 {
		bins = DefaultBins
	}
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = name
	p.Y.Label.Text = "samples"

	h, err := plotter.NewHist(plotter.Values(xs), bins)
	if err != nil {
		return errors.Wrapf(err, "histogram for %s", name)
	}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

// TracePlot writes a sample-index trace as a PNG.
func TracePlot(xs []float64, name, path string) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "sample"
	p.Y.Label.Text = name

	xys := make(plotter.XYs, len(xs))
	for i, v := range xs {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrapf(err, "trace for %s", name)
	}
	line.LineStyle.Width = vg.Points(0.5)
	p.Add(line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

// PlotChain writes histogram and trace PNGs for every parameter plus a
// posterior trace into dir, returning the files written.
func PlotChain(c *chain.Chain, dir string, bins int) ([]string, error) {
	var files []string

	for _, name := range c.Names {
		col, err := c.Column(name)
		if err != nil {
			return files, err
		}

		hist := filepath.Join(dir, "hist_"+name+".png")
		if err := HistogramPlot(col, name, hist, bins); err != nil {
			return files, err
		}
		files = append(files, hist)

		trace := filepath.Join(dir, "trace_"+name+".png")
		if err := TracePlot(col, name, trace); err != nil {
			return files, err
		}
		files = append(files, trace)
	}

	post := filepath.Join(dir, "trace_lnpost.png")
	if err := TracePlot(c.LnPost(), "lnpost", post); err != nil {
		return files, err
	}
	files = append(files, post)

	logger.Infow("Wrote diagnostic plots", "dir", dir, "count", len(files))
	return files, nil
}
