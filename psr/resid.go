package psr

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/Hazboun6/gwa/errors"
)

// Residual is one row of a residual product file.
type Residual struct {
	MJD   float64 // arrival time, MJD
	Resid float64 // timing residual, s
	Error float64 // uncertainty, s
	Freq  float64 // observing frequency, MHz
}

// LoadResiduals reads a `<stem>.resid` product: whitespace-delimited rows of
// MJD, residual (s), uncertainty (s), frequency (MHz), as written by a
// timing engine's general2-style output plugin or by gwa simulate.
//
// The residual product is an input contract: this tool does not fit timing
// models, so a pulsar without one cannot be analyzed.
func LoadResiduals(path string) ([]Residual, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHintf(
				errors.Wrapf(errors.ErrNoResiduals, "%s", path),
				"generate it from the timing fit (general2 plugin) or with gwa simulate")
		}
		return nil, errors.Wrapf(err, "opening residual file %s", path)
	}
	defer f.Close()

	var rows []Residual
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, errors.Newf("%s:%d: expected 4 columns (MJD resid err freq), got %d",
				path, lineNo, len(fields))
		}

		var row Residual
		for i, dst := range []*float64{&row.MJD, &row.Resid, &row.Error, &row.Freq} {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: column %d", path, lineNo, i+1)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading residual file %s", path)
	}

	if len(rows) == 0 {
		return nil, errors.Wrapf(errors.ErrNoResiduals, "%s is empty", path)
	}
	return rows, nil
}
