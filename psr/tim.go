package psr

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Hazboun6/gwa/errors"
)

// TOA is a single time of arrival from a tim file.
type TOA struct {
	File  string  // profile/archive name (first column, informational)
	Freq  float64 // observing frequency, MHz
	MJD   float64 // arrival time, MJD (TDB per par UNITS)
	Error float64 // uncertainty, microseconds
	Site  string  // observatory code
	Flags map[string]string
}

// Backend returns the TOA's backend system from the -f flag, falling back
// to the -be flag and then the observatory code. Backend names select
// per-system noise parameters.
func (t TOA) Backend() string {
	if f, ok := t.Flags["f"]; ok {
		return f
	}
	if be, ok := t.Flags["be"]; ok {
		return be
	}
	return t.Site
}

// Dataset returns the -pta flag (e.g. "NANOGrav"), or empty.
func (t TOA) Dataset() string {
	return t.Flags["pta"]
}

const maxIncludeDepth = 16

// ParseTim reads a tim file in FORMAT 1, following INCLUDE directives
// relative to the including file's directory.
func ParseTim(path string) ([]TOA, error) {
	return parseTim(path, 0)
}

func parseTim(path string, depth int) ([]TOA, error) {
	if depth > maxIncludeDepth {
		return nil, errors.Newf("INCLUDE nesting exceeds %d levels at %s", maxIncludeDepth, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening tim file %s", path)
	}
	defer f.Close()

	var toas []TOA
	scanner := bufio.NewScanner(f)
	// TOA lines with many flags can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "C ") {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToUpper(fields[0]) {
		case "FORMAT", "MODE", "TRACK", "TIME", "EFAC", "EQUAD", "EMAX", "EMIN", "SKIP", "NOSKIP":
			// Header and tempo-era directives carry no TOAs
			continue
		case "INCLUDE":
			if len(fields) < 2 {
				return nil, errors.Newf("%s:%d: INCLUDE without a path", path, lineNo)
			}
			inc := fields[1]
			if !filepath.IsAbs(inc) {
				inc = filepath.Join(filepath.Dir(path), inc)
			}
			included, err := parseTim(inc, depth+1)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", path, lineNo)
			}
			toas = append(toas, included...)
			continue
		}

		toa, err := parseTOALine(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNo)
		}
		toas = append(toas, toa)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading tim file %s", path)
	}

	return toas, nil
}

// parseTOALine parses a FORMAT 1 TOA line:
//
//	file freq MJD error site [-flag value]...
func parseTOALine(fields []string) (TOA, error) {
	if len(fields) < 5 {
		return TOA{}, errors.Newf("TOA line has %d fields, need at least 5", len(fields))
	}

	freq, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return TOA{}, errors.Wrap(err, "frequency")
	}
	mjd, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return TOA{}, errors.Wrap(err, "MJD")
	}
	toaErr, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return TOA{}, errors.Wrap(err, "uncertainty")
	}

	toa := TOA{
		File:  fields[0],
		Freq:  freq,
		MJD:   mjd,
		Error: toaErr,
		Site:  fields[4],
		Flags: make(map[string]string),
	}

	// Trailing flags come in -name value pairs
	rest := fields[5:]
	for i := 0; i < len(rest); i++ {
		if !strings.HasPrefix(rest[i], "-") {
			return TOA{}, errors.Newf("expected flag, got %q", rest[i])
		}
		name := strings.TrimPrefix(rest[i], "-")
		if i+1 >= len(rest) {
			return TOA{}, errors.Newf("flag -%s has no value", name)
		}
		toa.Flags[name] = rest[i+1]
		i++
	}

	return toa, nil
}
