// Package psr loads pulsar timing data products: par files (timing model
// parameters), tim files (times of arrival), residual series, and noise
// parameter dictionaries. The loaded Pulsar type is the input to model
// composition in the pta package.
package psr

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Hazboun6/gwa/errors"
)

// ParFile holds timing model parameters read from a .par file.
// Keys the loader does not interpret are preserved verbatim in Extra so a
// par file can round-trip through simulate without loss.
type ParFile struct {
	Name string // PSR / PSRJ / PSRB

	RAJ  float64 // right ascension, radians
	DECJ float64 // declination, radians

	F0     float64 // spin frequency, Hz
	F1     float64 // spin frequency derivative, s^-2
	PEPOCH float64 // epoch of F0, MJD

	DM      float64 // dispersion measure, pc cm^-3
	DM1     float64 // DM derivative, pc cm^-3 yr^-1
	DM2     float64
	DMEPOCH float64

	START  float64 // MJD
	FINISH float64 // MJD

	Ephem string // EPHEM value, e.g. "DE436"
	Clock string // CLK value, e.g. "TT(BIPM2017)"
	Units string // UNITS value, e.g. "TDB"

	Jumps []Jump

	// Fit marks parameters flagged for fitting (trailing "1" column)
	Fit map[string]bool

	// Extra preserves unrecognized keys in file order
	Extra map[string]string
}

// Jump is a phase jump between backend systems, selected by a TOA flag.
type Jump struct {
	Flag   string  // flag name without leading dash, e.g. "f" or "fe"
	Value  string  // flag value the jump applies to, e.g. "L-wide_PUPPI"
	Offset float64 // jump amplitude, s
	Fit    bool
}

// ParsePar reads and parses a .par file.
func ParsePar(path string) (*ParFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening par file %s", path)
	}
	defer f.Close()

	par := &ParFile{
		Fit:   make(map[string]bool),
		Extra: make(map[string]string),
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "C ") {
			continue
		}

		if err := parseParLine(par, line); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading par file %s", path)
	}

	if par.Name == "" {
		return nil, errors.Newf("par file %s has no PSR/PSRJ name", path)
	}
	return par, nil
}

func parseParLine(par *ParFile, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		// Bare keys carry no information for us but are legal
		par.Extra[fields[0]] = ""
		return nil
	}

	key := strings.ToUpper(fields[0])
	switch key {
	case "PSR", "PSRJ", "PSRB":
		par.Name = fields[1]
	case "RAJ":
		ra, err := parseHMS(fields[1])
		if err != nil {
			return errors.Wrap(err, "RAJ")
		}
		par.RAJ = ra
		markFit(par, "RAJ", fields)
	case "DECJ":
		dec, err := parseDMS(fields[1])
		if err != nil {
			return errors.Wrap(err, "DECJ")
		}
		par.DECJ = dec
		markFit(par, "DECJ", fields)
	case "F0":
		return setFloat(par, key, fields, &par.F0)
	case "F1":
		return setFloat(par, key, fields, &par.F1)
	case "PEPOCH":
		return setFloat(par, key, fields, &par.PEPOCH)
	case "DM":
		return setFloat(par, key, fields, &par.DM)
	case "DM1":
		return setFloat(par, key, fields, &par.DM1)
	case "DM2":
		return setFloat(par, key, fields, &par.DM2)
	case "DMEPOCH":
		return setFloat(par, key, fields, &par.DMEPOCH)
	case "START":
		return setFloat(par, key, fields, &par.START)
	case "FINISH":
		return setFloat(par, key, fields, &par.FINISH)
	case "EPHEM":
		par.Ephem = fields[1]
	case "CLK", "CLOCK":
		par.Clock = fields[1]
	case "UNITS":
		par.Units = fields[1]
	case "JUMP":
		jump, err := parseJump(fields)
		if err != nil {
			return err
		}
		par.Jumps = append(par.Jumps, jump)
	default:
		par.Extra[fields[0]] = strings.Join(fields[1:], " ")
	}
	return nil
}

// setFloat parses fields[1] into dst and records the fit flag if present.
func setFloat(par *ParFile, key string, fields []string, dst *float64) error {
	v, err := parseFortranFloat(fields[1])
	if err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	*dst = v
	markFit(par, key, fields)
	return nil
}

// markFit records a trailing fit flag ("KEY value 1 [uncertainty]").
func markFit(par *ParFile, key string, fields []string) {
	if len(fields) >= 3 && fields[2] == "1" {
		par.Fit[key] = true
	}
}

// parseJump parses "JUMP -flag value offset [fit] [err]".
func parseJump(fields []string) (Jump, error) {
	if len(fields) < 4 || !strings.HasPrefix(fields[1], "-") {
		return Jump{}, errors.Newf("malformed JUMP line %q", strings.Join(fields, " "))
	}
	offset, err := parseFortranFloat(fields[3])
	if err != nil {
		return Jump{}, errors.Wrap(err, "JUMP offset")
	}
	j := Jump{
		Flag:   strings.TrimPrefix(fields[1], "-"),
		Value:  fields[2],
		Offset: offset,
	}
	if len(fields) >= 5 && fields[4] == "1" {
		j.Fit = true
	}
	return j, nil
}

// parseFortranFloat parses a float that may use Fortran D-exponent
// notation ("1.2D-15"), which older par files carry.
func parseFortranFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "D", "e"), "d", "e")
	return strconv.ParseFloat(s, 64)
}

// parseHMS converts "hh:mm:ss.sss" right ascension to radians.
func parseHMS(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.Newf("expected hh:mm:ss, got %q", s)
	}
	h, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, errors.Wrap(err, "hours")
	}
	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, errors.Wrap(err, "minutes")
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, errors.Wrap(err, "seconds")
	}
	hours := h + m/60 + sec/3600
	return hours * 15 * math.Pi / 180, nil
}

// parseDMS converts "±dd:mm:ss.ss" declination to radians.
func parseDMS(s string) (float64, error) {
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1.0
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.Newf("expected dd:mm:ss, got %q", s)
	}
	d, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, errors.Wrap(err, "degrees")
	}
	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, errors.Wrap(err, "arcminutes")
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, errors.Wrap(err, "arcseconds")
	}
	deg := d + m/60 + sec/3600
	return sign * deg * math.Pi / 180, nil
}
