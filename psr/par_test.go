package psr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.par")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParsePar(t *testing.T) {
	path := writePar(t, `
PSRJ           J1713+0747
RAJ            17:13:49.5327       1
DECJ           +07:47:37.48        1
F0             218.8118437960826   1  1.1e-13
F1             -4.08379D-16        1
PEPOCH         55391.0
DM             15.9904
DM1            0.0002              1
DMEPOCH        55391.0
START          53393.5
FINISH         57387.6
EPHEM          DE436
CLK            TT(BIPM2017)
UNITS          TDB
JUMP           -f L-wide_PUPPI  0.000271 1
JUMP           -f S-wide_PUPPI  -0.00013
NTOA           27571
TZRMJD         55391.0
`)

	par, err := ParsePar(path)
	require.NoError(t, err)

	assert.Equal(t, "J1713+0747", par.Name)
	assert.InDelta(t, 4.51091, par.RAJ, 1e-4)
	assert.InDelta(t, 0.13603, par.DECJ, 1e-4)
	assert.InDelta(t, 218.8118437960826, par.F0, 1e-12)
	assert.InDelta(t, -4.08379e-16, par.F1, 1e-21) // Fortran D exponent
	assert.Equal(t, 55391.0, par.PEPOCH)
	assert.Equal(t, 15.9904, par.DM)
	assert.Equal(t, 0.0002, par.DM1)
	assert.Equal(t, "DE436", par.Ephem)
	assert.Equal(t, "TT(BIPM2017)", par.Clock)
	assert.Equal(t, "TDB", par.Units)

	assert.True(t, par.Fit["F0"])
	assert.True(t, par.Fit["DM1"])
	assert.False(t, par.Fit["DM"])

	require.Len(t, par.Jumps, 2)
	assert.Equal(t, Jump{Flag: "f", Value: "L-wide_PUPPI", Offset: 0.000271, Fit: true}, par.Jumps[0])
	assert.Equal(t, Jump{Flag: "f", Value: "S-wide_PUPPI", Offset: -0.00013}, par.Jumps[1])

	// Unknown keys survive
	assert.Equal(t, "27571", par.Extra["NTOA"])
	assert.Equal(t, "55391.0", par.Extra["TZRMJD"])
}

func TestParsePar_NegativeDeclination(t *testing.T) {
	path := writePar(t, `
PSR J1909-3744
RAJ 19:09:47.4346
DECJ -37:44:14.46
F0 339.3156872
PEPOCH 55000
DM 10.3932
`)
	par, err := ParsePar(path)
	require.NoError(t, err)
	assert.Negative(t, par.DECJ)
	assert.InDelta(t, -0.65868, par.DECJ, 1e-4)
}

func TestParsePar_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ParsePar(filepath.Join(t.TempDir(), "absent.par"))
		require.Error(t, err)
	})

	t.Run("no name", func(t *testing.T) {
		path := writePar(t, "F0 100.0\nDM 10.0\n")
		_, err := ParsePar(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PSR")
	})

	t.Run("bad RAJ", func(t *testing.T) {
		path := writePar(t, "PSR J0000+0000\nRAJ not-a-coordinate\n")
		_, err := ParsePar(path)
		require.Error(t, err)
	})

	t.Run("malformed JUMP", func(t *testing.T) {
		path := writePar(t, "PSR J0000+0000\nJUMP L-wide 0.1\n")
		_, err := ParsePar(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JUMP")
	})
}

func TestParseFortranFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5", 1.5},
		{"-4.08379D-16", -4.08379e-16},
		{"2.1d3", 2100},
		{"1e-5", 1e-5},
	}
	for _, tt := range tests {
		got, err := parseFortranFloat(tt.in)
		require.NoError(t, err, tt.in)
		assert.InEpsilon(t, tt.want, got, 1e-12, tt.in)
	}
}
