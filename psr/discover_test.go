package psr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazboun6/gwa/errors"
)

func touchFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(""), 0644))
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir,
		"J1713+0747_NANOGrav_11yv0.gls.par",
		"J1713+0747_NANOGrav_11yv0.tim",
		"B1855+09_NANOGrav_11yv0.gls.par",
		"B1855+09_NANOGrav_11yv0.tim",
		"J1909-3744_NANOGrav_11yv0.gls.par", // no tim: skipped
		"README.txt",
	)

	sets, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	// Sorted by pulsar name
	assert.Equal(t, "B1855+09", sets[0].Name)
	assert.Equal(t, "J1713+0747", sets[1].Name)
	assert.Equal(t, filepath.Join(dir, "B1855+09_NANOGrav_11yv0.tim"), sets[0].Tim)
}

func TestDiscover_Empty(t *testing.T) {
	_, err := Discover(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestFilter(t *testing.T) {
	sets := []DataSet{
		{Name: "B1855+09"},
		{Name: "J1713+0747"},
		{Name: "J1909-3744"},
	}

	t.Run("empty allow-list keeps all", func(t *testing.T) {
		assert.Len(t, Filter(sets, nil), 3)
	})

	t.Run("intersects", func(t *testing.T) {
		got := Filter(sets, []string{"J1713+0747", "B1855+09"})
		require.Len(t, got, 2)
		assert.Equal(t, "B1855+09", got[0].Name)
		assert.Equal(t, "J1713+0747", got[1].Name)
	})

	t.Run("unknown names are not fatal", func(t *testing.T) {
		got := Filter(sets, []string{"J1713+0747", "J9999+9999"})
		require.Len(t, got, 1)
	})
}

func TestPulsarNameFromStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/J1713+0747_NANOGrav_11yv0.gls.par", "J1713+0747"},
		{"/data/B1855+09_NANOGrav_11yv0.gls.par", "B1855+09"},
		{"/data/J1909-3744.par", "J1909-3744"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pulsarNameFromStem(tt.path), tt.path)
	}
}

func TestResidPathFor(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir,
		"J1713+0747_NANOGrav_11yv0.gls.par",
		"J1713+0747_NANOGrav_11yv0.tim",
		"J1713+0747_NANOGrav_11yv0.resid",
	)
	ds := DataSet{
		Name: "J1713+0747",
		Par:  filepath.Join(dir, "J1713+0747_NANOGrav_11yv0.gls.par"),
		Tim:  filepath.Join(dir, "J1713+0747_NANOGrav_11yv0.tim"),
	}
	assert.Equal(t, filepath.Join(dir, "J1713+0747_NANOGrav_11yv0.resid"), ResidPathFor(ds))

	// Missing product still yields the tim-stem path for the error message
	ds.Par = filepath.Join(dir, "other.par")
	ds.Tim = filepath.Join(dir, "other.tim")
	assert.Equal(t, filepath.Join(dir, "other.resid"), ResidPathFor(ds))
}

func TestLoadAll_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	par := `PSRJ J1713+0747
RAJ 17:13:49.5327
DECJ +07:47:37.48
F0 218.8118437960826 1
F1 -4.08379e-16 1
PEPOCH 55391.0
DM 15.9904
`
	tim := `FORMAT 1
a.ff 1440.0 55001.0 1.0 ao -f L-wide_PUPPI -pta NANOGrav
b.ff 430.0 55002.0 2.0 ao -f 430_PUPPI -pta NANOGrav
`
	resid := `55001.0 1.2e-6 1.0e-6 1440.0
55002.0 -2.2e-6 2.0e-6 430.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "J1713+0747_test.par"), []byte(par), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "J1713+0747_test.tim"), []byte(tim), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "J1713+0747_test.resid"), []byte(resid), 0644))

	pulsars, err := LoadAll(dir, []string{"J1713+0747"})
	require.NoError(t, err)
	require.Len(t, pulsars, 1)

	p := pulsars[0]
	assert.Equal(t, "J1713+0747", p.Name)
	assert.Equal(t, 2, p.N())
	assert.Equal(t, []string{"430_PUPPI", "L-wide_PUPPI"}, p.UniqueBackends())
	assert.True(t, p.HasDatasetFlag("NANOGrav"))
}

func TestLoadAll_MissingResiduals(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "J0000+0000.par"),
		[]byte("PSRJ J0000+0000\nF0 100\nPEPOCH 55000\nDM 10\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "J0000+0000.tim"),
		[]byte("FORMAT 1\na.ff 1400.0 55001.0 1.0 ao\n"), 0644))

	_, err := LoadAll(dir, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoResiduals))
}
