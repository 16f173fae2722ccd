package psr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tim")
	content := `FORMAT 1
MODE 1
C comment line gets skipped
# so does this
guppi_55731.ff 1440.000 55731.123456789 1.234 ao -f L-wide_PUPPI -pta NANOGrav -be PUPPI
guppi_55732.ff 430.000 55732.2 2.5 ao -f 430_PUPPI
guppi_55733.ff 1410.0 55733.3 1.9 gbt
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	toas, err := ParseTim(path)
	require.NoError(t, err)
	require.Len(t, toas, 3)

	first := toas[0]
	assert.Equal(t, "guppi_55731.ff", first.File)
	assert.Equal(t, 1440.0, first.Freq)
	assert.Equal(t, 55731.123456789, first.MJD)
	assert.Equal(t, 1.234, first.Error)
	assert.Equal(t, "ao", first.Site)
	assert.Equal(t, "L-wide_PUPPI", first.Flags["f"])
	assert.Equal(t, "NANOGrav", first.Dataset())
	assert.Equal(t, "L-wide_PUPPI", first.Backend())

	// Backend falls back to site when no -f or -be flag
	assert.Equal(t, "gbt", toas[2].Backend())
}

func TestParseTim_Include(t *testing.T) {
	dir := t.TempDir()

	sub := filepath.Join(dir, "sub.tim")
	require.NoError(t, os.WriteFile(sub, []byte(`FORMAT 1
a.ff 1400.0 55001.0 1.0 ao -f L-wide
b.ff 1400.0 55002.0 1.0 ao -f L-wide
`), 0644))

	main := filepath.Join(dir, "main.tim")
	require.NoError(t, os.WriteFile(main, []byte(`FORMAT 1
INCLUDE sub.tim
c.ff 1400.0 55003.0 1.0 ao -f L-wide
`), 0644))

	toas, err := ParseTim(main)
	require.NoError(t, err)
	require.Len(t, toas, 3)

	// Included TOAs land at the INCLUDE position
	assert.Equal(t, 55001.0, toas[0].MJD)
	assert.Equal(t, 55002.0, toas[1].MJD)
	assert.Equal(t, 55003.0, toas[2].MJD)
}

func TestParseTim_IncludeMissing(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.tim")
	require.NoError(t, os.WriteFile(main, []byte("FORMAT 1\nINCLUDE nope.tim\n"), 0644))

	_, err := ParseTim(main)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.tim")
}

func TestParseTOALine_Errors(t *testing.T) {
	t.Run("too few fields", func(t *testing.T) {
		_, err := parseTOALine([]string{"a.ff", "1400.0", "55001.0"})
		require.Error(t, err)
	})

	t.Run("flag without value", func(t *testing.T) {
		_, err := parseTOALine([]string{"a.ff", "1400.0", "55001.0", "1.0", "ao", "-f"})
		require.Error(t, err)
	})

	t.Run("bare token where flag expected", func(t *testing.T) {
		_, err := parseTOALine([]string{"a.ff", "1400.0", "55001.0", "1.0", "ao", "stray"})
		require.Error(t, err)
	})

	t.Run("bad MJD", func(t *testing.T) {
		_, err := parseTOALine([]string{"a.ff", "1400.0", "not-mjd", "1.0", "ao"})
		require.Error(t, err)
	})
}
