package psr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazboun6/gwa/errors"
)

func TestLoadResiduals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.resid")
	content := `# MJD resid(s) err(s) freq(MHz)
55731.123456789  1.25e-6  8.1e-7  1440.0
55732.2         -3.4e-7   1.2e-6   430.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rows, err := LoadResiduals(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Residual{MJD: 55731.123456789, Resid: 1.25e-6, Error: 8.1e-7, Freq: 1440.0}, rows[0])
	assert.Equal(t, -3.4e-7, rows[1].Resid)
}

func TestLoadResiduals_Missing(t *testing.T) {
	_, err := LoadResiduals(filepath.Join(t.TempDir(), "absent.resid"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoResiduals))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestLoadResiduals_BadShape(t *testing.T) {
	t.Run("wrong column count", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.resid")
		require.NoError(t, os.WriteFile(path, []byte("55731.1 1.0e-6 8e-7\n"), 0644))
		_, err := LoadResiduals(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "4 columns")
	})

	t.Run("non-numeric", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.resid")
		require.NoError(t, os.WriteFile(path, []byte("55731.1 abc 8e-7 1440\n"), 0644))
		_, err := LoadResiduals(path)
		require.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.resid")
		require.NoError(t, os.WriteFile(path, []byte("# only comments\n"), 0644))
		_, err := LoadResiduals(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNoResiduals))
	})
}
