package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf("error: %s %d", "test", 42)
	require.NotNil(t, err)
	assert.Equal(t, "error: test 42", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestSentinels(t *testing.T) {
	t.Run("wrapping preserves sentinel identity", func(t *testing.T) {
		err := Wrap(ErrNoResiduals, "pulsar J1713+0747")
		assert.True(t, Is(err, ErrNoResiduals))
		assert.False(t, Is(err, ErrChainMissing))
	})

	t.Run("NewNotFoundError wraps ErrNotFound", func(t *testing.T) {
		err := NewNotFoundError("pulsar %s not in data directory", "B1855+09")
		assert.True(t, IsNotFoundError(err))
		assert.Contains(t, err.Error(), "B1855+09")
	})

	t.Run("nil is never a sentinel", func(t *testing.T) {
		assert.False(t, IsNotFoundError(nil))
		assert.False(t, IsInvalidRequestError(nil))
	})
}

func TestWithHint(t *testing.T) {
	err := WithHint(Wrap(ErrNoResiduals, "load B1937+21"), "run the timing fit with general2 output enabled")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "general2")

	// Hints never leak into the primary message
	assert.NotContains(t, err.Error(), "general2")
}

func TestStackTraces(t *testing.T) {
	err := New("boom")
	assert.NotNil(t, GetStack(err), "errors created here should carry a stack trace")
}

type parseError struct {
	line int
}

func (e *parseError) Error() string { return "parse error" }

func TestAs(t *testing.T) {
	original := &parseError{line: 12}
	wrapped := Wrap(original, "reading tim file")

	var target *parseError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, 12, target.line)
}
