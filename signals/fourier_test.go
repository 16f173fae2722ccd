package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourierBasis(t *testing.T) {
	toas := []float64{0, 100, 250, 400, 500}
	tspan := 500.0
	const nmodes = 3

	f, freqs := FourierBasis(toas, tspan, nmodes)

	rows, cols := f.Dims()
	assert.Equal(t, len(toas), rows)
	assert.Equal(t, 2*nmodes, cols)

	// Frequencies are j/T, each appearing twice
	require.Len(t, freqs, 2*nmodes)
	assert.Equal(t, 1.0/tspan, freqs[0])
	assert.Equal(t, 1.0/tspan, freqs[1])
	assert.Equal(t, 2.0/tspan, freqs[2])
	assert.Equal(t, 3.0/tspan, freqs[4])

	// Columns alternate sin, cos
	for i, toa := range toas {
		for j := 1; j <= nmodes; j++ {
			phase := 2 * math.Pi * float64(j) / tspan * toa
			assert.InDelta(t, math.Sin(phase), f.At(i, 2*(j-1)), 1e-12)
			assert.InDelta(t, math.Cos(phase), f.At(i, 2*(j-1)+1), 1e-12)
		}
	}
}

func TestPowerlaw(t *testing.T) {
	// Closed form check at f = f_yr: phi = A^2/(12 pi^2) * f_yr^-3 * df
	log10A := -14.0
	df := 1.0 / (10 * SecPerYear)

	got := Powerlaw(FYr, log10A, 4.33, df)
	a := math.Pow(10, log10A)
	want := a * a / (12 * math.Pi * math.Pi) * math.Pow(FYr, -3) * df
	assert.InEpsilon(t, want, got, 1e-12)

	t.Run("steeper index boosts low frequencies", func(t *testing.T) {
		low := FYr / 10
		shallow := Powerlaw(low, log10A, 2, df)
		steep := Powerlaw(low, log10A, 6, df)
		assert.Greater(t, steep, shallow)
	})

	t.Run("larger amplitude scales quadratically", func(t *testing.T) {
		p1 := Powerlaw(FYr/3, -14, 4.33, df)
		p2 := Powerlaw(FYr/3, -13, 4.33, df)
		assert.InEpsilon(t, 100, p2/p1, 1e-9)
	})
}
