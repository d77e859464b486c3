package trajectory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferOffsets(t *testing.T) {
	b := NewBuffer(3, 2)
	for off := -3; off <= 3; off++ {
		x := float64(off)
		b.Store(off, []float64{x, 2 * x}, []float64{-x, 0}, 10+x)
	}

	assert.Equal(t, []float64{-3, -6}, b.Theta(-3))
	assert.Equal(t, []float64{0, 0}, b.Theta(0))
	assert.Equal(t, []float64{-2, 0}, b.Momentum(2))
	assert.Equal(t, []float64{13}, b.Energies(3, 3))
	assert.Equal(t, []float64{9, 10, 11}, b.Energies(-1, 1))
}

func TestBufferStoreCopies(t *testing.T) {
	b := NewBuffer(1, 1)
	theta := []float64{1}
	b.Store(1, theta, []float64{2}, 0)
	theta[0] = 5
	assert.Equal(t, []float64{1}, b.Theta(1))
}

func TestBufferOutOfRange(t *testing.T) {
	b := NewBuffer(2, 1)
	assert.Panics(t, func() { b.Energies(0, 3) })
	assert.Panics(t, func() { b.Theta(-3) })
	assert.Panics(t, func() { b.Energies(1, 0) })
}

func TestStability(t *testing.T) {
	s := Stability{Min: 0.1, Max: 1}

	assert.False(t, s.Stable([]float64{5, 5, 5}), "flat window is below Min")
	assert.True(t, s.Stable([]float64{1, 2}), "sd 0.5")
	assert.False(t, s.Stable([]float64{0, 10}), "sd 5 is above Max")
	assert.False(t, s.Stable([]float64{0, math.NaN()}))

	// Population, not sample, deviation: {0, 2} has sd 1 here.
	assert.True(t, Stability{Min: 1, Max: 1}.Stable([]float64{0, 2}))
}

func TestReflect(t *testing.T) {
	// Bouncing over [-2, 3], span 5, period 10.
	want := []int{-2, -1, 0, 1, 2, 3, 2, 1, 0, -1, -2, -1}
	for remaining, w := range want {
		assert.Equal(t, w, Reflect(3, -2, remaining), "remaining=%d", remaining)
	}
}

func TestReflectStaysInWalkedInterval(t *testing.T) {
	for reversal := 1; reversal < 8; reversal++ {
		for pos := -8; pos < reversal; pos++ {
			for remaining := range 40 {
				got := Reflect(reversal, pos, remaining)
				if got < pos || got > reversal {
					t.Fatalf("Reflect(%d, %d, %d) = %d outside [%d, %d]",
						reversal, pos, remaining, got, pos, reversal)
				}
			}
		}
	}
}
