package trajectory

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stability bounds the spread of simulated energy over a window of steps.
type Stability struct {
	Min float64
	Max float64
}

// Stable reports whether the population standard deviation of window lies
// in [Min, Max]. A NaN spread is unstable.
func (s Stability) Stable(window []float64) bool {
	sd := math.Sqrt(stat.PopVariance(window, nil))
	return sd >= s.Min && sd <= s.Max
}

// Reflect picks the offset reached by bouncing between pos and reversal
// with the remaining step budget, as a triangular wave over [pos, reversal].
// It requires pos < reversal and remaining >= 0.
//
// The wave starts at pos itself, not one span below it, so both branches
// stay inside [pos, reversal] where every slot has been walked.
func Reflect(reversal, pos, remaining int) int {
	span := reversal - pos
	r := remaining % (2 * span)
	if r > span {
		return 2*reversal - r - pos
	}
	return pos + r
}
