package hmc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nozzle/hmc/trajectory"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ShortcutConfig configures the adaptive-length sampler.
type ShortcutConfig struct {
	// Mass is the momentum covariance M.
	// Default: nil (identity)
	Mass mat.Symmetric

	// StepSizeMin and StepSizeMax bound the per-iteration step size, which
	// is drawn log-uniformly from the range.
	// Default: 1e-6, 1e-1
	StepSizeMin float64
	StepSizeMax float64

	// GroupSize is the number of consecutive energies tested for stability.
	// No test runs until GroupSize steps have been taken.
	// Default: 5
	GroupSize int

	// StdMin and StdMax bound the standard deviation of a stable window.
	// Default: 1e-3, 20
	StdMin float64
	StdMax float64

	// Seed for random number generation.
	// Default: 42
	Seed uint32

	// Logger receives a debug summary after each Sample call.
	// Default: nil (no logging)
	Logger *slog.Logger

	// ProgressCallback is called after each iteration with (iter, total).
	// Default: nil
	ProgressCallback func(iter, total int)
}

// DefaultShortcutConfig returns the default adaptive sampler configuration.
func DefaultShortcutConfig() ShortcutConfig {
	return ShortcutConfig{
		StepSizeMin: 1e-6,
		StepSizeMax: 1e-1,
		GroupSize:   5,
		StdMin:      1e-3,
		StdMax:      20,
		Seed:        42,
	}
}

// Shortcut is the HMC variant with randomized step size and adaptive
// trajectory length.
//
// Each iteration walks forward one leapfrog step at a time, buffering every
// state. Once GroupSize steps are in hand, the spread of the last GroupSize
// energies is tested after every step. The first unstable window sends the
// walk back to the start with negated momentum; the second one ends the
// trajectory at a buffered state chosen by reflecting the unspent step budget
// over the walked interval.
//
// The momentum taken from the buffer at a second instability keeps the sign
// it was recorded with, which may point against the final direction of
// travel. Only the returned momenta are affected: the next iteration draws
// a fresh momentum.
type Shortcut struct {
	Config ShortcutConfig

	logStep   [2]float64
	stability trajectory.Stability
	chain     *chain
}

// NewShortcut creates an adaptive sampler for m.
func NewShortcut(m Model, config ShortcutConfig) (*Shortcut, error) {
	lo, hi := config.StepSizeMin, config.StepSizeMax
	if !(lo > 0) || !(lo < hi) || math.IsInf(hi, 0) {
		return nil, fmt.Errorf("%w: range [%v, %v]", ErrStepSize, lo, hi)
	}
	if config.GroupSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrGroupSize, config.GroupSize)
	}
	if !(config.StdMin >= 0) || !(config.StdMin <= config.StdMax) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrThreshold, config.StdMin, config.StdMax)
	}

	c, err := newChain(m, config.Mass, config.Seed, config.Logger, config.ProgressCallback)
	if err != nil {
		return nil, err
	}
	return &Shortcut{
		Config:    config,
		logStep:   [2]float64{math.Log10(lo), math.Log10(hi)},
		stability: trajectory.Stability{Min: config.StdMin, Max: config.StdMax},
		chain:     c,
	}, nil
}

// Sample runs mIters Metropolis iterations with adaptive trajectories of at
// most hmcIters leapfrog steps.
func (s *Shortcut) Sample(mIters, hmcIters int) (thetas, momenta [][]float64, err error) {
	thetas, momenta, err = s.chain.run(mIters, hmcIters, func(hmcIters int) error {
		eps := s.chain.rng.LogUniform10(s.logStep[0], s.logStep[1])
		return s.walk(hmcIters, eps)
	})
	if err != nil {
		return nil, nil, err
	}
	s.chain.logSummary("hmc: shortcut sampling complete",
		"reversals", s.chain.stats.Reversals,
		"shortcuts", s.chain.stats.Shortcuts,
	)
	return thetas, momenta, nil
}

// Stats returns counters accumulated over all Sample calls.
func (s *Shortcut) Stats() Stats { return s.chain.stats }

// walk moves the model and momentum to the candidate state of one adaptive
// trajectory with step size eps.
func (s *Shortcut) walk(steps int, eps float64) error {
	c := s.chain
	group := s.Config.GroupSize
	buf := trajectory.NewBuffer(steps, len(c.p))
	buf.Store(0, c.model.Parameters(), c.p, c.ham.Energy(c.model, c.p))

	// reversal is the offset at which the forward walk went unstable;
	// zero until then.
	reversal := 0
	pos := 1
	for i := range steps {
		if err := c.leap.Step(c.model, c.p, eps); err != nil {
			return err
		}
		buf.Store(pos, c.model.Parameters(), c.p, c.ham.Energy(c.model, c.p))

		if i < group {
			pos++
			continue
		}

		if reversal == 0 {
			if s.stability.Stable(buf.Energies(pos-group+1, pos)) {
				pos++
				continue
			}
			reversal = pos
			pos = -1
			c.stats.Reversals++
			c.model.SetParameters(buf.Theta(0))
			copy(c.p, buf.Momentum(0))
			floats.Scale(-1, c.p)
			continue
		}

		if s.stability.Stable(buf.Energies(pos, pos+group-1)) {
			pos--
			continue
		}
		end := trajectory.Reflect(reversal, pos, steps-i)
		c.stats.Shortcuts++
		c.model.SetParameters(buf.Theta(end))
		copy(c.p, buf.Momentum(end))
		return nil
	}
	return nil
}
