// Package hmc implements Hamiltonian Monte Carlo sampling.
//
// HMC draws from a density known only through an energy U(θ), the negative
// log-density up to a constant, and its gradient. Each iteration draws a
// momentum, simulates Hamiltonian dynamics with the leapfrog scheme and
// applies a Metropolis test to the endpoint.
//
// Two samplers are provided. Sampler runs fixed-length trajectories with a
// fixed step size. Shortcut draws a step size per iteration and cuts
// trajectories short when the simulated energy goes unstable, reversing
// direction once before stopping.
//
// Basic usage:
//
//	sampler, err := hmc.New(target, hmc.DefaultConfig())
//	thetas, momenta, err := sampler.Sample(1000, 20)
//
// The sampler reads and writes the model's parameter vector during Sample.
// Nothing else may touch the model while Sample runs.
package hmc

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/nozzle/hmc/model"
	"gonum.org/v1/gonum/mat"
)

// Model is the target a sampler draws from.
type Model = model.Model

var (
	// ErrStepSize is returned for a non-positive or malformed step size.
	ErrStepSize = errors.New("hmc: invalid step size")
	// ErrGroupSize is returned for a stability window smaller than one.
	ErrGroupSize = errors.New("hmc: invalid group size")
	// ErrThreshold is returned for malformed stability thresholds.
	ErrThreshold = errors.New("hmc: invalid stability thresholds")
	// ErrDimension is returned when the model and mass matrix disagree on
	// dimension.
	ErrDimension = errors.New("hmc: dimension mismatch")
	// ErrIterations is returned for negative iteration counts.
	ErrIterations = errors.New("hmc: negative iteration count")
)

// Config configures the standard sampler.
type Config struct {
	// Mass is the momentum covariance M. It must be symmetric positive
	// definite with the model's dimension.
	// Default: nil (identity)
	Mass mat.Symmetric

	// StepSize is the leapfrog step ε.
	// Default: 0.1
	StepSize float64

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

// DefaultConfig returns the default standard sampler configuration.
func DefaultConfig() Config {
	return Config{
		StepSize: 0.1,
		Seed:     42,
	}
}

// Sampler is the fixed step size, fixed trajectory length HMC sampler.
type Sampler struct {
	Config Config

	chain *chain
}

// New creates a standard sampler for m.
func New(m Model, config Config) (*Sampler, error) {
	if !(config.StepSize > 0) || math.IsInf(config.StepSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrStepSize, config.StepSize)
	}
	c, err := newChain(m, config.Mass, config.Seed, config.Logger, config.ProgressCallback)
	if err != nil {
		return nil, err
	}
	return &Sampler{Config: config, chain: c}, nil
}

// Sample runs mIters Metropolis iterations, each proposing the endpoint of
// hmcIters leapfrog steps. It returns the kept position and momentum of every
// iteration, accepted or not.
func (s *Sampler) Sample(mIters, hmcIters int) (thetas, momenta [][]float64, err error) {
	thetas, momenta, err = s.chain.run(mIters, hmcIters, func(hmcIters int) error {
		return s.chain.leap.Integrate(s.chain.model, s.chain.p, s.Config.StepSize, hmcIters)
	})
	if err != nil {
		return nil, nil, err
	}
	s.chain.logSummary("hmc: sampling complete")
	return thetas, momenta, nil
}

// Stats returns counters accumulated over all Sample calls.
func (s *Sampler) Stats() Stats { return s.chain.stats }
