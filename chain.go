package hmc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nozzle/hmc/dynamics"
	"github.com/nozzle/hmc/internal/rand"
	"github.com/nozzle/hmc/mass"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Stats counts what a sampler did.
type Stats struct {
	Iterations int
	Accepted   int

	// Reversals counts trajectories that reversed direction after a first
	// instability. Always zero for the standard sampler.
	Reversals int
	// Shortcuts counts trajectories stopped by a second instability.
	// Always zero for the standard sampler.
	Shortcuts int
}

// AcceptanceRate returns Accepted/Iterations, or 0 before any iteration.
func (s Stats) AcceptanceRate() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Iterations)
}

// chain is the Metropolis outer loop shared by both samplers.
type chain struct {
	model    Model
	ham      dynamics.Hamiltonian
	leap     *dynamics.Leapfrog
	rng      *rand.MT19937
	momentum *distmv.Normal
	p        []float64

	logger   *slog.Logger
	progress func(iter, total int)
	stats    Stats
}

func newChain(m Model, cov mat.Symmetric, seed uint32, logger *slog.Logger, progress func(int, int)) (*chain, error) {
	d := len(m.Parameters())
	if d == 0 {
		return nil, fmt.Errorf("%w: model has no parameters", ErrDimension)
	}

	var (
		mm  *mass.Matrix
		err error
	)
	if cov == nil {
		mm, err = mass.Identity(d)
	} else {
		if cov.SymmetricDim() != d {
			return nil, fmt.Errorf("%w: mass matrix is %dx%d, model has %d parameters",
				ErrDimension, cov.SymmetricDim(), cov.SymmetricDim(), d)
		}
		mm, err = mass.New(cov)
	}
	if err != nil {
		return nil, err
	}

	rng := rand.NewMT19937(seed)
	momentum, ok := distmv.NewNormal(make([]float64, d), mm.Cov(), rng)
	if !ok {
		return nil, mass.ErrNotPositiveDefinite
	}

	return &chain{
		model:    m,
		ham:      dynamics.NewHamiltonian(mm),
		leap:     dynamics.NewLeapfrog(mm),
		rng:      rng,
		momentum: momentum,
		p:        make([]float64, d),
		logger:   logger,
		progress: progress,
	}, nil
}

// run performs mIters Metropolis iterations. propose moves the model and
// c.p to a candidate state.
func (c *chain) run(mIters, hmcIters int, propose func(hmcIters int) error) ([][]float64, [][]float64, error) {
	if mIters < 0 || hmcIters < 0 {
		return nil, nil, fmt.Errorf("%w: m_iters=%d hmc_iters=%d", ErrIterations, mIters, hmcIters)
	}

	thetas := make([][]float64, mIters)
	momenta := make([][]float64, mIters)

	for i := range mIters {
		c.momentum.Rand(c.p)
		hOld := c.ham.Energy(c.model, c.p)
		pOld := clone(c.p)
		thetaOld := clone(c.model.Parameters())

		if err := propose(hmcIters); err != nil {
			c.model.SetParameters(thetaOld)
			return nil, nil, err
		}
		hNew := c.ham.Energy(c.model, c.p)

		c.stats.Iterations++
		if c.rng.Float64() < acceptance(hOld, hNew) {
			thetas[i] = clone(c.model.Parameters())
			momenta[i] = clone(c.p)
			c.stats.Accepted++
		} else {
			thetas[i] = thetaOld
			momenta[i] = pOld
			c.model.SetParameters(thetaOld)
		}

		if c.progress != nil {
			c.progress(i+1, mIters)
		}
	}

	return thetas, momenta, nil
}

func (c *chain) logSummary(msg string, attrs ...any) {
	if c.logger == nil {
		return
	}
	attrs = append([]any{
		"iterations", c.stats.Iterations,
		"accepted", c.stats.Accepted,
		"acceptance_rate", c.stats.AcceptanceRate(),
	}, attrs...)
	c.logger.Debug(msg, attrs...)
}

// acceptance returns min(1, exp(hOld-hNew)). Energy drops short-circuit to 1
// so the exponential never overflows; a NaN energy is never accepted.
func acceptance(hOld, hNew float64) float64 {
	if math.IsNaN(hOld) || math.IsNaN(hNew) {
		return 0
	}
	if hOld > hNew {
		return 1
	}
	return math.Exp(hOld - hNew)
}

func clone(x []float64) []float64 {
	return append([]float64(nil), x...)
}
