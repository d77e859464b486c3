package hmc

import (
	"context"

	"github.com/nozzle/hmc/internal/parallel"
)

// Runner is a sampler that can produce a chain of draws.
// Both *Sampler and *Shortcut implement it.
type Runner interface {
	Sample(mIters, hmcIters int) (thetas, momenta [][]float64, err error)
	Stats() Stats
}

// Chain holds the draws of one chain.
type Chain struct {
	Thetas  [][]float64
	Momenta [][]float64
}

// SampleChains runs independent samplers concurrently on at most numWorkers
// goroutines (0 = one per CPU) and returns their chains in input order.
// Each sampler must own its model; samplers sharing a model race.
func SampleChains(ctx context.Context, samplers []Runner, mIters, hmcIters, numWorkers int) ([]Chain, error) {
	return parallel.Map(ctx, len(samplers), numWorkers, func(_ context.Context, i int) (Chain, error) {
		thetas, momenta, err := samplers[i].Sample(mIters, hmcIters)
		if err != nil {
			return Chain{}, err
		}
		return Chain{Thetas: thetas, Momenta: momenta}, nil
	})
}
