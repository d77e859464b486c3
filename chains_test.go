package hmc

import (
	"context"
	"testing"

	"github.com/nozzle/hmc/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleChains(t *testing.T) {
	samplers := make([]Runner, 4)
	for i := range samplers {
		target, err := model.NewStandardNormal(2)
		require.NoError(t, err)

		if i%2 == 0 {
			config := DefaultConfig()
			config.Seed = uint32(i + 1)
			samplers[i], err = New(target, config)
		} else {
			config := DefaultShortcutConfig()
			config.Seed = uint32(i + 1)
			samplers[i], err = NewShortcut(target, config)
		}
		require.NoError(t, err)
	}

	chains, err := SampleChains(context.Background(), samplers, 25, 10, 2)
	require.NoError(t, err)
	require.Len(t, chains, 4)
	for _, c := range chains {
		assert.Len(t, c.Thetas, 25)
		assert.Len(t, c.Momenta, 25)
	}
	assert.NotEqual(t, chains[0].Thetas, chains[2].Thetas, "different seeds give different chains")
}

func TestSampleChainsError(t *testing.T) {
	target, err := model.NewStandardNormal(1)
	require.NoError(t, err)
	s, err := New(target, DefaultConfig())
	require.NoError(t, err)

	_, err = SampleChains(context.Background(), []Runner{s}, -1, 10, 1)
	assert.ErrorIs(t, err, ErrIterations)
}
