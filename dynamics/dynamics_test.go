package dynamics

import (
	"math"
	"testing"

	"github.com/nozzle/hmc/mass"
	"github.com/nozzle/hmc/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type shortGradient struct{ *model.Flat }

func (shortGradient) ObjectiveGradient() []float64 { return []float64{0} }

func TestEnergyOneDimension(t *testing.T) {
	m, err := mass.Identity(1)
	require.NoError(t, err)
	g, err := model.NewStandardNormal(1)
	require.NoError(t, err)
	g.SetParameters([]float64{2})

	h := NewHamiltonian(m)
	want := 2.0 + 0.5*math.Log(2*math.Pi) + 0.5*9
	assert.InDelta(t, want, h.Energy(g, []float64{3}), 1e-12)
}

func TestEnergyIncludesLogDet(t *testing.T) {
	m, err := mass.New(mat.NewSymDense(2, []float64{2, 0, 0, 2}))
	require.NoError(t, err)
	f := model.NewFlat([]float64{0, 0}, 1)

	h := NewHamiltonian(m)
	want := 1 + math.Log(2*math.Pi) + 0.5*math.Log(4) + 0.5*(1.0/2+4.0/2)
	assert.InDelta(t, want, h.Energy(f, []float64{1, 2}), 1e-12)
}

func TestLeapfrogReversible(t *testing.T) {
	m, err := mass.New(mat.NewSymDense(3, []float64{
		2, 0.5, 0,
		0.5, 1, 0.2,
		0, 0.2, 1.5,
	}))
	require.NoError(t, err)
	g, err := model.NewGaussian([]float64{1, 0, -1}, mat.NewSymDense(3, []float64{
		1, 0.3, 0,
		0.3, 2, 0,
		0, 0, 0.5,
	}))
	require.NoError(t, err)

	start := []float64{0.4, -1.2, 2.0}
	g.SetParameters(start)
	p := []float64{0.7, 0.1, -0.9}

	lf := NewLeapfrog(m)
	require.NoError(t, lf.Integrate(g, p, 0.05, 40))
	assert.False(t, floats.EqualApprox(start, g.Parameters(), 1e-3), "trajectory should move")

	floats.Scale(-1, p)
	require.NoError(t, lf.Integrate(g, p, 0.05, 40))
	assert.InDeltaSlice(t, start, g.Parameters(), 1e-9)
	assert.InDeltaSlice(t, []float64{-0.7, -0.1, 0.9}, p, 1e-9)
}

func TestLeapfrogConservesEnergy(t *testing.T) {
	m, err := mass.Identity(2)
	require.NoError(t, err)
	g, err := model.NewStandardNormal(2)
	require.NoError(t, err)
	g.SetParameters([]float64{1, -0.5})
	p := []float64{0.3, 0.8}

	h := NewHamiltonian(m)
	before := h.Energy(g, p)
	require.NoError(t, NewLeapfrog(m).Integrate(g, p, 0.01, 200))
	assert.InDelta(t, before, h.Energy(g, p), 1e-4)
}

func TestLeapfrogFlatIsFreeMotion(t *testing.T) {
	m, err := mass.Identity(2)
	require.NoError(t, err)
	f := model.NewFlat([]float64{0, 0}, 3)
	p := []float64{1, -2}

	require.NoError(t, NewLeapfrog(m).Integrate(f, p, 0.1, 10))
	assert.InDeltaSlice(t, []float64{1, -2}, f.Parameters(), 1e-12)
	assert.Equal(t, []float64{1, -2}, p)
}

func TestLeapfrogDimensionMismatch(t *testing.T) {
	m, err := mass.Identity(2)
	require.NoError(t, err)
	bad := shortGradient{model.NewFlat([]float64{0, 0}, 0)}

	err = NewLeapfrog(m).Step(bad, []float64{1, 1}, 0.1)
	assert.ErrorIs(t, err, ErrDimension)
}
