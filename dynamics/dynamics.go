// Package dynamics simulates Hamiltonian dynamics for a model.
//
// The Hamiltonian is
//
//	H(θ, p) = U(θ) + d/2·ln(2π) + ½·ln|M| + ½·pᵀM⁻¹p
//
// and trajectories are advanced with the leapfrog scheme, which is
// symplectic and time-reversible.
package dynamics

import (
	"errors"
	"fmt"
	"math"

	"github.com/nozzle/hmc/mass"
	"github.com/nozzle/hmc/model"
	"gonum.org/v1/gonum/floats"
)

// ErrDimension is returned when a model's gradient does not match the
// dimension of the mass matrix.
var ErrDimension = errors.New("dynamics: dimension mismatch")

// Hamiltonian evaluates total energy. The model is evaluated at whatever
// position it currently holds.
type Hamiltonian struct {
	mass   *mass.Matrix
	offset float64
}

// NewHamiltonian returns the energy evaluator for the mass matrix m.
func NewHamiltonian(m *mass.Matrix) Hamiltonian {
	d := float64(m.Dim())
	return Hamiltonian{
		mass:   m,
		offset: d*math.Log(2*math.Pi)/2 + m.LogDet()/2,
	}
}

// Energy returns H at the model's current position and momentum p.
func (h Hamiltonian) Energy(mdl model.Model, p []float64) float64 {
	return mdl.Objective() + h.offset + h.mass.Kinetic(p)
}

// Leapfrog advances (θ, p) in place. It keeps scratch space and is not safe
// for concurrent use.
type Leapfrog struct {
	mass  *mass.Matrix
	theta []float64
	vel   []float64
}

// NewLeapfrog returns an integrator for the mass matrix m.
func NewLeapfrog(m *mass.Matrix) *Leapfrog {
	d := m.Dim()
	return &Leapfrog{
		mass:  m,
		theta: make([]float64, d),
		vel:   make([]float64, d),
	}
}

// Step performs one leapfrog step of size eps. It writes the new position
// to the model and the new momentum to p.
func (l *Leapfrog) Step(mdl model.Model, p []float64, eps float64) error {
	if err := l.kick(mdl, p, eps/2); err != nil {
		return err
	}

	copy(l.theta, mdl.Parameters())
	l.mass.Velocity(l.vel, p)
	floats.AddScaled(l.theta, eps, l.vel)
	mdl.SetParameters(l.theta)

	return l.kick(mdl, p, eps/2)
}

// Integrate performs n leapfrog steps of size eps.
func (l *Leapfrog) Integrate(mdl model.Model, p []float64, eps float64, n int) error {
	for range n {
		if err := l.Step(mdl, p, eps); err != nil {
			return err
		}
	}
	return nil
}

// kick applies p ← p - h·∇U(θ).
func (l *Leapfrog) kick(mdl model.Model, p []float64, h float64) error {
	g := model.Gradient(mdl)
	if len(g) != len(p) {
		return fmt.Errorf("%w: gradient has %d entries, momentum has %d", ErrDimension, len(g), len(p))
	}
	floats.AddScaled(p, -h, g)
	return nil
}
