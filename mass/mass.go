// Package mass holds the momentum covariance of Hamiltonian dynamics.
//
// A Matrix caches M, its inverse and log|M| at construction and is immutable
// afterwards.
package mass

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNotPositiveDefinite is returned for singular or indefinite matrices.
var ErrNotPositiveDefinite = errors.New("mass: matrix is not positive definite")

// Matrix is a symmetric positive-definite mass matrix.
type Matrix struct {
	m      *mat.SymDense
	inv    *mat.SymDense
	logDet float64
}

// Identity returns the d×d identity mass matrix.
func Identity(d int) (*Matrix, error) {
	if d < 1 {
		return nil, fmt.Errorf("mass: dimension must be positive, got %d", d)
	}
	m := mat.NewSymDense(d, nil)
	inv := mat.NewSymDense(d, nil)
	for i := range d {
		m.SetSym(i, i, 1)
		inv.SetSym(i, i, 1)
	}
	return &Matrix{m: m, inv: inv}, nil
}

// New copies m and derives its inverse and log-determinant through a
// Cholesky factorization.
func New(m mat.Symmetric) (*Matrix, error) {
	d := m.SymmetricDim()
	if d < 1 {
		return nil, fmt.Errorf("mass: dimension must be positive, got %d", d)
	}

	var chol mat.Cholesky
	if !chol.Factorize(m) {
		return nil, ErrNotPositiveDefinite
	}
	inv := mat.NewSymDense(d, nil)
	if err := chol.InverseTo(inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
	}

	own := mat.NewSymDense(d, nil)
	own.CopySym(m)

	return &Matrix{m: own, inv: inv, logDet: chol.LogDet()}, nil
}

// Dim returns the dimension of the matrix.
func (m *Matrix) Dim() int { return m.m.SymmetricDim() }

// Cov returns M. It must not be modified.
func (m *Matrix) Cov() mat.Symmetric { return m.m }

// LogDet returns ln|M|.
func (m *Matrix) LogDet() float64 { return m.logDet }

// Velocity stores M⁻¹p in dst, the position derivative for momentum p.
func (m *Matrix) Velocity(dst, p []float64) {
	d := m.Dim()
	mat.NewVecDense(d, dst).MulVec(m.inv, mat.NewVecDense(d, p))
}

// Kinetic returns ½ pᵀ M⁻¹ p.
func (m *Matrix) Kinetic(p []float64) float64 {
	v := mat.NewVecDense(m.Dim(), p)
	return 0.5 * mat.Inner(v, m.inv, v)
}
