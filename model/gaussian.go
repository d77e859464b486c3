package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrCovariance is returned when a covariance matrix cannot be factorized.
var ErrCovariance = errors.New("model: covariance is not positive definite")

// Gaussian is a multivariate normal target with
// U(θ) = ½ (θ-μ)ᵀ Σ⁻¹ (θ-μ).
type Gaussian struct {
	mean      []float64
	precision *mat.SymDense
	theta     []float64

	// scratch
	diff *mat.VecDense
	grad *mat.VecDense
}

// NewGaussian returns a Gaussian target with the given mean and covariance,
// positioned at the mean. A nil cov means the identity.
func NewGaussian(mean []float64, cov mat.Symmetric) (*Gaussian, error) {
	d := len(mean)
	if d == 0 {
		return nil, fmt.Errorf("model: gaussian needs at least one dimension")
	}

	precision := mat.NewSymDense(d, nil)
	if cov == nil {
		for i := range d {
			precision.SetSym(i, i, 1)
		}
	} else {
		if cov.SymmetricDim() != d {
			return nil, fmt.Errorf("model: covariance is %dx%d, mean has %d entries",
				cov.SymmetricDim(), cov.SymmetricDim(), d)
		}
		var chol mat.Cholesky
		if !chol.Factorize(cov) {
			return nil, ErrCovariance
		}
		if err := chol.InverseTo(precision); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCovariance, err)
		}
	}

	g := &Gaussian{
		mean:      append([]float64(nil), mean...),
		precision: precision,
		theta:     append([]float64(nil), mean...),
		diff:      mat.NewVecDense(d, nil),
		grad:      mat.NewVecDense(d, nil),
	}
	return g, nil
}

// NewStandardNormal returns an isotropic unit Gaussian centered at zero.
func NewStandardNormal(d int) (*Gaussian, error) {
	return NewGaussian(make([]float64, d), nil)
}

func (g *Gaussian) Parameters() []float64 { return g.theta }

func (g *Gaussian) SetParameters(theta []float64) { copy(g.theta, theta) }

func (g *Gaussian) Objective() float64 {
	g.residual()
	return 0.5 * mat.Inner(g.diff, g.precision, g.diff)
}

func (g *Gaussian) ObjectiveGradient() []float64 {
	g.residual()
	g.grad.MulVec(g.precision, g.diff)
	return append([]float64(nil), g.grad.RawVector().Data...)
}

func (g *Gaussian) residual() {
	for i, v := range g.theta {
		g.diff.SetVec(i, v-g.mean[i])
	}
}

// Flat is a constant-energy target with zero gradient.
type Flat struct {
	Level float64
	theta []float64
}

// NewFlat returns a flat target positioned at theta0.
func NewFlat(theta0 []float64, level float64) *Flat {
	return &Flat{Level: level, theta: append([]float64(nil), theta0...)}
}

func (f *Flat) Parameters() []float64 { return f.theta }

func (f *Flat) SetParameters(theta []float64) { copy(f.theta, theta) }

func (f *Flat) Objective() float64 { return f.Level }

func (f *Flat) ObjectiveGradient() []float64 { return make([]float64, len(f.theta)) }
