// Package model defines the capability a sampler needs from a target
// distribution, plus a few reference targets.
//
// A Model owns the parameter vector θ. Samplers read it, overwrite it during
// trial moves and restore it on rejection, so a Model must not be shared by
// two samplers that run at the same time.
package model

// Model is a target distribution expressed as an energy U(θ), the negative
// log-density up to an additive constant, evaluated at the current θ.
type Model interface {
	// Parameters returns the current position. Callers must not modify
	// the returned slice.
	Parameters() []float64

	// SetParameters moves the model to theta. Implementations must copy
	// theta; callers reuse the slice.
	SetParameters(theta []float64)

	// Objective returns U at the current position.
	Objective() float64

	// ObjectiveGradient returns ∇U at the current position.
	ObjectiveGradient() []float64
}

// GradientTransformer is implemented by models that sample in a
// reparameterized space and must map raw gradients into it.
type GradientTransformer interface {
	TransformGradient(grad []float64) []float64
}

// Gradient returns the gradient of m at its current position, passed
// through TransformGradient when m implements GradientTransformer.
func Gradient(m Model) []float64 {
	g := m.ObjectiveGradient()
	if t, ok := m.(GradientTransformer); ok {
		return t.TransformGradient(g)
	}
	return g
}
