// Package trajectory records the states visited by an adaptive-length
// Hamiltonian trajectory.
//
// States are addressed by signed offset from the starting state: the forward
// walk fills offsets 1, 2, ..., a reversed walk fills -1, -2, .... A buffer
// for a budget of n steps has fixed capacity 2n+1 with offset 0 in the
// middle.
package trajectory

import "fmt"

// Buffer is a fixed-capacity snapshot store indexed by signed offset.
type Buffer struct {
	center int
	dim    int

	theta    []float64
	momentum []float64
	energy   []float64
}

// NewBuffer allocates room for offsets -steps..steps of dim-dimensional
// states.
func NewBuffer(steps, dim int) *Buffer {
	n := 2*steps + 1
	return &Buffer{
		center:   steps,
		dim:      dim,
		theta:    make([]float64, n*dim),
		momentum: make([]float64, n*dim),
		energy:   make([]float64, n),
	}
}

// Store copies (theta, p, h) into the slot at offset.
func (b *Buffer) Store(offset int, theta, p []float64, h float64) {
	i := b.index(offset)
	copy(b.theta[i*b.dim:(i+1)*b.dim], theta)
	copy(b.momentum[i*b.dim:(i+1)*b.dim], p)
	b.energy[i] = h
}

// Theta returns the position stored at offset. The slice aliases the buffer.
func (b *Buffer) Theta(offset int) []float64 {
	i := b.index(offset)
	return b.theta[i*b.dim : (i+1)*b.dim]
}

// Momentum returns the momentum stored at offset. The slice aliases the
// buffer.
func (b *Buffer) Momentum(offset int) []float64 {
	i := b.index(offset)
	return b.momentum[i*b.dim : (i+1)*b.dim]
}

// Energies returns the energies at offsets lo..hi inclusive.
func (b *Buffer) Energies(lo, hi int) []float64 {
	if lo > hi {
		panic(fmt.Sprintf("trajectory: empty window [%d, %d]", lo, hi))
	}
	return b.energy[b.index(lo) : b.index(hi)+1]
}

func (b *Buffer) index(offset int) int {
	if offset < -b.center || offset > b.center {
		panic(fmt.Sprintf("trajectory: offset %d outside [-%d, %d]", offset, b.center, b.center))
	}
	return b.center + offset
}
