// Package rand provides random number generation compatible with NumPy's RandomState.
// This implements the Mersenne Twister (MT19937) algorithm so a seeded chain
// reproduces the draws of numpy.random.RandomState(seed).
//
// MT19937 satisfies math/rand/v2.Source, so it can drive gonum's
// distributions directly.
package rand

import "math"

const (
	mtN        = 624
	mtM        = 397
	matrixA    = 0x9908b0df
	upperMask  = 0x80000000
	lowerMask  = 0x7fffffff
	temperingB = 0x9d2c5680
	temperingC = 0xefc60000
)

// MT19937 is a Mersenne Twister random number generator compatible with NumPy.
// It is not safe for concurrent use.
type MT19937 struct {
	mt  [mtN]uint32
	mti int
}

// NewMT19937 creates a new Mersenne Twister with the given seed.
func NewMT19937(seed uint32) *MT19937 {
	mt := &MT19937{}
	mt.Seed(seed)
	return mt
}

// Seed initializes the generator with a seed.
// This matches numpy.random.RandomState(seed) initialization.
func (mt *MT19937) Seed(seed uint32) {
	mt.mt[0] = seed
	for i := 1; i < mtN; i++ {
		mt.mt[i] = 1812433253*(mt.mt[i-1]^(mt.mt[i-1]>>30)) + uint32(i)
	}
	mt.mti = mtN
}

// Uint32 generates a random uint32.
func (mt *MT19937) Uint32() uint32 {
	if mt.mti >= mtN {
		mt.twist()
	}

	y := mt.mt[mt.mti]
	mt.mti++

	// Tempering
	y ^= y >> 11
	y ^= (y << 7) & temperingB
	y ^= (y << 15) & temperingC
	y ^= y >> 18

	return y
}

// twist regenerates the full block of N words.
func (mt *MT19937) twist() {
	mag01 := [2]uint32{0, matrixA}
	var y uint32
	var kk int
	for kk = 0; kk < mtN-mtM; kk++ {
		y = (mt.mt[kk] & upperMask) | (mt.mt[kk+1] & lowerMask)
		mt.mt[kk] = mt.mt[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
	}
	for ; kk < mtN-1; kk++ {
		y = (mt.mt[kk] & upperMask) | (mt.mt[kk+1] & lowerMask)
		mt.mt[kk] = mt.mt[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01[y&1]
	}
	y = (mt.mt[mtN-1] & upperMask) | (mt.mt[0] & lowerMask)
	mt.mt[mtN-1] = mt.mt[mtM-1] ^ (y >> 1) ^ mag01[y&1]
	mt.mti = 0
}

// Uint64 returns two consecutive outputs packed high word first.
// It makes MT19937 a math/rand/v2.Source.
func (mt *MT19937) Uint64() uint64 {
	hi := uint64(mt.Uint32())
	lo := uint64(mt.Uint32())
	return hi<<32 | lo
}

// Float64 generates a random float64 in [0, 1) with 53-bit precision.
// This matches numpy's random_sample() / rand().
func (mt *MT19937) Float64() float64 {
	a := mt.Uint32() >> 5
	b := mt.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}

// Uniform generates a random float64 in [low, high).
// This matches numpy.random.uniform(low, high).
func (mt *MT19937) Uniform(low, high float64) float64 {
	return low + (high-low)*mt.Float64()
}

// LogUniform10 returns 10^u with u drawn uniformly from [log10Low, log10High).
// The bounds are exponents, not the values themselves.
func (mt *MT19937) LogUniform10(log10Low, log10High float64) float64 {
	return math.Pow(10, mt.Uniform(log10Low, log10High))
}
