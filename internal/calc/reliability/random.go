package reliability

import (
	"math"
	"math/rand/v2"
)

// Uniform yields uniform variates in [0, 1). *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Sampler draws normal variates from an injected uniform source. It is not
// safe for concurrent use; give every calculation its own Sampler.
type Sampler struct {
	src Uniform
}

// NewSampler wraps src. A nil src gets a randomly seeded PCG generator.
func NewSampler(src Uniform) *Sampler {
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{src: src}
}

// NewSeededSampler returns a Sampler whose sequence is fixed by seed.
func NewSeededSampler(seed uint64) *Sampler {
	return NewSampler(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Gaussian returns mean + std·z where z comes from the Box-Muller transform of
// two fresh uniforms. No spare variate is cached between calls.
func (s *Sampler) Gaussian(mean, std float64) float64 {
	u1 := 1 - s.src.Float64() // (0, 1], keeps the log finite
	u2 := s.src.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + std*z
}
