// Package rng provides the seeded random streams that drive generation.
//
// Every generator owns a Stream created from an explicit seed. Child
// branches either reuse the parent seed (symmetric mode) or fork a fresh
// seed from the parent stream, so a single top-level seed reproduces a
// whole run.
package rng

import "math/rand/v2"

// Stream is a deterministic random stream. It is not safe for concurrent use.
type Stream struct {
	seed uint64
	r    *rand.Rand
}

// New returns a stream seeded with seed.
func New(seed uint64) *Stream {
	return &Stream{seed: seed, r: rand.New(rand.NewPCG(seed, mix(seed^0x9e3779b97f4a7c15)))}
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 { return s.r.Float64() }

// Uniform returns a value in [lo, hi). If hi <= lo it returns lo,
// still consuming one draw.
func (s *Stream) Uniform(lo, hi float64) float64 {
	f := s.r.Float64()
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*f
}

// IntRange returns an integer in [lo, hi], both inclusive.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		s.r.Uint64()
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Chance reports whether a draw falls under p.
func (s *Stream) Chance(p float64) bool {
	return s.r.Float64() < p
}

// Fork draws a seed for a child stream.
func (s *Stream) Fork() uint64 { return s.r.Uint64() }

// Branch returns the seed for a child branch: the stream's own seed when
// symmetric, a forked seed otherwise.
func (s *Stream) Branch(symmetric bool) uint64 {
	if symmetric {
		return s.seed
	}
	return s.Fork()
}

// Derive hashes seed with salts into an independent seed. It is used where
// children must not depend on the order they are visited in.
func Derive(seed uint64, salts ...int64) uint64 {
	h := mix(seed)
	for _, v := range salts {
		h = mix(h ^ uint64(v))
	}
	return h
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
