package kernel

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is the randomness source injected into tracking synthesis, zone transit
// estimates and batch selection. Implementations must be safe for concurrent use.
type Rand interface {
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// SeededRand is a Rand backed by a PCG generator.
type SeededRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRand returns a deterministic Rand for the given seed.
func NewSeededRand(seed uint64) *SeededRand {
	return &SeededRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRand returns a Rand seeded from the clock.
func NewRand() *SeededRand {
	return NewSeededRand(uint64(time.Now().UnixNano()))
}

func (r *SeededRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// RandomDigits returns n decimal digits drawn from r, zero padded.
func RandomDigits(r Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + r.IntN(10))
	}
	return string(b)
}

// RandomBetween returns a uniform value in [lo, hi].
func RandomBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}
