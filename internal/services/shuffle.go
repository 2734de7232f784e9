package services

import (
	"math/rand/v2"
	"sync"
)

// RNG abstracts random number generation so draws and shuffles can be
// reproduced in tests.
type RNG interface {
	// IntN returns a uniform random int in [0, n). n must be positive.
	IntN(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewRandom returns the production RNG, backed by the auto-seeded math/rand/v2 source.
func NewRandom() RNG { return globalRand{} }

// NewSeededRandom returns a reproducible RNG. It is safe for concurrent use.
func NewSeededRandom(seed uint64) RNG {
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Shuffle returns a uniformly random permutation of items using Fisher-Yates.
// The input slice is not modified.
func Shuffle[T any](items []T, rng RNG) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
