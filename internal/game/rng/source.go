// Package rng provides the randomness abstraction for the battle core.
//
// Every roll a battle makes flows through a single injected Source, so a
// session seeded with the same value replays identically.
package rng

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"
)

// Source is the randomness provider for battle rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource implements Source using math/rand with a fixed seed.
type seededSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a deterministic Source. Two sources built from the
// same seed produce identical roll sequences.
func NewSeeded(seed int64) Source {
	return &seededSource{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand, for live play
// where replayability is not wanted.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Percent rolls a percentile check.
//
// Postcondition: Returns true with probability pct/100; always false for
// pct <= 0 and always true for pct >= 100.
func Percent(src Source, pct int) bool {
	if pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	return src.Intn(100) < pct
}

// Between returns a uniform random int in [lo, hi].
//
// Precondition: lo <= hi.
func Between(src Source, lo, hi int) int {
	if lo > hi {
		panic("rng: Between called with lo > hi")
	}
	if lo == hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
