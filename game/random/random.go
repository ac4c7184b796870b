// Package random provides the uniform random source used by every roll in
// the simulation. Production code wraps math/rand; tests script the rolls.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// New returns a math/rand backed source. A zero seed uses the clock.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Intn maps a uniform roll onto [0, n). n must be positive.
func Intn(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Percent returns a roll in [0, 100).
func Percent(src Source) float64 {
	return src.Float64() * 100
}

// Between returns a uniform roll in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Sequence replays a fixed list of values, cycling when exhausted. An empty
// sequence always returns 0.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

// NewSequence creates a Sequence over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Fixed always returns the same value.
type Fixed float64

// Float64 implements Source.
func (f Fixed) Float64() float64 { return float64(f) }
