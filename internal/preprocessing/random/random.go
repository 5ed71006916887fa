// Package random supplies the randomness used by stochastic pipeline stages.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the subset of *rand.Rand the pipeline needs.
type Source interface {
	// IntN returns a uniform int in [0, n).  It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a uniform float64 in [0.0, 1.0).
	Float64() float64
}

type globalSource struct{}

func (globalSource) IntN(n int) int    { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// Global returns a Source backed by the math/rand/v2 top-level generator,
// which is safe for concurrent use.
func Global() Source {
	return globalSource{}
}

// New returns a seeded Source for use by a single goroutine.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Locked is a seeded Source guarded by a mutex so it can be shared by
// concurrent pipeline calls.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked returns a goroutine-safe seeded Source.
func NewLocked(seed uint64) *Locked {
	return &Locked{rng: New(seed)}
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// FromSeed picks the shared Source for a pipeline: the global generator when
// seed is zero, a Locked source otherwise.
func FromSeed(seed uint64) Source {
	if seed == 0 {
		return Global()
	}
	return NewLocked(seed)
}

// Fixed replays a scripted sequence of values.  It is meant for tests that
// need to force a particular branch; IntN results are reduced modulo n.
type Fixed struct {
	mu     sync.Mutex
	Ints   []int
	Floats []float64
	ni, nf int
}

func (f *Fixed) IntN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.ni%len(f.Ints)]
	f.ni++
	return v % n
}

func (f *Fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[f.nf%len(f.Floats)]
	f.nf++
	return v
}

var (
	_ Source = (*rand.Rand)(nil)
	_ Source = (*Locked)(nil)
	_ Source = (*Fixed)(nil)
)
