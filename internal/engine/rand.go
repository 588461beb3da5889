package engine

import (
	"math/rand"
	"sync"
)

// Rand supplies the uniform randomness the allocation engine consumes. Each
// decision uses independent draws, so implementations only need to produce a
// uniform stream; tests substitute scripted sequences.
type Rand interface {
	// Float64 returns a uniform value in [0.0, 1.0).
	Float64() float64
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// lockedRand wraps math/rand with a mutex so one seeded source can be shared
// by concurrent redemptions.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewLockedRand returns a Rand backed by a single seeded source that is safe
// for concurrent use.
func NewLockedRand(seed int64) Rand {
	return &lockedRand{src: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}
