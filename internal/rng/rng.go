package rng

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
)

// Source is the subset of *rand.Rand the spawning code draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Locked wraps a *rand.Rand so it can be shared between the step loop, the
// planner and routing callers.
type Locked struct {
	r  *rand.Rand
	mu sync.Mutex
}

func NewLocked(seed int64) *Locked {
	return &Locked{r: rand.New(rand.NewSource(seed))}
}

// NewLabelled derives a seed from a root seed and a label so each component
// gets an independent but reproducible stream.
func NewLabelled(rootSeed int64, label string) *Locked {
	hasher := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(rootSeed >> (8 * i))
	}
	hasher.Write(buf[:])
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return NewLocked(int64(sum))
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Angle draws uniformly from [0, 2π).
func Angle(src Source) float64 {
	return src.Float64() * 2 * math.Pi
}

// Distance draws uniformly from [min, max). A degenerate range returns min.
func Distance(src Source, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + src.Float64()*(max-min)
}
