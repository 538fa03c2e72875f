package sim

import (
	"math/rand"
	"time"
)

// Source is the random source consulted when disease strikes.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewSource returns a Source seeded with the current time.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSource returns a reproducible Source.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}
