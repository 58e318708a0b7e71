package rand

import (
	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
	exprand "golang.org/x/exp/rand"
)

var _ exprand.Source = (*Generator)(nil)

// A Generator is a 64-bit Mersenne Twister. It satisfies the Source interface
// from golang.org/x/exp/rand, so it can drive every distuv distribution. A
// Generator is not safe for concurrent use: each chain owns its own.
type Generator struct {
	mt *mt19937.MT19937
}

// NewGenerator creates a PRNG seeded with the given value
func NewGenerator(seed int64) (*Generator, error) {
	r := mt19937.New()
	r.Seed(seed)
	return &Generator{mt: r}, nil
}

// NewGeneratorSlice creates a PRNG seeded with the reference init_by_array
// procedure. The key must not be empty.
func NewGeneratorSlice(key []uint64) (*Generator, error) {
	if len(key) < 1 {
		return nil, errors.Errorf("Seed key must have at least one value")
	}

	r := mt19937.New()
	r.SeedFromSlice(key)
	return &Generator{mt: r}, nil
}

// Uint64 returns 64 random bits
func (g *Generator) Uint64() uint64 {
	return g.mt.Uint64()
}

// Seed re-seeds the generator (exp/rand Source interface)
func (g *Generator) Seed(seed uint64) {
	g.mt.Seed(int64(seed))
}

// Int63 provides the same interface as Go's math/rand
func (g *Generator) Int63() int64 {
	return g.mt.Int63()
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Float64 returns a uniform value in [0, 1)
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}
