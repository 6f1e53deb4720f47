package wire

import (
	"strconv"
	"sync/atomic"
)

// DefaultIDPrefix marks commands issued by this library.
const DefaultIDPrefix = "hass"

// IDGenerator hands out command ids. Implementations must be safe for
// concurrent use and never return the same id twice.
type IDGenerator interface {
	NextID() string
}

// SequenceGenerator produces "<prefix>-<n>" ids from an atomic counter.
// The first id carries n = 1.
type SequenceGenerator struct {
	prefix string
	seq    atomic.Uint64
}

// NewSequenceGenerator creates a generator. An empty prefix uses DefaultIDPrefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return &SequenceGenerator{prefix: prefix}
}

// NextID increments the counter and formats the id.
func (g *SequenceGenerator) NextID() string {
	n := g.seq.Add(1)
	return g.prefix + "-" + strconv.FormatUint(n, 10)
}

// Last returns the most recently issued sequence number.
func (g *SequenceGenerator) Last() uint64 {
	return g.seq.Load()
}

// Compile-time interface satisfaction check.
var _ IDGenerator = (*SequenceGenerator)(nil)
