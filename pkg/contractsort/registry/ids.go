package registry

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// IDGenerator issues lexically sortable tracking IDs.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDGenerator creates a generator with monotonic entropy.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a new tracking ID.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}
