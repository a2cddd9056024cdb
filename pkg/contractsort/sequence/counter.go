// Package sequence hands out per (vendor, document type) ordinals.
package sequence

import (
	"sync"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

type key struct {
	vendor  string
	docType model.DocumentType
}

// Counter assigns strictly increasing ordinals starting at 1. It is safe for
// concurrent use and meant to be shared by every worker of a batch.
type Counter struct {
	mu   sync.Mutex
	next map[key]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{next: make(map[key]int)}
}

// Next increments and returns the ordinal for vendor and docType.
func (c *Counter) Next(vendor string, docType model.DocumentType) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{vendor, docType}
	c.next[k]++
	return c.next[k]
}

// Current returns the last ordinal handed out, 0 when none.
func (c *Counter) Current(vendor string, docType model.DocumentType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next[key{vendor, docType}]
}
