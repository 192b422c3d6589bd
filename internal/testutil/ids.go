package testutil

import (
	"fmt"
	"sync"
)

// CountingIDs generates ids of the form "<prefix>-0001", "<prefix>-0002", ...
//
// Ids sort in creation order, like the UUIDv7 ids used in production.
// If prefix is empty, "gym" is used.
//
// Thread-safety: safe for concurrent use.
type CountingIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCountingIDs creates a counting generator.
func NewCountingIDs(prefix string) *CountingIDs {
	if prefix == "" {
		prefix = "gym"
	}
	return &CountingIDs{prefix: prefix}
}

// NewID returns the next id.
func (g *CountingIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
