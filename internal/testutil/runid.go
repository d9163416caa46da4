package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDs hands out predictable run IDs for tests.
//
// The given IDs are returned in order; once they are used up the generator
// falls back to "<prefix>-<n>". This keeps golden traces and journal rows
// byte-identical across runs.
//
// Thread-safety: SequentialRunIDs is safe for concurrent use via internal mutex.
type SequentialRunIDs struct {
	mu     sync.Mutex
	ids    []string
	prefix string
	n      int
}

// NewSequentialRunIDs creates a generator returning ids in order, then
// "test-run-<n>".
func NewSequentialRunIDs(ids ...string) *SequentialRunIDs {
	return &SequentialRunIDs{ids: ids, prefix: "test-run"}
}

// Generate returns the next run ID.
func (g *SequentialRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	if g.n <= len(g.ids) {
		return g.ids[g.n-1]
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
