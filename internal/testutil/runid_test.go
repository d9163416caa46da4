package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialRunIDs_GivenThenFallback(t *testing.T) {
	g := NewSequentialRunIDs("alpha", "beta")

	assert.Equal(t, "alpha", g.Generate())
	assert.Equal(t, "beta", g.Generate())
	assert.Equal(t, "test-run-3", g.Generate())
}

func TestSequentialRunIDs_ConcurrentUnique(t *testing.T) {
	g := NewSequentialRunIDs()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
