package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionIDs_FirstIDIsConfigured(t *testing.T) {
	gen := NewFixedSessionIDs("test-session-123")

	assert.Equal(t, "test-session-123", gen.Generate())
	assert.Equal(t, "test-session-123-2", gen.Generate())
	assert.Equal(t, "test-session-123-3", gen.Generate())
}

func TestFixedSessionIDs_EmptyIDDefault(t *testing.T) {
	gen := NewFixedSessionIDs("")

	assert.Equal(t, "test-session-default", gen.Generate())
}

func TestFixedSessionIDs_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionIDs("ts")

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000, "every generated id should be unique")
}
