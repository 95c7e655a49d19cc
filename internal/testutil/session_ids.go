package testutil

import (
	"fmt"
	"sync"
)

// FixedSessionIDs generates predictable session ids for tests.
//
// The first id is the configured one (or "test-session-default"); later
// calls append a counter so concurrent sessions in one test stay distinct.
// The same scenario with the same FixedSessionIDs produces byte-identical
// attempt traces.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedSessionIDs struct {
	mu    sync.Mutex
	id    string
	count int
}

// NewFixedSessionIDs creates a generator whose first id is id.
//
// The id is typically set in the scenario YAML:
//
//	session_id: "test-session-00000000-0000-0000-0000-000000000001"
func NewFixedSessionIDs(id string) *FixedSessionIDs {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionIDs{id: id}
}

// Generate returns the next session id.
//
// Implements engine.SessionIDGenerator interface.
func (g *FixedSessionIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count++
	if g.count == 1 {
		return g.id
	}
	return fmt.Sprintf("%s-%d", g.id, g.count)
}
