package testutil

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a virtual-time scheduler for tests.
//
// Callbacks registered with AfterFunc fire only when Advance moves virtual
// time past their due time, so completion delays can be asserted without
// sleeping. Callbacks run synchronously on the goroutine calling Advance.
//
// Implements engine.Scheduler interface.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending []pendingCall
}

type pendingCall struct {
	id  int
	due time.Duration
	fn  func()
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers fn to run once virtual time reaches now+d.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.pending = append(s.pending, pendingCall{id: s.nextID, due: s.now + d, fn: fn})
}

// Advance moves virtual time forward by d and runs every callback that
// became due, ordered by due time then registration order.
// Returns the number of callbacks fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	var due, rest []pendingCall
	for _, c := range s.pending {
		if c.due <= s.now {
			due = append(due, c)
		} else {
			rest = append(rest, c)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})

	// Run outside the lock; callbacks may schedule more work.
	for _, c := range due {
		c.fn()
	}
	return len(due)
}

// Pending returns the number of callbacks not yet fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Now returns the current virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
