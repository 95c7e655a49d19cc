package engine

import "sync/atomic"

// SeqClock issues the logical sequence numbers that order attempts.
// Implemented by Clock (production) and testutil.DeterministicClock (tests).
type SeqClock interface {
	Next() int64
}

// Clock is a monotonic logical clock for attempt ordering.
//
// Attempts are stamped with a strictly increasing seq from this clock, never
// with wall-clock time, so a replayed session produces the same order and
// the same attempt ids.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, a session is driven from one goroutine, so only one caller
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
