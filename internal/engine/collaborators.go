package engine

import (
	"time"
)

// Hooks are the callbacks the surrounding application receives.
// Either may be nil.
type Hooks struct {
	// OnSuccess runs once, CompletionDelay after the last item is placed.
	OnSuccess func()
	// OnFail runs once per rejected drop.
	OnFail func()
}

// Sound plays feedback effects. Playback is fire-and-forget: errors and
// panics are logged and never reach the session.
type Sound interface {
	PlayClick() error
}

// Scheduler runs fn once after d.
// Implemented by timerScheduler (production) and testutil.ManualScheduler (tests).
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// timerScheduler runs callbacks on their own goroutine via time.AfterFunc.
// Sessions driven by an Engine never see it directly: the engine routes
// callbacks back onto its loop.
type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// DefaultCompletionDelay lets the last placement animation finish before
// OnSuccess fires.
const DefaultCompletionDelay = 500 * time.Millisecond
