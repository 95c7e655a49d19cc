package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/dragsort/internal/ir"
)

// AttemptRecorder persists resolved drops. Implemented by store.Store.
type AttemptRecorder interface {
	WriteAttempt(ctx context.Context, a ir.Attempt) error
}

// Step is the result of applying one event, passed to the observer.
type Step struct {
	Event   Event
	Outcome ir.Outcome
	// Handled is true when the platform default must be suppressed
	// (drag_over on a zone, touch_move during a gesture).
	Handled bool
	// Attempts lists the drops this event resolved.
	Attempts []ir.Attempt
}

// Engine is the single-writer event loop in front of one Session.
//
// Transports enqueue gesture events from any goroutine; Run applies them
// to the session one at a time. Completion callbacks scheduled by the
// session are routed back onto the loop, so hooks, sound and the observer
// all run on the Run goroutine.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Dispatch(), Drain(): only from the Run goroutine, or instead of Run
type Engine struct {
	session  *Session
	queue    *eventQueue
	recorder AttemptRecorder
	observer func(Step)
	recorded int // attempts already handed to the recorder
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithRecorder persists every new attempt after the event that resolved it.
func WithRecorder(r AttemptRecorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithObserver is called after every applied event, on the loop goroutine.
func WithObserver(fn func(Step)) EngineOption {
	return func(e *Engine) { e.observer = fn }
}

// New wraps a session in an event loop.
//
// The session's scheduler is wrapped so that due callbacks are enqueued as
// deferred events instead of running on the scheduler's goroutine.
func New(session *Session, opts ...EngineOption) *Engine {
	e := &Engine{
		session: session,
		queue:   newEventQueue(),
	}
	for _, opt := range opts {
		opt(e)
	}
	session.scheduler = loopScheduler{inner: session.scheduler, engine: e}
	return e
}

// loopScheduler defers to the inner scheduler for timing and to the event
// queue for execution.
type loopScheduler struct {
	inner  Scheduler
	engine *Engine
}

func (l loopScheduler) AfterFunc(d time.Duration, fn func()) {
	l.inner.AfterFunc(d, func() {
		if !l.engine.queue.Enqueue(Event{Type: eventDeferred, deferred: fn}) {
			l.engine.session.logger.Debug("deferred callback dropped: engine stopped")
		}
	})
}

// Session returns the session the engine drives.
func (e *Engine) Session() *Session { return e.session }

// Enqueue submits an event for processing by the Run loop.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// QueueLen returns the current number of pending events.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Run starts the event loop and blocks until the context is cancelled or
// Stop() is called.
//
// On event failure the error is logged with the event and processing
// continues; a malformed gesture never ends the session.
func (e *Engine) Run(ctx context.Context) error {
	log := e.session.logger
	log.Info("engine starting")

	for {
		ev, ok := e.queue.TryDequeue()
		if ok {
			if _, err := e.Dispatch(ctx, ev); err != nil {
				log.Warn("event failed",
					"type", ev.Type,
					"item", ev.ItemID,
					"zone", ev.ZoneID,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			log.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A closed queue keeps its signal channel readable; stop once
			// it has been drained.
			if e.queue.Closed() && e.queue.Len() == 0 {
				log.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain dispatches the queued events synchronously until the queue is
// empty, stopping at the first failure. Use it instead of Run when the
// caller drives the engine step by step.
func (e *Engine) Drain(ctx context.Context) ([]Step, error) {
	var steps []Step
	for {
		ev, ok := e.queue.TryDequeue()
		if !ok {
			return steps, nil
		}
		step, err := e.Dispatch(ctx, ev)
		steps = append(steps, step)
		if err != nil {
			return steps, err
		}
	}
}

// Stop closes the event queue, which makes Run return once it is idle.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Dispatch applies one event to the session synchronously.
//
// Events naming items or zones the puzzle does not contain are rejected
// with a GestureError and leave the session untouched.
func (e *Engine) Dispatch(ctx context.Context, ev Event) (Step, error) {
	s := e.session
	step := Step{Event: ev, Outcome: ir.OutcomeNone}

	switch ev.Type {
	case EventDragStart, EventDragEnd, EventTouchStart:
		if err := e.checkItem(ev); err != nil {
			return step, err
		}
	case EventDragOver, EventDragLeave, EventDrop:
		if err := e.checkZone(ev); err != nil {
			return step, err
		}
	case EventTouchMove, EventTouchEnd:
	case eventDeferred:
		if ev.deferred == nil {
			return step, newGestureError(ErrCodeUnknownEvent, ev, "", "deferred event without callback")
		}
	default:
		return step, newGestureError(ErrCodeUnknownEvent, ev, "", "unknown event type %q", ev.Type)
	}

	switch ev.Type {
	case EventDragStart:
		s.DragStart(ev.ItemID)
	case EventDragOver:
		step.Handled = s.DragOver(ev.ZoneID)
	case EventDragLeave:
		s.DragLeave(ev.ZoneID)
	case EventDrop:
		step.Outcome = s.Drop(ev.ZoneID)
	case EventDragEnd:
		s.DragEnd(ev.ItemID)
	case EventTouchStart:
		s.TouchStart(ev.ItemID, ev.X, ev.Y)
	case EventTouchMove:
		step.Handled = s.TouchMove(ev.X, ev.Y)
	case EventTouchEnd:
		step.Outcome = s.TouchEnd()
	case eventDeferred:
		ev.deferred()
	}

	step.Attempts = append([]ir.Attempt(nil), s.attempts[e.recorded:]...)
	e.recorded = len(s.attempts)

	var recordErr error
	if e.recorder != nil {
		for _, a := range step.Attempts {
			if err := e.recorder.WriteAttempt(ctx, a); err != nil {
				recordErr = fmt.Errorf("record attempt %s: %w", a.ID, err)
				break
			}
		}
	}

	if e.observer != nil {
		e.observer(step)
	}
	return step, recordErr
}

func (e *Engine) checkItem(ev Event) error {
	if ev.ItemID == "" {
		return newGestureError(ErrCodeMissingField, ev, "", "item id is required")
	}
	if !e.session.HasItem(ev.ItemID) {
		return newGestureError(ErrCodeUnknownItem, ev, ev.ItemID, "item not in puzzle")
	}
	return nil
}

func (e *Engine) checkZone(ev Event) error {
	if ev.ZoneID == "" {
		return newGestureError(ErrCodeMissingField, ev, "", "zone id is required")
	}
	if !e.session.HasZone(ev.ZoneID) {
		return newGestureError(ErrCodeUnknownZone, ev, ev.ZoneID, "zone not in puzzle")
	}
	return nil
}
