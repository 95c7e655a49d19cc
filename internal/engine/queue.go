package engine

import "sync"

// EventType names a gesture event.
type EventType string

const (
	EventDragStart  EventType = "drag_start"
	EventDragOver   EventType = "drag_over"
	EventDragLeave  EventType = "drag_leave"
	EventDrop       EventType = "drop"
	EventDragEnd    EventType = "drag_end"
	EventTouchStart EventType = "touch_start"
	EventTouchMove  EventType = "touch_move"
	EventTouchEnd   EventType = "touch_end"

	// eventDeferred carries a scheduler callback back onto the loop.
	eventDeferred EventType = "deferred"
)

// Event is one gesture delivered to a session.
type Event struct {
	Type   EventType `json:"type"`
	ItemID string    `json:"item,omitempty"`
	ZoneID string    `json:"zone,omitempty"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`

	deferred func()
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so transport readers never block on a busy loop.
// It uses a channel for signaling to enable context-aware waiting in the
// Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking; the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	// Drop the slot's callback reference so the backing array does not pin it.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
