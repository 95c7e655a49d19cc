// Package engine implements the headless sorting exercise.
//
// A Session turns a puzzle (zones with accept sets, items with type tags)
// into a scene of positioned elements and answers gestures from two input
// pipelines:
//
//   - pointer: DragStart, DragOver, DragLeave, Drop, DragEnd
//   - touch: TouchStart, TouchMove, TouchEnd (ghost plus hit testing)
//
// Both pipelines end in the same attemptDrop(item, zone) call, so a logical
// drag has one outcome regardless of where it came from. An accepted drop
// moves the item into the zone and bumps PlacedCount; a rejected drop calls
// OnFail and changes nothing. When the last item is placed the session
// becomes complete and OnSuccess runs after the completion delay.
//
// Single-Writer Event Loop:
// Engine wraps a session with a FIFO event queue. Transports enqueue from
// any goroutine; Run applies events one at a time, so the session itself
// needs no locking. Timer callbacks are re-enqueued onto the loop.
//
// Logical Clock:
// Every resolved drop is stamped with a seq from a monotonic clock and gets
// a content-addressed attempt id. Wall-clock time never orders attempts.
package engine
