package engine

import (
	"errors"
	"fmt"
)

// GestureError reports a gesture event the engine could not apply.
//
// Gesture errors never change session state. The event loop logs them and
// continues with the next event.
type GestureError struct {
	// Code identifies the error category.
	Code GestureErrorCode

	// Message is a human-readable description.
	Message string

	// EventType is the type of the rejected event.
	EventType EventType

	// Ref is the item or zone id the event referred to, if any.
	Ref string
}

// GestureErrorCode categorizes gesture errors.
type GestureErrorCode string

const (
	// ErrCodeUnknownEvent indicates an event type the engine does not handle.
	ErrCodeUnknownEvent GestureErrorCode = "UNKNOWN_EVENT"

	// ErrCodeMissingField indicates an event without a required item or zone id.
	ErrCodeMissingField GestureErrorCode = "MISSING_FIELD"

	// ErrCodeUnknownItem indicates an item id that is not part of the puzzle.
	ErrCodeUnknownItem GestureErrorCode = "UNKNOWN_ITEM"

	// ErrCodeUnknownZone indicates a zone id that is not part of the puzzle.
	ErrCodeUnknownZone GestureErrorCode = "UNKNOWN_ZONE"
)

// Error implements the error interface.
func (e *GestureError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %s (event=%s, ref=%s)", e.Code, e.Message, e.EventType, e.Ref)
	}
	return fmt.Sprintf("%s: %s (event=%s)", e.Code, e.Message, e.EventType)
}

// IsGestureError reports whether err is a GestureError with the given code.
// Uses errors.As to handle wrapped errors.
func IsGestureError(err error, code GestureErrorCode) bool {
	var ge *GestureError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

func newGestureError(code GestureErrorCode, ev Event, ref, format string, args ...any) *GestureError {
	return &GestureError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		EventType: ev.Type,
		Ref:       ref,
	}
}
