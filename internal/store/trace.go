package store

import (
	"context"
	"fmt"

	"github.com/roach88/dragsort/internal/ir"
)

// SessionTrace is a session record with its attempts and derived counts.
type SessionTrace struct {
	Session  ir.SessionRecord
	Attempts []ir.Attempt
	Accepted int
	Rejected int
	LastSeq  int64
	Complete bool // True if the accepted attempts placed every item
}

// ReadTrace loads a session and its attempts for the trace and replay commands.
// The trace is an audit record; it is never used to resume a session.
func (s *Store) ReadTrace(ctx context.Context, sessionID string) (SessionTrace, error) {
	rec, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return SessionTrace{}, fmt.Errorf("read trace: %w", err)
	}

	attempts, err := s.ReadAttempts(ctx, sessionID)
	if err != nil {
		return SessionTrace{}, fmt.Errorf("read trace: %w", err)
	}

	trace := SessionTrace{Session: rec, Attempts: attempts}
	for _, a := range attempts {
		switch a.Outcome {
		case ir.OutcomeAccepted:
			trace.Accepted++
		case ir.OutcomeRejected:
			trace.Rejected++
		}
		if a.Seq > trace.LastSeq {
			trace.LastSeq = a.Seq
		}
	}
	trace.Complete = rec.ItemCount > 0 && int64(trace.Accepted) == rec.ItemCount

	return trace, nil
}

// GetLastSeq returns the highest attempt seq recorded for a session.
// Returns 0 when the session has no attempts.
func (s *Store) GetLastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM attempts WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}
