package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/ir"
	"github.com/roach88/dragsort/internal/store"
	"github.com/roach88/dragsort/internal/testutil"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string `json:"session_id"`
	Attempts      int    `json:"attempts"`
	Replayed      int    `json:"replayed"`
	Accepted      int    `json:"accepted"`
	Rejected      int    `json:"rejected"`
	IsComplete    bool   `json:"is_complete"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded sessions and verify outcomes",
		Long: `Replay recorded sessions and verify they resolve the same way.

Each session's stored puzzle is laid out in a fresh session with the same
id. Every recorded attempt is re-driven as a gesture on the pipeline it
was made with, and the resulting attempt (id, seq, outcome and placed
count) must match the recorded one.

Exit codes:
  0 - All sessions replayed identically
  1 - A replayed session diverged from its record
  2 - Command error (database not found, etc.)

Examples:
  dragsort replay --db ./dragsort.db
  dragsort replay --db ./dragsort.db --session 0192...
  dragsort replay --db ./dragsort.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openStore(opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessionIDs []string
	if opts.SessionID != "" {
		sessionIDs = []string{opts.SessionID}
	} else {
		records, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, rec := range records {
			sessionIDs = append(sessionIDs, rec.ID)
		}
	}

	if len(sessionIDs) == 0 {
		if opts.Format == "json" {
			result := ReplayResult{
				Sessions:         []ReplaySessionResult{},
				TotalSessions:    0,
				AllDeterministic: true,
			}
			return outputReplayJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessionIDs)),
		TotalSessions:    len(sessionIDs),
		AllDeterministic: true,
	}

	for _, id := range sessionIDs {
		sessionResult, err := replaySession(ctx, st, id)
		if isNotFound(err) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", id))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		opts.logger().Debug("session replayed",
			"session_id", id,
			"attempts", sessionResult.Attempts,
			"deterministic", sessionResult.Deterministic,
		)

		result.Sessions = append(result.Sessions, sessionResult)
		if !sessionResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

// replaySession re-drives one recorded session and compares attempts.
func replaySession(ctx context.Context, st *store.Store, sessionID string) (ReplaySessionResult, error) {
	trace, err := st.ReadTrace(ctx, sessionID)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	session := engine.NewSession(engine.Mount{}, trace.Session.Puzzle, engine.Hooks{},
		engine.WithSessionID(trace.Session.ID),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithScheduler(testutil.NewManualScheduler()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	eng := engine.New(session)

	result := ReplaySessionResult{
		SessionID:     sessionID,
		Attempts:      len(trace.Attempts),
		Accepted:      trace.Accepted,
		Rejected:      trace.Rejected,
		IsComplete:    trace.Complete,
		Deterministic: true,
	}

	for i, want := range trace.Attempts {
		got, err := redrive(ctx, eng, want)
		if err != nil {
			return ReplaySessionResult{}, fmt.Errorf("attempt %d: %w", want.Seq, err)
		}
		if got == nil {
			result.Deterministic = false
			result.Divergence = fmt.Sprintf("attempt %d (%s -> %s) did not resolve on replay", want.Seq, want.ItemID, want.ZoneID)
			break
		}
		result.Replayed = i + 1
		if d := compareAttempts(want, *got); d != "" {
			result.Deterministic = false
			result.Divergence = fmt.Sprintf("attempt %d: %s", want.Seq, d)
			break
		}
	}

	return result, nil
}

// redrive replays one attempt as the gesture sequence of its pipeline and
// returns the attempt it produced, or nil if the gesture resolved nothing.
func redrive(ctx context.Context, eng *engine.Engine, a ir.Attempt) (*ir.Attempt, error) {
	var events []engine.Event
	switch a.Pipeline {
	case ir.PipelineTouch:
		s := eng.Session()
		ix, iy, ok := s.ItemCenter(a.ItemID)
		if !ok {
			return nil, nil
		}
		zx, zy, ok := s.ZoneCenter(a.ZoneID)
		if !ok {
			return nil, nil
		}
		events = []engine.Event{
			{Type: engine.EventTouchStart, ItemID: a.ItemID, X: ix, Y: iy},
			{Type: engine.EventTouchMove, X: zx, Y: zy},
			{Type: engine.EventTouchEnd},
		}
	default:
		events = []engine.Event{
			{Type: engine.EventDragStart, ItemID: a.ItemID},
			{Type: engine.EventDragOver, ZoneID: a.ZoneID},
			{Type: engine.EventDrop, ZoneID: a.ZoneID},
			{Type: engine.EventDragEnd, ItemID: a.ItemID},
		}
	}

	var produced *ir.Attempt
	for _, ev := range events {
		step, err := eng.Dispatch(ctx, ev)
		if err != nil {
			return nil, err
		}
		if len(step.Attempts) > 0 {
			produced = &step.Attempts[0]
		}
	}
	return produced, nil
}

// compareAttempts describes the first difference between a recorded and
// a replayed attempt. Empty means they match.
func compareAttempts(want, got ir.Attempt) string {
	switch {
	case want.ID != got.ID:
		return fmt.Sprintf("id %s, replayed %s", truncateID(want.ID), truncateID(got.ID))
	case want.Seq != got.Seq:
		return fmt.Sprintf("seq %d, replayed %d", want.Seq, got.Seq)
	case want.Outcome != got.Outcome:
		return fmt.Sprintf("outcome %s, replayed %s", want.Outcome, got.Outcome)
	case want.PlacedCount != got.PlacedCount:
		return fmt.Sprintf("placed count %d, replayed %d", want.PlacedCount, got.PlacedCount)
	case want.Pipeline != got.Pipeline:
		return fmt.Sprintf("pipeline %s, replayed %s", want.Pipeline, got.Pipeline)
	}
	return ""
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "replay diverged from recorded attempts",
		}
	}

	if err := (&OutputFormatter{Writer: cmd.OutOrStdout()}).Respond(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Divergence = exit code 1
		return NewExitError(ExitFailure, "replay diverged from recorded attempts")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Session: %s\n", status, s.SessionID)

		if verbose {
			fmt.Fprintf(w, "  Attempts: %d\n", s.Attempts)
			fmt.Fprintf(w, "  Accepted: %d\n", s.Accepted)
			fmt.Fprintf(w, "  Rejected: %d\n", s.Rejected)
			fmt.Fprintf(w, "  Complete: %v\n", s.IsComplete)
		} else {
			fmt.Fprintf(w, "  Attempts: %d replayed of %d\n", s.Replayed, s.Attempts)
		}

		if !s.Deterministic {
			fmt.Fprintf(w, "  Divergence: %s\n", s.Divergence)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions replayed identically")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay diverged")
	// Divergence = exit code 1
	return NewExitError(ExitFailure, "replay diverged from recorded attempts")
}
