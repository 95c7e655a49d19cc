package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Item      string // optional - filter to one item
}

// TraceEvent is one attempt in the trace timeline.
type TraceEvent struct {
	Seq         int64       `json:"seq"`
	ID          string      `json:"id"`
	Item        string      `json:"item"`
	ItemType    ir.Tag      `json:"item_type"`
	Zone        string      `json:"zone"`
	Outcome     ir.Outcome  `json:"outcome"`
	Pipeline    ir.Pipeline `json:"pipeline"`
	PlacedCount int64       `json:"placed_count"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	SessionID string       `json:"session_id"`
	Category  string       `json:"category,omitempty"`
	Task      string       `json:"task,omitempty"`
	Timeline  []TraceEvent `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Attempts    int   `json:"attempts"`
	Accepted    int   `json:"accepted"`
	Rejected    int   `json:"rejected"`
	ItemCount   int64 `json:"item_count"`
	PlacedCount int64 `json:"placed_count"`
	IsComplete  bool  `json:"is_complete"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the attempt timeline for a session",
		Long: `Show every recorded drop attempt of a session in order.

The output includes:
- Timeline: each attempt with its item, zone, outcome and pipeline
- Stats: accepted and rejected counts and whether every item was placed

Examples:
  dragsort trace --db ./dragsort.db --session 0192...
  dragsort trace --db ./dragsort.db --session 0192... --item item-2
  dragsort trace --db ./dragsort.db --session 0192... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id to trace (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Item, "item", "", "filter to a single item")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openStore(opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	trace, err := st.ReadTrace(ctx, opts.SessionID)
	if isNotFound(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.SessionID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	result := TraceResult{
		SessionID: trace.Session.ID,
		Category:  trace.Session.CategoryID,
		Task:      trace.Session.TaskID,
		Timeline:  buildTimeline(trace.Attempts, opts.Item),
		Stats: TraceStats{
			Attempts:   len(trace.Attempts),
			Accepted:   trace.Accepted,
			Rejected:   trace.Rejected,
			ItemCount:  trace.Session.ItemCount,
			IsComplete: trace.Complete,
		},
	}
	if n := len(trace.Attempts); n > 0 {
		result.Stats.PlacedCount = trace.Attempts[n-1].PlacedCount
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}

	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTimeline converts attempts to timeline events.
// When itemFilter is set, only that item's attempts are included.
func buildTimeline(attempts []ir.Attempt, itemFilter string) []TraceEvent {
	timeline := make([]TraceEvent, 0, len(attempts))
	for _, a := range attempts {
		if itemFilter != "" && a.ItemID != itemFilter {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:         a.Seq,
			ID:          a.ID,
			Item:        a.ItemID,
			ItemType:    a.ItemType,
			Zone:        a.ZoneID,
			Outcome:     a.Outcome,
			Pipeline:    a.Pipeline,
			PlacedCount: a.PlacedCount,
		})
	}
	return timeline
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status:    "ok",
		Data:      result,
		SessionID: result.SessionID,
	}

	return (&OutputFormatter{Writer: cmd.OutOrStdout()}).Respond(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Session: %s\n", result.SessionID)
	if result.Category != "" {
		fmt.Fprintf(w, "Task: %s/%s\n", result.Category, result.Task)
	}
	fmt.Fprintf(w, "Status: %s\n", completeStatus(result.Stats.IsComplete))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no attempts)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Attempts: %d\n", result.Stats.Attempts)
	fmt.Fprintf(w, "  Accepted: %d\n", result.Stats.Accepted)
	fmt.Fprintf(w, "  Rejected: %d\n", result.Stats.Rejected)
	fmt.Fprintf(w, "  Placed:   %d/%d\n", result.Stats.PlacedCount, result.Stats.ItemCount)

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	fmt.Fprintf(w, "  [%d] %s -> %s %s (%s) placed %d\n",
		event.Seq, event.Item, event.Zone, event.Outcome, event.Pipeline, event.PlacedCount)
	if verbose {
		fmt.Fprintf(w, "       Type: %s\n", event.ItemType)
		fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

// completeStatus returns a human-readable completion status.
func completeStatus(isComplete bool) string {
	if isComplete {
		return "Complete"
	}
	return "Incomplete (items left to place)"
}
