package harness

import "github.com/roach88/dragsort/internal/ir"

// Trace event types.
const (
	TraceAttempt = "attempt"
	TraceFail    = "fail"
	TraceSuccess = "success"
)

// TraceEvent is one entry of a scenario trace: a resolved drop or a hook
// firing. Step is the 1-based scenario step that produced it.
type TraceEvent struct {
	Type     string      `json:"type"`
	Step     int         `json:"step"`
	Seq      int64       `json:"seq,omitempty"`
	Item     string      `json:"item,omitempty"`
	ItemType string      `json:"item_type,omitempty"`
	Zone     string      `json:"zone,omitempty"`
	Outcome  ir.Outcome  `json:"outcome,omitempty"`
	Pipeline ir.Pipeline `json:"pipeline,omitempty"`
	Placed   int64       `json:"placed"`
}

// FinalState is the session state after the last step.
type FinalState struct {
	PlacedCount  int64    `json:"placed_count"`
	ItemCount    int64    `json:"item_count"`
	SuccessCount int      `json:"success_count"`
	FailCount    int      `json:"fail_count"`
	Complete     bool     `json:"complete"`
	Highlighted  []string `json:"highlighted,omitempty"`
	Recorded     int      `json:"recorded"` // attempts read back from the store
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion matched.
	Pass bool `json:"pass"`

	// SessionID is the id stamped on every attempt.
	SessionID string `json:"session_id"`

	// Trace contains attempts and hook firings in order.
	// Used for assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the end state of the session.
	Final FinalState `json:"final"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddAttemptTrace adds a resolved drop to the trace.
func (r *Result) AddAttemptTrace(step int, a ir.Attempt) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     TraceAttempt,
		Step:     step,
		Seq:      a.Seq,
		Item:     a.ItemID,
		ItemType: string(a.ItemType),
		Zone:     a.ZoneID,
		Outcome:  a.Outcome,
		Pipeline: a.Pipeline,
		Placed:   a.PlacedCount,
	})
}

// AddHookTrace adds a fail or success hook firing to the trace.
func (r *Result) AddHookTrace(kind string, step int, placed int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   kind,
		Step:   step,
		Placed: placed,
	})
}

// Outcomes returns the outcomes of the traced attempts in order.
func (r *Result) Outcomes() []ir.Outcome {
	var out []ir.Outcome
	for _, ev := range r.Trace {
		if ev.Type == TraceAttempt {
			out = append(out, ev.Outcome)
		}
	}
	return out
}
