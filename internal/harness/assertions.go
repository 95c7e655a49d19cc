package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion name for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, ev := range e.Trace {
			if ev.Type == TraceAttempt {
				fmt.Fprintf(&buf, "  [%d] step %d: %s -> %s %s (placed %d)\n",
					i+1, ev.Step, ev.Item, ev.Zone, ev.Outcome, ev.Placed)
			} else {
				fmt.Fprintf(&buf, "  [%d] step %d: %s\n", i+1, ev.Step, ev.Type)
			}
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every set assertion against the result and
// returns the failure messages. All assertions are evaluated.
func EvaluateAssertions(r *Result, a Assertions) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	final := r.Final
	if a.PlacedCount != nil {
		add(assertEqual("placed_count", *a.PlacedCount, final.PlacedCount, r.Trace))
	}
	if a.SuccessCount != nil {
		add(assertEqual("success_count", *a.SuccessCount, final.SuccessCount, r.Trace))
	}
	if a.FailCount != nil {
		add(assertEqual("fail_count", *a.FailCount, final.FailCount, r.Trace))
	}
	if a.Complete != nil {
		add(assertEqual("complete", *a.Complete, final.Complete, r.Trace))
	}
	if a.Outcomes != nil {
		got := r.Outcomes()
		if !slices.Equal(a.Outcomes, got) {
			add(&AssertionError{
				Type:     "outcomes",
				Expected: fmt.Sprintf("%v", a.Outcomes),
				Actual:   fmt.Sprintf("%v", got),
				Trace:    r.Trace,
			})
		}
	}
	if a.NoHighlight && len(final.Highlighted) > 0 {
		add(&AssertionError{
			Type:     "no_highlight",
			Expected: "no highlighted zone",
			Actual:   fmt.Sprintf("highlighted %v", final.Highlighted),
		})
	}

	return errs
}

func assertEqual[T comparable](name string, want, got T, trace []TraceEvent) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     name,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    trace,
	}
}
