package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
)

func hotColdScenario(steps ...Step) *Scenario {
	placed := int64(0)
	return &Scenario{
		Name:        "hot_cold",
		Description: "two zones",
		Puzzle: &ir.Puzzle{
			Zones: []ir.Zone{
				{ID: "hot", Label: "Hot", Accept: ir.Tags("hot")},
				{ID: "cold", Label: "Cold", Accept: ir.Tags("cold")},
			},
			Items: []ir.Item{
				{Type: "hot", Content: "☀️"},
				{Type: "cold", Content: "🧊"},
			},
		},
		Steps:      steps,
		Assertions: Assertions{PlacedCount: &placed},
	}
}

func ptr[T any](v T) *T { return &v }

func TestRun_PointerSortingCompletes(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrag, Item: "item-0", Zone: "hot", Expect: ir.OutcomeAccepted},
		Step{Action: ActionDrag, Item: "item-1", Zone: "hot", Expect: ir.OutcomeRejected},
		Step{Action: ActionDrag, Item: "item-1", Zone: "cold", Expect: ir.OutcomeAccepted},
		Step{Action: ActionWait, Duration: 500 * time.Millisecond},
	)
	s.Assertions = Assertions{
		PlacedCount:  ptr(int64(2)),
		SuccessCount: ptr(1),
		FailCount:    ptr(1),
		Complete:     ptr(true),
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "test-session-default", result.SessionID)
	assert.Equal(t, []ir.Outcome{ir.OutcomeAccepted, ir.OutcomeRejected, ir.OutcomeAccepted}, result.Outcomes())
	assert.Equal(t, 3, result.Final.Recorded)
	assert.Equal(t, int64(2), result.Final.ItemCount)
}

func TestRun_SuccessWaitsForFullDelay(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrag, Item: "item-0", Zone: "hot"},
		Step{Action: ActionDrag, Item: "item-1", Zone: "cold"},
		Step{Action: ActionWait, Duration: 499 * time.Millisecond},
	)
	s.Assertions = Assertions{SuccessCount: ptr(0), Complete: ptr(true)}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	s.Steps = append(s.Steps, Step{Action: ActionWait, Duration: time.Millisecond})
	s.Assertions = Assertions{SuccessCount: ptr(1)}

	result, err = Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, TraceSuccess, last.Type)
	assert.Equal(t, 4, last.Step)
}

func TestRun_CustomCompletionDelay(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrag, Item: "item-0", Zone: "hot"},
		Step{Action: ActionDrag, Item: "item-1", Zone: "cold"},
		Step{Action: ActionWait, Duration: 100 * time.Millisecond},
	)
	s.CompletionDelay = 100 * time.Millisecond
	s.Assertions = Assertions{SuccessCount: ptr(1)}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_RejectionPrecedesFail(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrag, Item: "item-1", Zone: "hot", Expect: ir.OutcomeRejected},
	)

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, TraceAttempt, result.Trace[0].Type)
	assert.Equal(t, ir.OutcomeRejected, result.Trace[0].Outcome)
	assert.Equal(t, TraceFail, result.Trace[1].Type)
	assert.Equal(t, 1, result.Trace[1].Step)
	assert.Equal(t, 1, result.Final.FailCount)
}

func TestRun_TouchMatchesPointer(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionTouch, Item: "item-0", Zone: "hot", Expect: ir.OutcomeAccepted},
		Step{Action: ActionTouch, Item: "item-1", Zone: "hot", Expect: ir.OutcomeRejected},
	)
	s.Assertions = Assertions{PlacedCount: ptr(int64(1)), FailCount: ptr(1), NoHighlight: true}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, ir.PipelineTouch, result.Trace[0].Pipeline)
}

func TestRun_StaleDropIsSilent(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrop, Zone: "hot", Expect: ir.OutcomeNone},
	)
	s.Assertions = Assertions{PlacedCount: ptr(int64(0)), FailCount: ptr(0)}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Trace)
	assert.Equal(t, 0, result.Final.Recorded)
}

func TestRun_ExpectationMismatchFails(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrag, Item: "item-1", Zone: "hot", Expect: ir.OutcomeAccepted},
	)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "step 1 (drag)")
	assert.Contains(t, result.Errors[0], "expected outcome accepted, got rejected")
}

func TestRun_HighlightMismatchFails(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDragOver, Zone: "hot", Highlighted: []string{"cold"}},
	)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected highlighted [cold], got [hot]")
}

func TestRun_UnknownItemIsStepError(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDragStart, Item: "item-9"},
	)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "step 1 (drag_start)")
}

func TestRun_AssertionFailureReported(t *testing.T) {
	s := hotColdScenario(
		Step{Action: ActionDrag, Item: "item-0", Zone: "hot"},
	)
	s.Assertions = Assertions{PlacedCount: ptr(int64(2))}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: placed_count")
}

func TestRun_CatalogueTask(t *testing.T) {
	s := &Scenario{
		Name:        "catalogue",
		Description: "even/odd",
		Catalogue:   "../../testdata/catalogue",
		Category:    "math_compare",
		Task:        "cmp_sort_01",
		Steps: []Step{
			{Action: ActionDrag, Item: "item-0", Zone: "even", Expect: ir.OutcomeAccepted},
			{Action: ActionDrag, Item: "item-1", Zone: "even", Expect: ir.OutcomeRejected},
		},
		Assertions: Assertions{PlacedCount: ptr(int64(1))},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, int64(4), result.Final.ItemCount)
}

func TestRun_CatalogueErrors(t *testing.T) {
	base := Scenario{
		Name:        "catalogue",
		Description: "errors",
		Catalogue:   "../../testdata/catalogue",
		Steps:       []Step{{Action: ActionDrop, Zone: "x"}},
		Assertions:  Assertions{PlacedCount: ptr(int64(0))},
	}

	t.Run("unknown task", func(t *testing.T) {
		s := base
		s.Category, s.Task = "math_compare", "nope"
		_, err := Run(&s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in catalogue")
	})

	t.Run("not sortable", func(t *testing.T) {
		s := base
		s.Category, s.Task = "logic_patterns", "pat_02"
		_, err := Run(&s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not sortable")
	})

	t.Run("missing directory", func(t *testing.T) {
		s := base
		s.Catalogue = t.TempDir()
		s.Category, s.Task = "math_compare", "cmp_sort_01"
		_, err := Run(&s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load catalogue")
	})
}
