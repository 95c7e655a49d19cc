package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/dragsort/internal/compiler"
	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/ir"
	"github.com/roach88/dragsort/internal/store"
	"github.com/roach88/dragsort/internal/testutil"
)

// Harness is the test execution engine.
// It plays one scenario through a real Engine with a deterministic clock,
// a fixed session id and a manual scheduler.
type Harness struct {
	store     *store.Store
	engine    *engine.Engine
	session   *engine.Session
	scheduler *testutil.ManualScheduler
	logger    *slog.Logger
	result    *Result

	step   int // current 1-based step, stamped on trace events
	traced int // attempts already copied into the trace
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Resolve the puzzle (inline or from a catalogue task)
// 2. Create fresh in-memory database and session record
// 3. Play steps through the engine, checking step expectations
// 4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	puzzle, rec, err := resolvePuzzle(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:     st,
		scheduler: testutil.NewManualScheduler(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result:    NewResult(),
	}

	opts := []engine.Option{
		engine.WithSessionID(testutil.NewFixedSessionIDs(scenario.SessionID).Generate()),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithScheduler(h.scheduler),
		engine.WithLogger(h.logger),
	}
	if scenario.CompletionDelay > 0 {
		opts = append(opts, engine.WithCompletionDelay(scenario.CompletionDelay))
	}
	h.session = engine.NewSession(scenario.Mount, puzzle, engine.Hooks{
		OnFail:    func() { h.hook(TraceFail) },
		OnSuccess: func() { h.hook(TraceSuccess) },
	}, opts...)
	h.result.SessionID = h.session.ID()

	ctx := context.Background()

	rec.ID = h.session.ID()
	rec.ItemCount = h.session.ItemCount()
	if err := st.WriteSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}

	h.engine = engine.New(h.session,
		engine.WithRecorder(st),
		engine.WithObserver(func(engine.Step) { h.syncAttempts() }),
	)

	for i, step := range scenario.Steps {
		h.step = i + 1
		if err := h.executeStep(ctx, step); err != nil {
			h.result.AddError(fmt.Sprintf("step %d (%s): %v", h.step, step.Action, err))
		}
	}

	if err := h.collectFinal(ctx); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

// resolvePuzzle returns the scenario's puzzle and a partly filled session record.
func resolvePuzzle(scenario *Scenario) (ir.Puzzle, ir.SessionRecord, error) {
	var puzzle ir.Puzzle
	var rec ir.SessionRecord

	if scenario.Puzzle != nil {
		puzzle = *scenario.Puzzle
	} else {
		cat, err := compiler.LoadCatalogue(scenario.Catalogue)
		if err != nil {
			return ir.Puzzle{}, rec, fmt.Errorf("failed to load catalogue: %w", err)
		}
		task, ok := cat.Task(scenario.Category, scenario.Task)
		if !ok {
			return ir.Puzzle{}, rec, fmt.Errorf("task %s/%s not found in catalogue", scenario.Category, scenario.Task)
		}
		if task.Puzzle == nil {
			return ir.Puzzle{}, rec, fmt.Errorf("task %s/%s has template %q, which is not sortable", task.CategoryID, task.ID, task.Template)
		}
		puzzle = *task.Puzzle
		rec.CategoryID = task.CategoryID
		rec.TaskID = task.ID
	}

	hash, err := ir.PuzzleHash(puzzle)
	if err != nil {
		return ir.Puzzle{}, rec, fmt.Errorf("failed to hash puzzle: %w", err)
	}
	rec.Puzzle = puzzle
	rec.PuzzleHash = hash
	return puzzle, rec, nil
}

// executeStep dispatches the events for one step and checks its expectations.
func (h *Harness) executeStep(ctx context.Context, step Step) error {
	if step.Action == ActionWait {
		fired := h.scheduler.Advance(step.Duration)
		if _, err := h.engine.Drain(ctx); err != nil {
			return err
		}
		h.logger.Info("wait step completed", "step", h.step, "duration", step.Duration, "fired", fired)
		return h.checkHighlighted(step)
	}

	events, err := h.events(step)
	if err != nil {
		return err
	}

	outcome := ir.OutcomeNone
	for _, ev := range events {
		st, err := h.engine.Dispatch(ctx, ev)
		if err != nil {
			return err
		}
		if ev.Type == engine.EventDrop || ev.Type == engine.EventTouchEnd {
			outcome = st.Outcome
		}
	}

	if step.Expect != "" && step.Expect != outcome {
		return fmt.Errorf("expected outcome %s, got %s", step.Expect, outcome)
	}

	h.logger.Info("step completed",
		"step", h.step,
		"action", step.Action,
		"item", step.Item,
		"zone", step.Zone,
		"outcome", outcome,
	)
	return h.checkHighlighted(step)
}

// events expands a step into engine events. Composite touch gestures
// start at the item's centre and move to the zone's centre.
func (h *Harness) events(step Step) ([]engine.Event, error) {
	switch step.Action {
	case ActionDragStart:
		return []engine.Event{{Type: engine.EventDragStart, ItemID: step.Item}}, nil
	case ActionDragOver:
		return []engine.Event{{Type: engine.EventDragOver, ZoneID: step.Zone}}, nil
	case ActionDragLeave:
		return []engine.Event{{Type: engine.EventDragLeave, ZoneID: step.Zone}}, nil
	case ActionDrop:
		return []engine.Event{{Type: engine.EventDrop, ZoneID: step.Zone}}, nil
	case ActionDragEnd:
		return []engine.Event{{Type: engine.EventDragEnd, ItemID: step.Item}}, nil
	case ActionTouchStart:
		x, y, err := h.startPoint(step)
		if err != nil {
			return nil, err
		}
		return []engine.Event{{Type: engine.EventTouchStart, ItemID: step.Item, X: x, Y: y}}, nil
	case ActionTouchMove:
		x, y, err := h.movePoint(step)
		if err != nil {
			return nil, err
		}
		return []engine.Event{{Type: engine.EventTouchMove, X: x, Y: y}}, nil
	case ActionTouchEnd:
		return []engine.Event{{Type: engine.EventTouchEnd}}, nil
	case ActionDrag:
		return []engine.Event{
			{Type: engine.EventDragStart, ItemID: step.Item},
			{Type: engine.EventDragOver, ZoneID: step.Zone},
			{Type: engine.EventDrop, ZoneID: step.Zone},
			{Type: engine.EventDragEnd, ItemID: step.Item},
		}, nil
	case ActionTouch:
		sx, sy, err := h.startPoint(Step{Item: step.Item})
		if err != nil {
			return nil, err
		}
		mx, my, err := h.movePoint(step)
		if err != nil {
			return nil, err
		}
		return []engine.Event{
			{Type: engine.EventTouchStart, ItemID: step.Item, X: sx, Y: sy},
			{Type: engine.EventTouchMove, X: mx, Y: my},
			{Type: engine.EventTouchEnd},
		}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
}

// startPoint is the explicit x/y, else the item's centre. A placed or
// unknown item has no centre; the touch starts at the origin and the
// session ignores it.
func (h *Harness) startPoint(step Step) (float64, float64, error) {
	if step.X != nil && step.Y != nil {
		return *step.X, *step.Y, nil
	}
	x, y, _ := h.session.ItemCenter(step.Item)
	return x, y, nil
}

// movePoint is the zone's centre when a zone is named, else the explicit x/y.
func (h *Harness) movePoint(step Step) (float64, float64, error) {
	if step.Zone != "" {
		x, y, ok := h.session.ZoneCenter(step.Zone)
		if !ok {
			return 0, 0, fmt.Errorf("zone %q not in puzzle", step.Zone)
		}
		return x, y, nil
	}
	return *step.X, *step.Y, nil
}

func (h *Harness) checkHighlighted(step Step) error {
	if step.Highlighted == nil {
		return nil
	}
	want := slices.Clone(step.Highlighted)
	got := h.session.Highlighted()
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("expected highlighted %v, got %v", want, got)
	}
	return nil
}

// hook records a fail or success firing. Attempts resolved by the same
// event are traced first, so a rejection precedes its fail event.
func (h *Harness) hook(kind string) {
	h.syncAttempts()
	switch kind {
	case TraceFail:
		h.result.Final.FailCount++
	case TraceSuccess:
		h.result.Final.SuccessCount++
	}
	h.result.AddHookTrace(kind, h.step, h.session.PlacedCount())
}

// syncAttempts copies attempts not yet traced from the session.
func (h *Harness) syncAttempts() {
	attempts := h.session.Attempts()
	for _, a := range attempts[h.traced:] {
		h.result.AddAttemptTrace(h.step, a)
	}
	h.traced = len(attempts)
}

// collectFinal fills the final state and cross-checks the recorded trace.
func (h *Harness) collectFinal(ctx context.Context) error {
	h.syncAttempts()

	final := &h.result.Final
	final.PlacedCount = h.session.PlacedCount()
	final.ItemCount = h.session.ItemCount()
	final.Complete = h.session.Complete()
	final.Highlighted = h.session.Highlighted()

	trace, err := h.store.ReadTrace(ctx, h.session.ID())
	if err != nil {
		return fmt.Errorf("failed to read recorded trace: %w", err)
	}
	final.Recorded = len(trace.Attempts)

	if !slices.Equal(trace.Attempts, h.session.Attempts()) {
		h.result.AddError(fmt.Sprintf("recorded trace diverges from session: %d recorded, %d resolved",
			len(trace.Attempts), len(h.session.Attempts())))
	}
	return nil
}
