package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
	"github.com/roach88/dragsort/internal/testutil"
)

// hotColdPuzzle is the two-zone puzzle used throughout the engine tests.
func hotColdPuzzle() ir.Puzzle {
	return ir.Puzzle{
		Zones: []ir.Zone{
			{ID: "hot", Label: "Hot", Icon: "🔥", Accept: ir.Tags("hot")},
			{ID: "cold", Label: "Cold", Icon: "❄️", Accept: ir.Tags("cold")},
		},
		Items: []ir.Item{
			{Type: "hot", Content: "☀️"},
			{Type: "cold", Content: "🧊"},
		},
	}
}

type callCounts struct {
	success int
	fail    int
}

func (c *callCounts) hooks() Hooks {
	return Hooks{
		OnSuccess: func() { c.success++ },
		OnFail:    func() { c.fail++ },
	}
}

type fixture struct {
	session *Session
	calls   *callCounts
	sched   *testutil.ManualScheduler
}

func newFixture(t *testing.T, p ir.Puzzle, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		calls: &callCounts{},
		sched: testutil.NewManualScheduler(),
	}
	base := []Option{
		WithScheduler(f.sched),
		WithSessionID("test-session"),
		WithClock(testutil.NewDeterministicClock()),
	}
	f.session = NewSession(Mount{Width: 1024, Height: 768}, p, f.calls.hooks(), append(base, opts...)...)
	require.NotNil(t, f.session)
	return f
}

// pointerDrag performs a complete pointer drag of item onto zone.
func pointerDrag(s *Session, itemID, zoneID string) ir.Outcome {
	s.DragStart(itemID)
	s.DragOver(zoneID)
	out := s.Drop(zoneID)
	s.DragEnd(itemID)
	return out
}

// touchDrag performs a touch drag from the item's centre to the zone's centre.
func touchDrag(t *testing.T, s *Session, itemID, zoneID string) ir.Outcome {
	t.Helper()
	x, y, ok := s.ItemCenter(itemID)
	require.True(t, ok, "item %s should still be in the panel", itemID)
	zx, zy, ok := s.ZoneCenter(zoneID)
	require.True(t, ok, "zone %s should exist", zoneID)

	s.TouchStart(itemID, x, y)
	s.TouchMove(zx, zy)
	return s.TouchEnd()
}
