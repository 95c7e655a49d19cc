package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPuzzle() ir.Puzzle {
	return ir.Puzzle{
		Zones: []ir.Zone{
			{ID: "hot", Label: "Hot", Icon: "🔥", Accept: ir.Tags("hot")},
			{ID: "cold", Label: "Cold", Accept: ir.Tags("cold")},
		},
		Items: []ir.Item{
			{ID: "sun", Type: "hot", Content: "☀️"},
			{Type: "cold", Content: "🧊"},
		},
	}
}

func testSession(id string) ir.SessionRecord {
	p := testPuzzle()
	return ir.SessionRecord{
		ID:         id,
		CategoryID: "logic_classification",
		TaskID:     "cls_01",
		PuzzleHash: ir.MustPuzzleHash(p),
		Puzzle:     p,
		ItemCount:  int64(len(p.Items)),
	}
}

// createTestAttempt creates an attempt with a content-addressed id.
func createTestAttempt(sessionID, itemID, zoneID string, seq int64, outcome ir.Outcome, placed int64) ir.Attempt {
	return ir.Attempt{
		ID:          ir.MustAttemptID(sessionID, itemID, zoneID, seq),
		SessionID:   sessionID,
		Seq:         seq,
		ItemID:      itemID,
		ItemType:    "hot",
		ZoneID:      zoneID,
		Outcome:     outcome,
		Pipeline:    ir.PipelinePointer,
		PlacedCount: placed,
	}
}

func testCatalogue() *ir.Catalogue {
	p := testPuzzle()
	return &ir.Catalogue{
		Sections: []ir.Section{
			{
				ID: "logic", Title: "Logic", Icon: "🧠", Color: "#8b5cf6",
				Categories: []ir.Category{
					{ID: "logic_patterns", Title: "Patterns", Icon: "🔗", Total: 1},
					{ID: "logic_classification", Title: "Grouping", Icon: "📂", Total: 2},
				},
			},
			{
				ID: "math", Title: "Math",
				Categories: []ir.Category{{ID: "math_compare", Title: "Compare"}},
			},
		},
		Tasks: []ir.Task{
			{
				ID: "pat_01", CategoryID: "logic_patterns", Template: "nextinsequence",
				Content: []byte(`{"sequence":["🥚","🐣"]}`),
			},
			{
				ID: "cls_02", CategoryID: "logic_classification", Template: ir.TemplateSorting,
				Instruction: "Sort by temperature", Puzzle: &p,
				Content: []byte(`{"zones":[],"items":[]}`),
			},
			{
				ID: "pat_01", CategoryID: "logic_classification", Template: ir.TemplateClassification,
				Puzzle: &p, Content: []byte(`{}`),
			},
		},
	}
}
