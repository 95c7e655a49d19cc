package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
)

const inlinePuzzleYAML = `
puzzle:
  zones:
    - {id: hot, label: Hot, accept: [hot]}
    - {id: cold, label: Cold, accept: [cold]}
  items:
    - {type: hot, content: "☀️"}
    - {type: cold, content: "🧊"}
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
session_id: fixed
mount: {width: 800, height: 600}
completion_delay: 250ms
`+inlinePuzzleYAML+`
steps:
  - {action: drag, item: item-0, zone: hot, expect: accepted}
  - {action: wait, duration: 250ms}
assertions:
  placed_count: 1
  outcomes: [accepted]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "fixed", scenario.SessionID)
	assert.Equal(t, 800.0, scenario.Mount.Width)
	assert.Equal(t, 250*time.Millisecond, scenario.CompletionDelay)
	require.NotNil(t, scenario.Puzzle)
	assert.Len(t, scenario.Puzzle.Zones, 2)
	assert.Equal(t, ir.Tags("cold"), scenario.Puzzle.Zones[1].Accept)
	assert.Equal(t, ir.Tag("hot"), scenario.Puzzle.Items[0].Type)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, ActionDrag, scenario.Steps[0].Action)
	assert.Equal(t, ir.OutcomeAccepted, scenario.Steps[0].Expect)
	assert.Equal(t, 250*time.Millisecond, scenario.Steps[1].Duration)
	require.NotNil(t, scenario.Assertions.PlacedCount)
	assert.Equal(t, int64(1), *scenario.Assertions.PlacedCount)
	assert.Equal(t, []ir.Outcome{ir.OutcomeAccepted}, scenario.Assertions.Outcomes)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_CatalogueRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cat"), 0755))
	path := writeScenario(t, dir, "cat.yaml", `
name: from_catalogue
description: "Catalogue task"
catalogue: cat
category: math_compare
task: cmp_sort_01
steps:
  - {action: drag, item: item-0, zone: even}
assertions:
  placed_count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cat"), scenario.Catalogue)
}

func TestLoadScenario_CatalogueMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "cat.yaml", `
name: from_catalogue
description: "Catalogue task"
catalogue: nowhere
category: math_compare
task: cmp_sort_01
steps:
  - {action: drag, item: item-0, zone: even}
assertions:
  placed_count: 1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalogue directory not found")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "Has a typo"
stpes: []
` + inlinePuzzleYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing name",
			body:    "description: d\n" + inlinePuzzleYAML + "steps: [{action: drop, zone: hot}]\nassertions: {placed_count: 0}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: n\n" + inlinePuzzleYAML + "steps: [{action: drop, zone: hot}]\nassertions: {placed_count: 0}\n",
			wantErr: "description is required",
		},
		{
			name:    "no puzzle source",
			body:    "name: n\ndescription: d\nsteps: [{action: drop, zone: hot}]\nassertions: {placed_count: 0}\n",
			wantErr: "one of puzzle or catalogue is required",
		},
		{
			name:    "both puzzle sources",
			body:    "name: n\ndescription: d\ncatalogue: c\ncategory: a\ntask: b\n" + inlinePuzzleYAML + "steps: [{action: drop, zone: hot}]\nassertions: {placed_count: 0}\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "catalogue without task",
			body:    "name: n\ndescription: d\ncatalogue: c\ncategory: a\nsteps: [{action: drop, zone: hot}]\nassertions: {placed_count: 0}\n",
			wantErr: "need category and task",
		},
		{
			name:    "no steps",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "assertions: {placed_count: 0}\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown action",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: fling, item: item-0}]\nassertions: {placed_count: 0}\n",
			wantErr: `unknown action "fling"`,
		},
		{
			name:    "drop without zone",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: drop}]\nassertions: {placed_count: 0}\n",
			wantErr: "zone is required for drop",
		},
		{
			name:    "touch_move without target",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: touch_move, x: 3}]\nassertions: {placed_count: 0}\n",
			wantErr: "touch_move needs a zone or both x and y",
		},
		{
			name:    "expect on drag_start",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: drag_start, item: item-0, expect: accepted}]\nassertions: {placed_count: 0}\n",
			wantErr: "expect is only valid",
		},
		{
			name:    "unknown expected outcome",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: drop, zone: hot, expect: maybe}]\nassertions: {placed_count: 0}\n",
			wantErr: `unknown outcome "maybe"`,
		},
		{
			name:    "wait without duration",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: wait}]\nassertions: {placed_count: 0}\n",
			wantErr: "wait needs a positive duration",
		},
		{
			name:    "no assertions",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: drop, zone: hot}]\n",
			wantErr: "assertions are required",
		},
		{
			name:    "none in outcome list",
			body:    "name: n\ndescription: d\n" + inlinePuzzleYAML + "steps: [{action: drop, zone: hot}]\nassertions: {outcomes: [none]}\n",
			wantErr: "must be accepted or rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}
