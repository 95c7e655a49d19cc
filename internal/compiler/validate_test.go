package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
)

func validPuzzle() *ir.Puzzle {
	return &ir.Puzzle{
		Zones: []ir.Zone{
			{ID: "hot", Label: "Hot", Accept: ir.Tags("hot")},
			{ID: "cold", Label: "Cold", Accept: ir.Tags("cold")},
		},
		Items: []ir.Item{
			{Type: "hot", Content: "☀️"},
			{Type: "cold", Content: "🧊"},
		},
	}
}

func validCatalogue() *ir.Catalogue {
	return &ir.Catalogue{
		Sections: []ir.Section{{
			ID:    "logic",
			Title: "Logic",
			Categories: []ir.Category{
				{ID: "logic_classification", Title: "Sorting", Total: 1},
			},
		}},
		Tasks: []ir.Task{{
			ID:         "cls_01",
			CategoryID: "logic_classification",
			Template:   ir.TemplateClassification,
			Puzzle:     validPuzzle(),
		}},
	}
}

func codes(findings []ValidationError) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Code)
	}
	return out
}

func TestValidate_ValidInputs(t *testing.T) {
	assert.Empty(t, Validate(validPuzzle()))
	assert.Empty(t, Validate(*validPuzzle()))
	assert.Empty(t, Validate(validCatalogue()))
	assert.Empty(t, Validate(*validCatalogue()))
}

func TestValidate_UnsupportedType(t *testing.T) {
	findings := Validate(42)
	require.Len(t, findings, 1)
	assert.Equal(t, ErrUnsupportedIRType, findings[0].Code)
	assert.Contains(t, findings[0].Message, "int")
}

func TestValidate_Puzzle(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ir.Puzzle)
		want   []string
	}{
		{
			name:   "no zones",
			mutate: func(p *ir.Puzzle) { p.Zones = nil },
			want:   []string{ErrNoZones, WarnHomelessItem, WarnHomelessItem},
		},
		{
			name:   "blank zone id",
			mutate: func(p *ir.Puzzle) { p.Zones[0].ID = " " },
			want:   []string{ErrZoneInvalid},
		},
		{
			name:   "duplicate zone",
			mutate: func(p *ir.Puzzle) { p.Zones[1].ID = "hot" },
			want:   []string{ErrDuplicateZone},
		},
		{
			name: "empty accept",
			mutate: func(p *ir.Puzzle) {
				p.Zones = append(p.Zones, ir.Zone{ID: "nothing", Accept: ir.Tags()})
			},
			want: []string{ErrEmptyAccept},
		},
		{
			name:   "no items",
			mutate: func(p *ir.Puzzle) { p.Items = nil },
			want:   []string{ErrNoItems},
		},
		{
			name:   "item without type",
			mutate: func(p *ir.Puzzle) { p.Items[0].Type = "" },
			want:   []string{ErrItemInvalid},
		},
		{
			name:   "item without content",
			mutate: func(p *ir.Puzzle) { p.Items[0].Content = "" },
			want:   []string{ErrItemNoContent},
		},
		{
			name: "duplicate item id",
			mutate: func(p *ir.Puzzle) {
				p.Items[0].ID = "x"
				p.Items[1].ID = "x"
			},
			want: []string{ErrDuplicateItem},
		},
		{
			name:   "homeless item",
			mutate: func(p *ir.Puzzle) { p.Items[1].Type = "lukewarm" },
			want:   []string{WarnHomelessItem},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPuzzle()
			tt.mutate(p)
			assert.Equal(t, tt.want, codes(Validate(p)))
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	p := &ir.Puzzle{
		Zones: []ir.Zone{{ID: "", Accept: nil}},
		Items: []ir.Item{{Type: "", Content: ""}},
	}
	assert.Equal(t,
		[]string{ErrZoneInvalid, ErrEmptyAccept, ErrItemInvalid, ErrItemNoContent},
		codes(Validate(p)))
}

func TestValidate_Catalogue(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ir.Catalogue)
		want   []string
	}{
		{
			name:   "section without title",
			mutate: func(c *ir.Catalogue) { c.Sections[0].Title = "" },
			want:   []string{ErrSectionInvalid},
		},
		{
			name: "duplicate section",
			mutate: func(c *ir.Catalogue) {
				c.Sections = append(c.Sections, ir.Section{ID: "logic", Title: "Again"})
			},
			want: []string{ErrDuplicateSection},
		},
		{
			name: "duplicate category across sections",
			mutate: func(c *ir.Catalogue) {
				c.Sections = append(c.Sections, ir.Section{
					ID:         "math",
					Title:      "Math",
					Categories: []ir.Category{{ID: "logic_classification", Title: "Copy"}},
				})
			},
			want: []string{ErrDuplicateCategory},
		},
		{
			name:   "negative total",
			mutate: func(c *ir.Catalogue) { c.Sections[0].Categories[0].Total = -1 },
			want:   []string{ErrCategoryInvalid},
		},
		{
			name: "unknown category reported once",
			mutate: func(c *ir.Catalogue) {
				c.Tasks = append(c.Tasks,
					ir.Task{ID: "a", CategoryID: "ghost", Template: "matching"},
					ir.Task{ID: "b", CategoryID: "ghost", Template: "matching"},
				)
			},
			want: []string{ErrUnknownCategory},
		},
		{
			name: "duplicate task in category",
			mutate: func(c *ir.Catalogue) {
				c.Tasks = append(c.Tasks, ir.Task{ID: "cls_01", CategoryID: "logic_classification", Template: "matching"})
			},
			want: []string{ErrDuplicateTask},
		},
		{
			name: "task without template",
			mutate: func(c *ir.Catalogue) {
				c.Tasks = append(c.Tasks, ir.Task{ID: "t2", CategoryID: "logic_classification"})
			},
			want: []string{ErrTaskInvalid},
		},
		{
			name:   "sortable task without puzzle",
			mutate: func(c *ir.Catalogue) { c.Tasks[0].Puzzle = nil },
			want:   []string{ErrMissingPuzzle},
		},
		{
			name:   "nested puzzle findings",
			mutate: func(c *ir.Catalogue) { c.Tasks[0].Puzzle.Items = nil },
			want:   []string{ErrNoItems},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCatalogue()
			tt.mutate(c)
			assert.Equal(t, tt.want, codes(Validate(c)))
		})
	}
}

func TestValidate_NestedFieldPath(t *testing.T) {
	c := validCatalogue()
	c.Tasks[0].Puzzle.Items[1].Content = ""

	findings := Validate(c)
	require.Len(t, findings, 1)
	assert.Equal(t, "tasks.logic_classification.cls_01.items[1].content", findings[0].Field)
}

func TestFailures(t *testing.T) {
	p := validPuzzle()
	p.Items[1].Type = "lukewarm"
	findings := Validate(p)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].IsWarning())
	assert.Equal(t, SeverityWarning, findings[0].Severity)

	assert.Empty(t, Failures(findings, false))
	assert.Len(t, Failures(findings, true), 1)

	p.Items[0].Content = ""
	assert.Equal(t, []string{ErrItemNoContent}, codes(Failures(Validate(p), false)))
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "puzzle.zones", Message: "at least one zone is required", Code: ErrNoZones}
	assert.Equal(t, "[E110] puzzle.zones: at least one zone is required", e.Error())

	e.Line = 7
	assert.Equal(t, "[E110] line 7: puzzle.zones: at least one zone is required", e.Error())
}
