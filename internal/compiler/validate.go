package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/dragsort/internal/ir"
)

// Validation codes. E-codes are errors; W-codes are warnings that only
// fail validation in strict mode.
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Catalogue errors (E101-E109)
	ErrSectionInvalid    = "E101" // section id or title missing
	ErrDuplicateSection  = "E102" // duplicate section id
	ErrDuplicateCategory = "E103" // duplicate category id across sections
	ErrCategoryInvalid   = "E104" // category title missing or negative total
	ErrUnknownCategory   = "E105" // tasks listed under an undeclared category
	ErrDuplicateTask     = "E106" // duplicate task id within a category
	ErrTaskInvalid       = "E107" // task id or template missing
	ErrMissingPuzzle     = "E108" // sortable template without a puzzle

	// Puzzle errors (E110-E119)
	ErrNoZones       = "E110" // puzzle has no zones
	ErrZoneInvalid   = "E111" // zone id missing
	ErrDuplicateZone = "E112" // duplicate zone id
	ErrEmptyAccept   = "E113" // zone accepts nothing
	ErrNoItems       = "E114" // puzzle has no items
	ErrItemInvalid   = "E115" // item type missing
	ErrDuplicateItem = "E116" // duplicate item id
	ErrItemNoContent = "E117" // item content missing

	// Puzzle warnings (W120-W129)
	WarnHomelessItem = "W120" // item type matches no zone
)

// Severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError represents a schema validation finding.
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the finding is a warning.
func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Failures returns the findings that fail validation: errors always,
// warnings only when strict.
func Failures(findings []ValidationError, strict bool) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if strict || !f.IsWarning() {
			out = append(out, f)
		}
	}
	return out
}

// Validate validates compiled IR against schema rules.
// Returns all findings (does not fail-fast).
// Supports Catalogue and Puzzle types.
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *ir.Catalogue:
		return validateCatalogue(val)
	case ir.Catalogue:
		return validateCatalogue(&val)
	case *ir.Puzzle:
		return validatePuzzle(val, "puzzle")
	case ir.Puzzle:
		return validatePuzzle(&val, "puzzle")
	default:
		return []ValidationError{errorf(ErrUnsupportedIRType, "type", "unsupported IR type: %T", v)}
	}
}

func errorf(code, field, format string, args ...any) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Severity: SeverityError,
	}
}

func warnf(code, field, format string, args ...any) ValidationError {
	v := errorf(code, field, format, args...)
	v.Severity = SeverityWarning
	return v
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateCatalogue(cat *ir.Catalogue) []ValidationError {
	var errs []ValidationError

	sectionIDs := make(map[string]bool)
	categoryIDs := make(map[string]bool)
	for i, s := range cat.Sections {
		field := fmt.Sprintf("sections[%d]", i)
		if blank(s.ID) || blank(s.Title) {
			errs = append(errs, errorf(ErrSectionInvalid, field, "section %q needs an id and a title", s.ID))
		}
		if sectionIDs[s.ID] {
			errs = append(errs, errorf(ErrDuplicateSection, field, "duplicate section id: %q", s.ID))
		}
		sectionIDs[s.ID] = true

		for j, c := range s.Categories {
			cfield := fmt.Sprintf("%s.categories[%d]", field, j)
			if categoryIDs[c.ID] {
				errs = append(errs, errorf(ErrDuplicateCategory, cfield, "duplicate category id: %q", c.ID))
			}
			categoryIDs[c.ID] = true

			if blank(c.Title) {
				errs = append(errs, errorf(ErrCategoryInvalid, cfield, "category %q needs a title", c.ID))
			}
			if c.Total < 0 {
				errs = append(errs, errorf(ErrCategoryInvalid, cfield, "category %q has negative total %d", c.ID, c.Total))
			}
		}
	}

	type taskKey struct{ category, id string }
	taskIDs := make(map[taskKey]bool)
	unknown := make(map[string]bool)
	for i, t := range cat.Tasks {
		field := fmt.Sprintf("tasks.%s[%d]", t.CategoryID, i)
		if !categoryIDs[t.CategoryID] && !unknown[t.CategoryID] {
			unknown[t.CategoryID] = true
			errs = append(errs, errorf(ErrUnknownCategory, "tasks."+t.CategoryID, "tasks listed under undeclared category %q", t.CategoryID))
		}
		if blank(t.ID) || blank(t.Template) {
			errs = append(errs, errorf(ErrTaskInvalid, field, "task %q needs an id and a template", t.ID))
		}
		key := taskKey{t.CategoryID, t.ID}
		if taskIDs[key] {
			errs = append(errs, errorf(ErrDuplicateTask, field, "duplicate task id %q in category %q", t.ID, t.CategoryID))
		}
		taskIDs[key] = true

		if ir.Sortable(t.Template) {
			if t.Puzzle == nil {
				errs = append(errs, errorf(ErrMissingPuzzle, field, "%s task %q has no puzzle", t.Template, t.ID))
				continue
			}
			errs = append(errs, validatePuzzle(t.Puzzle, fmt.Sprintf("tasks.%s.%s", t.CategoryID, t.ID))...)
		}
	}

	return errs
}

func validatePuzzle(p *ir.Puzzle, prefix string) []ValidationError {
	var errs []ValidationError

	if len(p.Zones) == 0 {
		errs = append(errs, errorf(ErrNoZones, prefix+".zones", "at least one zone is required"))
	}
	zoneIDs := make(map[string]bool)
	for i, z := range p.Zones {
		field := fmt.Sprintf("%s.zones[%d]", prefix, i)
		if blank(z.ID) {
			errs = append(errs, errorf(ErrZoneInvalid, field, "zone id is required"))
		}
		if zoneIDs[z.ID] {
			errs = append(errs, errorf(ErrDuplicateZone, field, "duplicate zone id: %q", z.ID))
		}
		zoneIDs[z.ID] = true
		if len(z.Accept) == 0 {
			errs = append(errs, errorf(ErrEmptyAccept, field+".accept", "zone %q accepts no item type", z.ID))
		}
	}

	if len(p.Items) == 0 {
		errs = append(errs, errorf(ErrNoItems, prefix+".items", "at least one item is required"))
	}
	itemIDs := make(map[string]bool)
	for i, it := range p.Items {
		field := fmt.Sprintf("%s.items[%d]", prefix, i)
		if blank(string(it.Type)) {
			errs = append(errs, errorf(ErrItemInvalid, field+".type", "item type is required"))
		}
		if blank(it.Content) {
			errs = append(errs, errorf(ErrItemNoContent, field+".content", "item content is required"))
		}
		if it.ID != "" {
			if itemIDs[it.ID] {
				errs = append(errs, errorf(ErrDuplicateItem, field+".id", "duplicate item id: %q", it.ID))
			}
			itemIDs[it.ID] = true
		}
	}

	for _, it := range p.Homeless() {
		if blank(string(it.Type)) {
			continue
		}
		errs = append(errs, warnf(WarnHomelessItem, prefix+".items",
			"item %q of type %q matches no zone; the puzzle can never complete", it.Content, it.Type))
	}

	return errs
}
