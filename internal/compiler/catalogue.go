package compiler

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dragsort/internal/ir"
)

// CompileCatalogue parses a whole catalogue value.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value holds two top-level structs:
//
//	section: logic: {
//		title: "Logic"
//		icon:  "🧠"
//		color: "#8b5cf6"
//		category: logic_classification: {title: "Sorting", icon: "📂", total: 3}
//	}
//	tasks: logic_classification: [{id: "cls_01", template: "classification", content: {...}}]
//
// Sections, categories and tasks keep their declaration order.
func CompileCatalogue(v cue.Value) (*ir.Catalogue, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cat := &ir.Catalogue{}

	sections := v.LookupPath(cue.ParsePath("section"))
	if sections.Exists() {
		iter, err := sections.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			section, err := CompileSection(iter.Value())
			if err != nil {
				return nil, err
			}
			cat.Sections = append(cat.Sections, section)
		}
	}

	tasks := v.LookupPath(cue.ParsePath("tasks"))
	if tasks.Exists() {
		iter, err := tasks.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			categoryID := iter.Label()
			list, err := iter.Value().List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for list.Next() {
				task, err := CompileTask(categoryID, list.Value())
				if err != nil {
					return nil, err
				}
				cat.Tasks = append(cat.Tasks, task)
			}
		}
	}

	return cat, nil
}

// CompileSection parses one section struct. The section id is the struct label.
func CompileSection(v cue.Value) (ir.Section, error) {
	if err := v.Err(); err != nil {
		return ir.Section{}, formatCUEError(err)
	}

	section := ir.Section{ID: lastLabel(v)}
	ctx := "section." + section.ID

	var err error
	if section.Title, err = requiredString(v, "title", ctx); err != nil {
		return ir.Section{}, err
	}
	if section.Icon, err = optionalString(v, "icon"); err != nil {
		return ir.Section{}, err
	}
	if section.Color, err = optionalString(v, "color"); err != nil {
		return ir.Section{}, err
	}

	cats := v.LookupPath(cue.ParsePath("category"))
	if !cats.Exists() {
		return section, nil
	}
	iter, err := cats.Fields()
	if err != nil {
		return ir.Section{}, formatCUEError(err)
	}
	for iter.Next() {
		c, err := compileCategory(iter.Label(), iter.Value(), ctx)
		if err != nil {
			return ir.Section{}, err
		}
		section.Categories = append(section.Categories, c)
	}

	return section, nil
}

func compileCategory(id string, v cue.Value, sectionCtx string) (ir.Category, error) {
	ctx := sectionCtx + ".category." + id
	c := ir.Category{ID: id}

	var err error
	if c.Title, err = requiredString(v, "title", ctx); err != nil {
		return ir.Category{}, err
	}
	if c.Icon, err = optionalString(v, "icon"); err != nil {
		return ir.Category{}, err
	}

	totalVal := v.LookupPath(cue.ParsePath("total"))
	if totalVal.Exists() {
		if totalVal.IncompleteKind() != cue.IntKind {
			return ir.Category{}, &CompileError{
				Field:   ctx + ".total",
				Message: "total must be an int",
				Pos:     totalVal.Pos(),
			}
		}
		if c.Total, err = totalVal.Int64(); err != nil {
			return ir.Category{}, formatCUEError(err)
		}
	}

	return c, nil
}

// CompileTask parses one task of a category.
//
// The content is kept verbatim as JSON for every template. Sortable
// templates additionally compile their content into a puzzle.
func CompileTask(categoryID string, v cue.Value) (ir.Task, error) {
	if err := v.Err(); err != nil {
		return ir.Task{}, formatCUEError(err)
	}

	task := ir.Task{CategoryID: categoryID}
	ctx := "tasks." + categoryID

	var err error
	if task.ID, err = requiredString(v, "id", ctx); err != nil {
		return ir.Task{}, err
	}
	ctx += "." + task.ID
	if task.Template, err = requiredString(v, "template", ctx); err != nil {
		return ir.Task{}, err
	}
	if task.Instruction, err = optionalString(v, "instruction"); err != nil {
		return ir.Task{}, err
	}

	content := v.LookupPath(cue.ParsePath("content"))
	if !content.Exists() {
		return ir.Task{}, &CompileError{
			Field:   ctx + ".content",
			Message: "content is required",
			Pos:     v.Pos(),
		}
	}
	raw, err := content.MarshalJSON()
	if err != nil {
		return ir.Task{}, formatCUEError(err)
	}
	task.Content = json.RawMessage(raw)

	if ir.Sortable(task.Template) {
		p, err := CompilePuzzle(task.Template, content)
		if err != nil {
			return ir.Task{}, fmt.Errorf("%s: %w", ctx, err)
		}
		task.Puzzle = p
	}

	return task, nil
}

// lastLabel returns the final selector of the value's path, unquoted.
func lastLabel(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].Unquoted()
}
