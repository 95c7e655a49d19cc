package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dragsort/internal/ir"
)

// CompilePuzzle turns sortable task content into a puzzle.
//
// The "sorting" template is the puzzle schema itself:
//
//	zones: [{id: "hot", label: "Hot", icon: "🔥", accept: ["hot"]}]
//	items: [{type: "hot", content: "☀️"}]
//
// The "classification" template groups items under categories. Each
// category becomes a zone accepting exactly its own key, and each item's
// category becomes its type. Three content shapes are accepted:
//
//	categories: [{id, label}]           items: [{id, content, category: id}]
//	categories: [{name, accepts}]       items: [{content, category: name}]
//	categories: [{id, title, items: [content, ...]}]
func CompilePuzzle(template string, v cue.Value) (*ir.Puzzle, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	switch template {
	case ir.TemplateSorting:
		return compileSorting(v)
	case ir.TemplateClassification:
		return compileClassification(v)
	default:
		return nil, &CompileError{
			Field:   "template",
			Message: fmt.Sprintf("template %q is not sortable", template),
			Pos:     v.Pos(),
		}
	}
}

func compileSorting(v cue.Value) (*ir.Puzzle, error) {
	p := &ir.Puzzle{}

	err := eachElem(v, "zones", func(i int, z cue.Value) error {
		ctx := fmt.Sprintf("zones[%d]", i)
		var zone ir.Zone
		var err error
		if zone.ID, err = requiredString(z, "id", ctx); err != nil {
			return err
		}
		if zone.Label, err = optionalString(z, "label"); err != nil {
			return err
		}
		if zone.Icon, err = optionalString(z, "icon"); err != nil {
			return err
		}
		accept, err := stringList(z, "accept")
		if err != nil {
			return err
		}
		zone.Accept = ir.Tags(accept...)
		p.Zones = append(p.Zones, zone)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachElem(v, "items", func(i int, it cue.Value) error {
		ctx := fmt.Sprintf("items[%d]", i)
		var item ir.Item
		var err error
		if item.ID, err = optionalString(it, "id"); err != nil {
			return err
		}
		typ, err := requiredString(it, "type", ctx)
		if err != nil {
			return err
		}
		item.Type = ir.Tag(typ)
		if item.Content, err = requiredString(it, "content", ctx); err != nil {
			return err
		}
		p.Items = append(p.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func compileClassification(v cue.Value) (*ir.Puzzle, error) {
	p := &ir.Puzzle{}
	var inline []ir.Item

	err := eachElem(v, "categories", func(i int, c cue.Value) error {
		key, err := firstString(c, "id", "name")
		if err != nil {
			return err
		}
		if key == "" {
			return &CompileError{
				Field:   fmt.Sprintf("categories[%d]", i),
				Message: "category needs an id or a name",
				Pos:     c.Pos(),
			}
		}
		label, err := firstString(c, "label", "title", "name")
		if err != nil {
			return err
		}
		p.Zones = append(p.Zones, ir.Zone{ID: key, Label: label, Accept: ir.Tags(key)})

		contents, err := stringList(c, "items")
		if err != nil {
			return err
		}
		for _, content := range contents {
			inline = append(inline, ir.Item{Type: ir.Tag(key), Content: content})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachElem(v, "items", func(i int, it cue.Value) error {
		ctx := fmt.Sprintf("items[%d]", i)
		var item ir.Item
		var err error
		if item.ID, err = optionalString(it, "id"); err != nil {
			return err
		}
		if item.Content, err = requiredString(it, "content", ctx); err != nil {
			return err
		}
		category, err := requiredString(it, "category", ctx)
		if err != nil {
			return err
		}
		item.Type = ir.Tag(category)
		p.Items = append(p.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Items = append(p.Items, inline...)
	return p, nil
}
