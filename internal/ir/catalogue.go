package ir

import "encoding/json"

// Template names understood by the catalogue compiler.
const (
	// TemplateSorting is the engine's native zones/items schema.
	TemplateSorting = "sorting"
	// TemplateClassification groups items into categories; it compiles to a sorting puzzle.
	TemplateClassification = "classification"
)

// Sortable reports whether tasks of the template can be played by the sorting engine.
func Sortable(template string) bool {
	return template == TemplateSorting || template == TemplateClassification
}

// Section is a top-level grouping of categories.
type Section struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Icon       string     `json:"icon,omitempty"`
	Color      string     `json:"color,omitempty"`
	Categories []Category `json:"categories"`
}

// Category groups tasks of one skill.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Total int64  `json:"total"`
}

// Task is one exercise in a category.
// Puzzle is set for sortable templates; Content always holds the raw content.
type Task struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Template    string          `json:"template"`
	Instruction string          `json:"instruction"`
	Puzzle      *Puzzle         `json:"puzzle,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
}

// Catalogue is the whole compiled content tree.
type Catalogue struct {
	Sections []Section `json:"sections"`
	Tasks    []Task    `json:"tasks"`
}

// Category looks up a category by id across all sections.
func (c *Catalogue) Category(id string) (Category, bool) {
	for _, s := range c.Sections {
		for _, cat := range s.Categories {
			if cat.ID == id {
				return cat, true
			}
		}
	}
	return Category{}, false
}

// Task looks up a task by category and task id.
// Task ids are only unique within a category.
func (c *Catalogue) Task(categoryID, taskID string) (Task, bool) {
	for _, t := range c.Tasks {
		if t.CategoryID == categoryID && t.ID == taskID {
			return t, true
		}
	}
	return Task{}, false
}
