package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/dragsort/internal/ir"
)

// ListSections returns all sections with their categories, in declaration order.
// Returns an empty slice (not nil) if nothing was imported.
func (s *Store) ListSections(ctx context.Context) ([]ir.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, icon, color
		FROM sections
		ORDER BY position ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	sections := []ir.Section{}
	for rows.Next() {
		var sec ir.Section
		if err := rows.Scan(&sec.ID, &sec.Title, &sec.Icon, &sec.Color); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}

	for i := range sections {
		cats, err := s.listCategories(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].Categories = cats
	}

	return sections, nil
}

func (s *Store) listCategories(ctx context.Context, sectionID string) ([]ir.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, icon, total
		FROM categories
		WHERE section_id = ?
		ORDER BY position ASC, id COLLATE BINARY ASC
	`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	cats := []ir.Category{}
	for rows.Next() {
		var c ir.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Icon, &c.Total); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// ReadCategory retrieves a single category by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCategory(ctx context.Context, id string) (ir.Category, error) {
	var c ir.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, icon, total FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Title, &c.Icon, &c.Total)
	if err != nil {
		return ir.Category{}, fmt.Errorf("read category %q: %w", id, err)
	}
	return c, nil
}

// ListTasks returns the tasks of a category in declaration order.
// Returns an empty slice (not nil) for an unknown or empty category.
func (s *Store) ListTasks(ctx context.Context, categoryID string) ([]ir.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, id, template, instruction, content, puzzle
		FROM tasks
		WHERE category_id = ?
		ORDER BY position ASC, id COLLATE BINARY ASC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []ir.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// ReadTask retrieves a single task. Task ids are only unique within a category.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadTask(ctx context.Context, categoryID, taskID string) (ir.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT category_id, id, template, instruction, content, puzzle
		FROM tasks
		WHERE category_id = ? AND id = ?
	`, categoryID, taskID)

	task, err := scanTask(row)
	if err != nil {
		return ir.Task{}, fmt.Errorf("read task %s/%s: %w", categoryID, taskID, err)
	}
	return task, nil
}

// ReadCatalogue reassembles the whole stored catalogue.
func (s *Store) ReadCatalogue(ctx context.Context) (*ir.Catalogue, error) {
	sections, err := s.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	cat := &ir.Catalogue{Sections: sections, Tasks: []ir.Task{}}
	for _, sec := range sections {
		for _, c := range sec.Categories {
			tasks, err := s.ListTasks(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			cat.Tasks = append(cat.Tasks, tasks...)
		}
	}
	return cat, nil
}

// ReadSession retrieves a session record by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, task_id, puzzle, puzzle_hash, item_count
		FROM sessions
		WHERE id = ?
	`, id)

	rec, err := scanSession(row)
	if err != nil {
		return ir.SessionRecord{}, fmt.Errorf("read session %q: %w", id, err)
	}
	return rec, nil
}

// ListSessions returns all session records ordered by id.
func (s *Store) ListSessions(ctx context.Context) ([]ir.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, task_id, puzzle, puzzle_hash, item_count
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadAttempts returns the attempts of a session with deterministic
// ordering: ORDER BY seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadAttempts(ctx context.Context, sessionID string) ([]ir.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, item_id, item_type, zone_id, outcome, pipeline, placed_count
		FROM attempts
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []ir.Attempt{}
	for rows.Next() {
		var a ir.Attempt
		var itemType, outcome, pipeline string
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.Seq, &a.ItemID, &itemType,
			&a.ZoneID, &outcome, &pipeline, &a.PlacedCount,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.ItemType = ir.Tag(itemType)
		a.Outcome = ir.Outcome(outcome)
		a.Pipeline = ir.Pipeline(pipeline)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (ir.Task, error) {
	var task ir.Task
	var content string
	var puzzle sql.NullString
	if err := row.Scan(&task.CategoryID, &task.ID, &task.Template, &task.Instruction, &content, &puzzle); err != nil {
		return ir.Task{}, err
	}
	task.Content = json.RawMessage(content)

	p, err := unmarshalOptionalPuzzle(puzzle)
	if err != nil {
		return ir.Task{}, fmt.Errorf("task %s/%s: %w", task.CategoryID, task.ID, err)
	}
	task.Puzzle = p
	return task, nil
}

func scanSession(row rowScanner) (ir.SessionRecord, error) {
	var rec ir.SessionRecord
	var puzzle string
	if err := row.Scan(&rec.ID, &rec.CategoryID, &rec.TaskID, &puzzle, &rec.PuzzleHash, &rec.ItemCount); err != nil {
		return ir.SessionRecord{}, err
	}
	p, err := unmarshalPuzzle(puzzle)
	if err != nil {
		return ir.SessionRecord{}, fmt.Errorf("session %q: %w", rec.ID, err)
	}
	rec.Puzzle = p
	return rec, nil
}
