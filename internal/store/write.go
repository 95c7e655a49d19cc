package store

import (
	"context"
	"fmt"

	"github.com/roach88/dragsort/internal/ir"
)

// WriteCatalogue replaces the stored catalogue with cat in one transaction.
// Declaration order is kept in the position columns. Sessions and attempts
// are untouched: they reference puzzles by content, not by task row.
func (s *Store) WriteCatalogue(ctx context.Context, cat *ir.Catalogue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write catalogue: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Cascades to categories and tasks.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections`); err != nil {
		return fmt.Errorf("write catalogue: clear: %w", err)
	}

	for i, section := range cat.Sections {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sections (id, position, title, icon, color)
			VALUES (?, ?, ?, ?, ?)
		`, section.ID, i, section.Title, section.Icon, section.Color)
		if err != nil {
			return fmt.Errorf("write catalogue: section %q: %w", section.ID, err)
		}

		for j, c := range section.Categories {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO categories (id, section_id, position, title, icon, total)
				VALUES (?, ?, ?, ?, ?, ?)
			`, c.ID, section.ID, j, c.Title, c.Icon, c.Total)
			if err != nil {
				return fmt.Errorf("write catalogue: category %q: %w", c.ID, err)
			}
		}
	}

	for i, task := range cat.Tasks {
		puzzle, hash, err := marshalOptionalPuzzle(task.Puzzle)
		if err != nil {
			return fmt.Errorf("write catalogue: task %s/%s: %w", task.CategoryID, task.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks
			(category_id, id, position, template, instruction, content, puzzle, puzzle_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			task.CategoryID,
			task.ID,
			i,
			task.Template,
			task.Instruction,
			contentText(task.Content),
			puzzle,
			hash,
		)
		if err != nil {
			return fmt.Errorf("write catalogue: task %s/%s: %w", task.CategoryID, task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write catalogue: commit: %w", err)
	}
	return nil
}

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
//
// The puzzle is serialized to canonical JSON so the stored text reproduces
// the recorded PuzzleHash.
func (s *Store) WriteSession(ctx context.Context, rec ir.SessionRecord) error {
	puzzleJSON, err := marshalPuzzle(rec.Puzzle)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, category_id, task_id, puzzle, puzzle_hash, item_count, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.CategoryID,
		rec.TaskID,
		puzzleJSON,
		rec.PuzzleHash,
		rec.ItemCount,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteAttempt inserts an attempt record.
// Uses ON CONFLICT DO NOTHING for idempotency: attempt ids are content
// addressed, so a replayed write of the same attempt is silently ignored.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WriteAttempt(ctx context.Context, a ir.Attempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts
		(id, session_id, seq, item_id, item_type, zone_id, outcome, pipeline, placed_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		a.ID,
		a.SessionID,
		a.Seq,
		a.ItemID,
		string(a.ItemType),
		a.ZoneID,
		string(a.Outcome),
		string(a.Pipeline),
		a.PlacedCount,
	)
	if err != nil {
		return fmt.Errorf("write attempt: %w", err)
	}
	return nil
}
