package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/dragsort/internal/ir"
)

// marshalPuzzle converts a puzzle to canonical JSON TEXT for storage.
// The stored text hashes to the same PuzzleHash it was written with.
func marshalPuzzle(p ir.Puzzle) (string, error) {
	data, err := ir.MarshalCanonical(ir.PuzzleCanonical(p))
	if err != nil {
		return "", fmt.Errorf("marshal puzzle: %w", err)
	}
	return string(data), nil
}

// unmarshalPuzzle parses stored puzzle JSON.
func unmarshalPuzzle(data string) (ir.Puzzle, error) {
	var p ir.Puzzle
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return ir.Puzzle{}, fmt.Errorf("unmarshal puzzle: %w", err)
	}
	return p, nil
}

// marshalOptionalPuzzle stores nil puzzles as NULL.
func marshalOptionalPuzzle(p *ir.Puzzle) (sql.NullString, string, error) {
	if p == nil {
		return sql.NullString{}, "", nil
	}
	data, err := marshalPuzzle(*p)
	if err != nil {
		return sql.NullString{}, "", err
	}
	hash, err := ir.PuzzleHash(*p)
	if err != nil {
		return sql.NullString{}, "", fmt.Errorf("marshal puzzle: %w", err)
	}
	return sql.NullString{String: data, Valid: true}, hash, nil
}

// unmarshalOptionalPuzzle is the inverse of marshalOptionalPuzzle.
func unmarshalOptionalPuzzle(data sql.NullString) (*ir.Puzzle, error) {
	if !data.Valid {
		return nil, nil
	}
	p, err := unmarshalPuzzle(data.String)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// contentText keeps raw task content as TEXT; empty content is stored as {}.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
