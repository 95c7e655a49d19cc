package store

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
)

func samplePuzzle() ir.Puzzle {
	return ir.Puzzle{
		Zones: []ir.Zone{
			{ID: "even", Label: "Even", Accept: ir.Tags("even")},
			{ID: "odd", Label: "Odd", Icon: "odd.svg", Accept: ir.Tags("odd")},
		},
		Items: []ir.Item{
			{ID: "item-0", Type: "even", Content: "4"},
			{Type: "odd", Content: "7"},
		},
	}
}

func TestMarshalPuzzle_RoundTrip(t *testing.T) {
	p := samplePuzzle()

	data, err := marshalPuzzle(p)
	require.NoError(t, err)

	got, err := unmarshalPuzzle(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestMarshalPuzzle_OmitsEmptyItemID(t *testing.T) {
	data, err := marshalPuzzle(samplePuzzle())
	require.NoError(t, err)

	var raw struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	require.Len(t, raw.Items, 2)
	assert.Contains(t, raw.Items[0], "id")
	assert.NotContains(t, raw.Items[1], "id")
}

func TestMarshalOptionalPuzzle(t *testing.T) {
	t.Run("nil is NULL", func(t *testing.T) {
		ns, hash, err := marshalOptionalPuzzle(nil)
		require.NoError(t, err)
		assert.False(t, ns.Valid)
		assert.Empty(t, hash)

		p, err := unmarshalOptionalPuzzle(ns)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("hash matches PuzzleHash", func(t *testing.T) {
		p := samplePuzzle()
		ns, hash, err := marshalOptionalPuzzle(&p)
		require.NoError(t, err)
		require.True(t, ns.Valid)

		want, err := ir.PuzzleHash(p)
		require.NoError(t, err)
		assert.Equal(t, want, hash)

		got, err := unmarshalOptionalPuzzle(ns)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p, *got)
	})
}

func TestUnmarshalPuzzle_Invalid(t *testing.T) {
	_, err := unmarshalOptionalPuzzle(sql.NullString{String: "{not json", Valid: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal puzzle")
}

func TestContentText(t *testing.T) {
	assert.Equal(t, "{}", contentText(nil))
	assert.Equal(t, `{"kind":"nextinsequence"}`, contentText(json.RawMessage(`{"kind":"nextinsequence"}`)))
}
