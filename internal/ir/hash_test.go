package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hotCold() Puzzle {
	return Puzzle{
		Zones: []Zone{
			{ID: "hot", Label: "Hot", Accept: Tags("hot")},
			{ID: "cold", Label: "Cold", Accept: Tags("cold")},
		},
		Items: []Item{
			{Type: "hot", Content: "☀️"},
			{Type: "cold", Content: "🧊"},
		},
	}
}

func TestPuzzleHashDeterminism(t *testing.T) {
	h1, err := PuzzleHash(hotCold())
	require.NoError(t, err)
	h2, err := PuzzleHash(hotCold())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "PuzzleHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestPuzzleHashOrderSensitive(t *testing.T) {
	p := hotCold()
	swapped := hotCold()
	swapped.Items[0], swapped.Items[1] = swapped.Items[1], swapped.Items[0]

	assert.NotEqual(t, MustPuzzleHash(p), MustPuzzleHash(swapped),
		"item order is part of the layout and therefore the identity")
}

func TestAttemptIDChangesWithInput(t *testing.T) {
	id1 := MustAttemptID("s-1", "item-0", "hot", 1)
	id2 := MustAttemptID("s-2", "item-0", "hot", 1)
	id3 := MustAttemptID("s-1", "item-0", "hot", 2)
	id4 := MustAttemptID("s-1", "item-0", "cold", 1)

	assert.NotEqual(t, id1, id2, "different session")
	assert.NotEqual(t, id1, id3, "different seq")
	assert.NotEqual(t, id1, id4, "different zone")
	assert.Equal(t, id1, MustAttemptID("s-1", "item-0", "hot", 1))
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t,
		hashWithDomain(DomainPuzzle, data),
		hashWithDomain(DomainAttempt, data))
}
