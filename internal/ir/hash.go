package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPuzzle  = "dragsort/puzzle/v1"
	DomainAttempt = "dragsort/attempt/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PuzzleHash computes the content identity of a puzzle.
// Two puzzles with the same zones and items in the same order share a hash,
// regardless of which catalogue task they came from.
func PuzzleHash(p Puzzle) (string, error) {
	canonical, err := MarshalCanonical(PuzzleCanonical(p))
	if err != nil {
		return "", fmt.Errorf("PuzzleHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPuzzle, canonical), nil
}

// AttemptID computes the content-addressed ID of an attempt.
// The ID is stable across replays given the same session, drag and seq.
func AttemptID(sessionID, itemID, zoneID string, seq int64) (string, error) {
	obj := map[string]any{
		"session_id": sessionID,
		"item_id":    itemID,
		"zone_id":    zoneID,
		"seq":        seq,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("AttemptID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAttempt, canonical), nil
}

// MustPuzzleHash is like PuzzleHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPuzzleHash(p Puzzle) string {
	h, err := PuzzleHash(p)
	if err != nil {
		panic(err)
	}
	return h
}

// MustAttemptID is like AttemptID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustAttemptID(sessionID, itemID, zoneID string, seq int64) string {
	id, err := AttemptID(sessionID, itemID, zoneID, seq)
	if err != nil {
		panic(err)
	}
	return id
}
