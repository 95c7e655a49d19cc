package ir

// Outcome is the result of a drop attempt.
type Outcome string

const (
	// OutcomeNone means no resolution happened (stale source, no zone, finished session).
	OutcomeNone Outcome = "none"
	// OutcomeAccepted means the item was placed into the zone.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means the zone does not accept the item's type.
	OutcomeRejected Outcome = "rejected"
)

// Pipeline identifies the gesture source that produced an attempt.
type Pipeline string

const (
	PipelinePointer Pipeline = "pointer"
	PipelineTouch   Pipeline = "touch"
)

// Attempt records one resolved drop (accepted or rejected).
type Attempt struct {
	ID          string   `json:"id"` // Content-addressed hash
	SessionID   string   `json:"session_id"`
	Seq         int64    `json:"seq"` // Logical clock
	ItemID      string   `json:"item_id"`
	ItemType    Tag      `json:"item_type"`
	ZoneID      string   `json:"zone_id"`
	Outcome     Outcome  `json:"outcome"`
	Pipeline    Pipeline `json:"pipeline"`
	PlacedCount int64    `json:"placed_count"` // PlacedCount after the attempt
}

// SessionRecord describes a played session for the attempt trace.
type SessionRecord struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id,omitempty"`
	TaskID     string `json:"task_id,omitempty"`
	PuzzleHash string `json:"puzzle_hash"`
	Puzzle     Puzzle `json:"puzzle"`
	ItemCount  int64  `json:"item_count"`
}
