package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/dragsort/internal/ir"
)

// Session is one running sorting exercise.
//
// A Session owns its scene, its placement counters and both gesture slots.
// It is not safe for concurrent use: drive it from a single goroutine, or
// through an Engine, which serializes events onto its loop.
type Session struct {
	id     string
	puzzle ir.Puzzle
	hooks  Hooks

	sound     Sound
	scheduler Scheduler
	clock     SeqClock
	delay     time.Duration
	logger    *slog.Logger

	layout *layout
	zones  []*zoneSlot
	items  []*itemSlot
	zoneBy map[string]*zoneSlot
	itemBy map[string]*itemSlot

	itemCount   int64
	placedCount int64
	complete    bool

	// Pointer pipeline: the carried item, if any.
	carried *itemSlot
	// Touch pipeline: the active gesture, if any.
	touch *touchGesture

	attempts []ir.Attempt
}

type zoneSlot struct {
	zone ir.Zone
	el   *Element
}

type itemSlot struct {
	id     string
	item   ir.Item
	el     *Element
	placed bool
}

// Option configures a Session.
type Option func(*Session)

// WithSound sets the feedback sound player. A nil Sound disables sound.
func WithSound(s Sound) Option {
	return func(sess *Session) { sess.sound = s }
}

// WithScheduler sets the scheduler used for the completion delay.
func WithScheduler(s Scheduler) Option {
	return func(sess *Session) {
		if s != nil {
			sess.scheduler = s
		}
	}
}

// WithCompletionDelay overrides DefaultCompletionDelay.
func WithCompletionDelay(d time.Duration) Option {
	return func(sess *Session) { sess.delay = d }
}

// WithSessionID sets the id stamped on attempts.
// Default: a fresh UUIDv7.
func WithSessionID(id string) Option {
	return func(sess *Session) { sess.id = id }
}

// WithClock sets the logical clock that sequences attempts.
func WithClock(c SeqClock) Option {
	return func(sess *Session) {
		if c != nil {
			sess.clock = c
		}
	}
}

// WithLogger sets the session logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) {
		if l != nil {
			sess.logger = l
		}
	}
}

// NewSession lays out the puzzle on the mount and returns a session ready
// for gestures. The scene is complete when NewSession returns.
//
// Items without an id are named "item-<index>". Zones and items keep their
// given order in the scene; order never affects acceptance.
func NewSession(mount Mount, puzzle ir.Puzzle, hooks Hooks, opts ...Option) *Session {
	s := &Session{
		puzzle:    puzzle,
		hooks:     hooks,
		scheduler: timerScheduler{},
		clock:     NewClock(),
		delay:     DefaultCompletionDelay,
		logger:    slog.Default(),
		zoneBy:    make(map[string]*zoneSlot, len(puzzle.Zones)),
		itemBy:    make(map[string]*itemSlot, len(puzzle.Items)),
		itemCount: int64(len(puzzle.Items)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	s.logger = s.logger.With("session_id", s.id)

	s.layout = newLayout(mount)
	for _, z := range puzzle.Zones {
		if _, dup := s.zoneBy[z.ID]; dup {
			s.logger.Warn("duplicate zone id, later zone is not droppable", "zone", z.ID)
			s.layout.addZone(z)
			continue
		}
		slot := &zoneSlot{zone: z, el: s.layout.addZone(z)}
		s.zones = append(s.zones, slot)
		s.zoneBy[z.ID] = slot
	}
	for i, it := range puzzle.Items {
		id := it.ID
		if id == "" {
			id = fmt.Sprintf("item-%d", i)
		}
		if _, dup := s.itemBy[id]; dup {
			base := id
			for n := 2; s.itemBy[id] != nil; n++ {
				id = fmt.Sprintf("%s-%d", base, n)
			}
			s.logger.Warn("duplicate item id, renamed", "item", base, "renamed", id)
		}
		slot := &itemSlot{id: id, item: it, el: s.layout.addItem(id, it)}
		s.items = append(s.items, slot)
		s.itemBy[id] = slot
	}
	s.layout.arrange()

	s.logger.Debug("session created",
		"zones", len(s.zones),
		"items", s.itemCount,
		"width", s.layout.mount.Width,
		"height", s.layout.mount.Height,
	)
	return s
}

// Resolve decides whether a zone takes an item of the given type.
func Resolve(itemType ir.Tag, zone ir.Zone) ir.Outcome {
	if zone.Accept.Contains(itemType) {
		return ir.OutcomeAccepted
	}
	return ir.OutcomeRejected
}

// attemptDrop is the single drop path shared by both gesture pipelines.
//
// A missing, unknown or already placed source item is a silent no-op, as
// is any drop after completion.
func (s *Session) attemptDrop(itemID, zoneID string, pipeline ir.Pipeline) ir.Outcome {
	if s.complete {
		s.logger.Debug("drop after completion ignored", "item", itemID, "zone", zoneID)
		return ir.OutcomeNone
	}
	item, ok := s.itemBy[itemID]
	if !ok || item.placed {
		s.logger.Debug("stale drop source", "item", itemID, "zone", zoneID, "pipeline", pipeline)
		return ir.OutcomeNone
	}
	zone, ok := s.zoneBy[zoneID]
	if !ok {
		s.logger.Debug("drop on unknown zone", "item", itemID, "zone", zoneID)
		return ir.OutcomeNone
	}

	outcome := Resolve(item.item.Type, zone.zone)
	if outcome == ir.OutcomeAccepted {
		s.layout.place(item.el, zone.el)
		item.placed = true
		s.placedCount++
	}
	s.record(item, zone, outcome, pipeline)

	switch outcome {
	case ir.OutcomeAccepted:
		s.playClick()
		if s.placedCount == s.itemCount {
			s.completeSession()
		}
	case ir.OutcomeRejected:
		if s.hooks.OnFail != nil {
			s.hooks.OnFail()
		}
	}
	return outcome
}

func (s *Session) record(item *itemSlot, zone *zoneSlot, outcome ir.Outcome, pipeline ir.Pipeline) {
	seq := s.clock.Next()
	id, err := ir.AttemptID(s.id, item.id, zone.zone.ID, seq)
	if err != nil {
		s.logger.Error("attempt id", "error", err)
	}
	a := ir.Attempt{
		ID:          id,
		SessionID:   s.id,
		Seq:         seq,
		ItemID:      item.id,
		ItemType:    item.item.Type,
		ZoneID:      zone.zone.ID,
		Outcome:     outcome,
		Pipeline:    pipeline,
		PlacedCount: s.placedCount,
	}
	s.attempts = append(s.attempts, a)

	s.logger.Debug("drop resolved",
		"item", a.ItemID,
		"zone", a.ZoneID,
		"outcome", a.Outcome,
		"pipeline", a.Pipeline,
		"seq", a.Seq,
		"placed", a.PlacedCount,
	)
}

func (s *Session) completeSession() {
	s.complete = true
	s.logger.Info("session complete", "items", s.itemCount, "delay", s.delay)
	s.scheduler.AfterFunc(s.delay, func() {
		if s.hooks.OnSuccess != nil {
			s.hooks.OnSuccess()
		}
	})
}

func (s *Session) playClick() {
	if s.sound == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sound panicked", "panic", r)
		}
	}()
	if err := s.sound.PlayClick(); err != nil {
		s.logger.Warn("sound failed", "error", err)
	}
}

func (s *Session) clearHighlights() {
	for _, z := range s.zones {
		z.el.Highlighted = false
	}
}

// highlightOnly highlights the zone element and resets every other zone.
// A nil zone resets all of them.
func (s *Session) highlightOnly(zone *Element) {
	for _, z := range s.zones {
		z.el.Highlighted = z.el == zone
	}
}

// ID returns the session id stamped on attempts.
func (s *Session) ID() string { return s.id }

// Puzzle returns the puzzle the session was built from.
func (s *Session) Puzzle() ir.Puzzle { return s.puzzle }

// ItemCount returns the number of items at session start.
func (s *Session) ItemCount() int64 { return s.itemCount }

// PlacedCount returns the number of items placed so far.
func (s *Session) PlacedCount() int64 { return s.placedCount }

// Complete reports whether every item has been placed.
func (s *Session) Complete() bool { return s.complete }

// Scene returns the session's element tree. Callers must not mutate it.
func (s *Session) Scene() *Scene { return s.layout.scene }

// Attempts returns the resolved drops in seq order.
func (s *Session) Attempts() []ir.Attempt {
	out := make([]ir.Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// HasItem reports whether the puzzle has an item with this id.
func (s *Session) HasItem(id string) bool {
	_, ok := s.itemBy[id]
	return ok
}

// HasZone reports whether the puzzle has a zone with this id.
func (s *Session) HasZone(id string) bool {
	_, ok := s.zoneBy[id]
	return ok
}

// ItemIDs returns the item ids in layout order, placed or not.
func (s *Session) ItemIDs() []string {
	ids := make([]string, len(s.items))
	for i, it := range s.items {
		ids[i] = it.id
	}
	return ids
}

// Highlighted returns the ids of highlighted zones in layout order.
func (s *Session) Highlighted() []string {
	var ids []string
	for _, z := range s.zones {
		if z.el.Highlighted {
			ids = append(ids, z.zone.ID)
		}
	}
	return ids
}

// ZoneCenter returns the centre point of a zone, for front ends that
// synthesize touch gestures from logical drags.
func (s *Session) ZoneCenter(zoneID string) (x, y float64, ok bool) {
	z, ok := s.zoneBy[zoneID]
	if !ok {
		return 0, 0, false
	}
	r := z.el.Rect
	return r.X + r.W/2, r.Y + r.H/2, true
}

// ItemCenter returns the centre point of an item still in the panel.
func (s *Session) ItemCenter(itemID string) (x, y float64, ok bool) {
	it, ok := s.itemBy[itemID]
	if !ok || it.placed {
		return 0, 0, false
	}
	r := it.el.Rect
	return r.X + r.W/2, r.Y + r.H/2, true
}
