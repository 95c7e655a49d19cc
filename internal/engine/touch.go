package engine

import "github.com/roach88/dragsort/internal/ir"

// touchGesture is the one in-flight touch drag.
type touchGesture struct {
	item   *itemSlot
	ghost  *Element
	target *Element // last element hit by TouchMove; nil when off-mount
	startX float64
	startY float64
}

// TouchStart begins a touch drag: a ghost copy is placed under the finger
// and the original is dimmed. A second touch while one is active is ignored.
func (s *Session) TouchStart(itemID string, x, y float64) {
	if s.complete {
		return
	}
	if s.touch != nil {
		s.logger.Debug("second touch ignored", "item", itemID, "active", s.touch.item.id)
		return
	}
	item, ok := s.itemBy[itemID]
	if !ok || item.placed {
		s.logger.Debug("touch start ignored", "item", itemID)
		return
	}
	s.touch = &touchGesture{
		item:   item,
		ghost:  s.layout.addGhost(item.el, x, y),
		startX: x,
		startY: y,
	}
	item.el.Opacity = touchDragOpacity
}

// TouchMove tracks the finger: the ghost follows it, the element under the
// point becomes the release target, and exactly the zone enclosing that
// element is highlighted. It returns true while a gesture is active, meaning
// the caller must suppress scrolling.
func (s *Session) TouchMove(x, y float64) bool {
	g := s.touch
	if g == nil {
		return false
	}
	moveGhost(g.ghost, x, y)
	g.target = s.layout.scene.ElementAt(x, y)

	var zone *Element
	if g.target != nil {
		zone = g.target.closest(KindZone)
	}
	s.highlightOnly(zone)
	return true
}

// TouchEnd releases the gesture over the last element TouchMove recorded.
// No new hit test happens at release. Releasing outside every zone is a
// no-op. All highlights are cleared and the gesture is discarded whatever
// the outcome.
func (s *Session) TouchEnd() ir.Outcome {
	g := s.touch
	if g == nil {
		return ir.OutcomeNone
	}
	s.touch = nil
	defer s.clearHighlights()

	g.ghost.remove()
	g.item.el.Opacity = 1

	if g.target == nil {
		return ir.OutcomeNone
	}
	zone := g.target.closest(KindZone)
	if zone == nil {
		return ir.OutcomeNone
	}
	return s.attemptDrop(g.item.id, zone.Ref, ir.PipelineTouch)
}

// TouchActive reports whether a touch gesture is in flight.
func (s *Session) TouchActive() bool { return s.touch != nil }
