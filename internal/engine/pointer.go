package engine

import "github.com/roach88/dragsort/internal/ir"

// DragStart marks the item as carried and dims it.
// Placed or unknown items cannot be carried.
func (s *Session) DragStart(itemID string) {
	if s.complete {
		return
	}
	item, ok := s.itemBy[itemID]
	if !ok || item.placed {
		s.logger.Debug("drag start ignored", "item", itemID)
		return
	}
	if s.carried != nil && s.carried != item {
		s.carried.el.Opacity = 1
	}
	s.carried = item
	item.el.Opacity = pointerDragOpacity
}

// DragOver highlights the zone under the pointer. It returns true when the
// caller must cancel the platform's default handling so the zone can take
// a drop.
func (s *Session) DragOver(zoneID string) bool {
	zone, ok := s.zoneBy[zoneID]
	if !ok {
		return false
	}
	if !s.complete {
		zone.el.Highlighted = true
	}
	return true
}

// DragLeave removes the zone's hover highlight.
func (s *Session) DragLeave(zoneID string) {
	if zone, ok := s.zoneBy[zoneID]; ok {
		zone.el.Highlighted = false
	}
}

// Drop resolves the carried item against the zone. Hover highlights are
// cleared and the carried slot is emptied whatever the outcome. A drop
// with nothing carried resolves to OutcomeNone.
func (s *Session) Drop(zoneID string) ir.Outcome {
	defer s.clearHighlights()

	carried := s.carried
	s.carried = nil
	if carried == nil {
		s.logger.Debug("drop with nothing carried", "zone", zoneID)
		return ir.OutcomeNone
	}
	return s.attemptDrop(carried.id, zoneID, ir.PipelinePointer)
}

// DragEnd restores the item's opacity and clears the carried slot and all
// hover highlights, whether or not a drop happened.
func (s *Session) DragEnd(itemID string) {
	if item, ok := s.itemBy[itemID]; ok {
		item.el.Opacity = 1
	}
	if s.carried != nil {
		s.carried.el.Opacity = 1
		s.carried = nil
	}
	s.clearHighlights()
}
