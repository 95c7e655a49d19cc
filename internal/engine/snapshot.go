package engine

// SceneSnapshot is the JSON view of a session that front ends render.
// Item types are not exposed.
type SceneSnapshot struct {
	SessionID   string     `json:"session_id"`
	Mount       Mount      `json:"mount"`
	ItemCount   int64      `json:"item_count"`
	PlacedCount int64      `json:"placed_count"`
	Complete    bool       `json:"complete"`
	Zones       []ZoneView `json:"zones"`
	Items       []ItemView `json:"items"`
	Ghost       *GhostView `json:"ghost,omitempty"`
	Carried     string     `json:"carried,omitempty"`
}

// ZoneView is one drop zone with the content placed into it.
type ZoneView struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Icon        string   `json:"icon,omitempty"`
	Rect        Rect     `json:"rect"`
	Highlighted bool     `json:"highlighted"`
	Placed      []string `json:"placed"`
}

// ItemView is one item still waiting in the panel.
type ItemView struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Rect    Rect    `json:"rect"`
	Opacity float64 `json:"opacity"`
}

// GhostView is the floating copy that follows a touch drag.
type GhostView struct {
	ItemID  string  `json:"item_id"`
	Content string  `json:"content"`
	Rect    Rect    `json:"rect"`
	StartX  float64 `json:"start_x"`
	StartY  float64 `json:"start_y"`
}

// Snapshot captures the current scene.
func (s *Session) Snapshot() SceneSnapshot {
	snap := SceneSnapshot{
		SessionID:   s.id,
		Mount:       s.layout.mount,
		ItemCount:   s.itemCount,
		PlacedCount: s.placedCount,
		Complete:    s.complete,
		Zones:       make([]ZoneView, 0, len(s.zones)),
		Items:       make([]ItemView, 0, len(s.items)),
	}
	for _, z := range s.zones {
		zv := ZoneView{
			ID:          z.zone.ID,
			Label:       z.zone.Label,
			Icon:        z.zone.Icon,
			Rect:        z.el.Rect,
			Highlighted: z.el.Highlighted,
			Placed:      []string{},
		}
		for _, c := range z.el.children {
			if c.Kind == KindPlaced {
				zv.Placed = append(zv.Placed, c.Text)
			}
		}
		snap.Zones = append(snap.Zones, zv)
	}
	for _, it := range s.items {
		if it.placed {
			continue
		}
		snap.Items = append(snap.Items, ItemView{
			ID:      it.id,
			Content: it.item.Content,
			Rect:    it.el.Rect,
			Opacity: it.el.Opacity,
		})
	}
	if g := s.touch; g != nil {
		snap.Ghost = &GhostView{
			ItemID:  g.item.id,
			Content: g.item.item.Content,
			Rect:    g.ghost.Rect,
			StartX:  g.startX,
			StartY:  g.startY,
		}
	}
	if s.carried != nil {
		snap.Carried = s.carried.id
	}
	return snap
}
