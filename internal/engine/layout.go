package engine

import (
	"math"

	"github.com/roach88/dragsort/internal/ir"
)

// Mount is the rendering surface a session lays itself out on.
type Mount struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultMount is used when a session is given a zero-sized mount.
var DefaultMount = Mount{Width: 1024, Height: 768}

// Ghost geometry for touch drags: a 100×100 copy centred under the finger.
const (
	ghostSize   = 100
	ghostOffset = 50
)

// Opacity of the source item while it is being carried.
const (
	pointerDragOpacity = 0.4
	touchDragOpacity   = 0.3
)

func clamp(lo, preferred, hi float64) float64 {
	return math.Max(lo, math.Min(preferred, hi))
}

// metrics are the responsive sizes for one mount width.
type metrics struct {
	zoneW, zoneH     float64
	zoneGap, zoneTop float64
	iconSize         float64
	iconGap          float64
	labelSize        float64
	placedSize       float64
	itemSize         float64
	itemGap          float64
}

func metricsFor(m Mount) metrics {
	vw := m.Width / 100
	return metrics{
		zoneW:      clamp(140, 25*vw, 180),
		zoneH:      clamp(180, 35*vw, 240),
		zoneGap:    60,
		zoneTop:    40,
		iconSize:   clamp(48, 8*vw, 80),
		iconGap:    24,
		labelSize:  clamp(16, 2.5*vw, 24),
		placedSize: clamp(24, 5*vw, 48),
		itemSize:   clamp(70, 15*vw, 100),
		itemGap:    clamp(20, 4*vw, 40),
	}
}

// layout owns the scene tree and keeps element geometry current.
type layout struct {
	mount    Mount
	m        metrics
	scene    *Scene
	zonesRow *Element
	panel    *Element
}

func newLayout(mount Mount) *layout {
	if mount.Width <= 0 || mount.Height <= 0 {
		mount = DefaultMount
	}
	root := newElement(KindRoot, "", "")
	root.Rect = Rect{W: mount.Width, H: mount.Height}

	l := &layout{
		mount:    mount,
		m:        metricsFor(mount),
		scene:    &Scene{Root: root},
		zonesRow: newElement(KindZonesRow, "", ""),
		panel:    newElement(KindItemsPanel, "", ""),
	}
	root.appendChild(l.zonesRow)
	root.appendChild(l.panel)
	return l
}

func (l *layout) addZone(z ir.Zone) *Element {
	el := newElement(KindZone, z.ID, z.Label)
	el.appendChild(newElement(KindZoneIcon, z.ID, z.Icon))
	el.appendChild(newElement(KindZoneLabel, z.ID, z.Label))
	l.zonesRow.appendChild(el)
	return el
}

func (l *layout) addItem(id string, it ir.Item) *Element {
	el := newElement(KindItem, id, it.Content)
	l.panel.appendChild(el)
	return el
}

// place moves the item out of the panel and appends a static copy of its
// content to the zone.
func (l *layout) place(item, zone *Element) *Element {
	item.remove()
	placed := newElement(KindPlaced, item.Ref, item.Text)
	zone.appendChild(placed)
	l.arrange()
	return placed
}

func (l *layout) addGhost(item *Element, x, y float64) *Element {
	g := newElement(KindGhost, item.Ref, item.Text)
	g.inert = true
	g.Opacity = 0.9
	g.Rect = Rect{X: x - ghostOffset, Y: y - ghostOffset, W: ghostSize, H: ghostSize}
	l.scene.Root.appendChild(g)
	return g
}

func moveGhost(g *Element, x, y float64) {
	g.Rect.X = x - ghostOffset
	g.Rect.Y = y - ghostOffset
}

func (l *layout) arrange() {
	l.arrangeZones()
	l.arrangeItems()
}

// arrangeZones lays zones out in one centred row near the top; each zone
// stacks its icon, label and placed copies in a vertically centred column.
func (l *layout) arrangeZones() {
	m := l.m
	zones := l.zonesRow.children
	n := float64(len(zones))
	rowW := n*m.zoneW + math.Max(n-1, 0)*m.zoneGap
	l.zonesRow.Rect = Rect{X: 0, Y: m.zoneTop, W: l.mount.Width, H: m.zoneH}

	x := (l.mount.Width - rowW) / 2
	for _, z := range zones {
		z.Rect = Rect{X: x, Y: m.zoneTop, W: m.zoneW, H: m.zoneH}
		x += m.zoneW + m.zoneGap

		var placed []*Element
		for _, c := range z.children {
			if c.Kind == KindPlaced {
				placed = append(placed, c)
			}
		}
		blockH := m.iconSize + m.iconGap + m.labelSize + float64(len(placed))*m.placedSize
		y := z.Rect.Y + (m.zoneH-blockH)/2
		for _, c := range z.children {
			switch c.Kind {
			case KindZoneIcon:
				c.Rect = Rect{X: z.Rect.X + (m.zoneW-m.iconSize)/2, Y: y, W: m.iconSize, H: m.iconSize}
				y += m.iconSize + m.iconGap
			case KindZoneLabel:
				c.Rect = Rect{X: z.Rect.X, Y: y, W: m.zoneW, H: m.labelSize}
				y += m.labelSize
			}
		}
		for _, c := range placed {
			c.Rect = Rect{X: z.Rect.X + (m.zoneW-m.placedSize)/2, Y: y, W: m.placedSize, H: m.placedSize}
			y += m.placedSize
		}
	}
}

// arrangeItems wraps the remaining items into centred rows inside a panel
// anchored to the bottom of the mount.
func (l *layout) arrangeItems() {
	m := l.m
	items := l.panel.children
	pad, gap, size := m.itemGap, m.itemGap, m.itemSize

	perRow := int((l.mount.Width - 2*pad + gap) / (size + gap))
	if perRow < 1 {
		perRow = 1
	}
	cols := min(len(items), perRow)
	rows := (len(items) + perRow - 1) / perRow

	panelW := 2 * pad
	panelH := 2 * pad
	if len(items) > 0 {
		panelW += float64(cols)*(size+gap) - gap
		panelH += float64(rows)*(size+gap) - gap
	}
	l.panel.Rect = Rect{
		X: (l.mount.Width - panelW) / 2,
		Y: l.mount.Height - panelH,
		W: panelW,
		H: panelH,
	}

	for r := 0; r < rows; r++ {
		start := r * perRow
		end := min(start+perRow, len(items))
		rowW := float64(end-start)*(size+gap) - gap
		x := l.panel.Rect.X + (panelW-rowW)/2
		y := l.panel.Rect.Y + pad + float64(r)*(size+gap)
		for _, it := range items[start:end] {
			it.Rect = Rect{X: x, Y: y, W: size, H: size}
			x += size + gap
		}
	}
}
