package engine

// Rect is an axis-aligned rectangle in mount coordinates (CSS pixels).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether the point lies inside the rectangle.
// The right and bottom edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ElementKind names the role of a scene element.
type ElementKind string

const (
	KindRoot       ElementKind = "root"
	KindZonesRow   ElementKind = "zones_row"
	KindZone       ElementKind = "zone"
	KindZoneIcon   ElementKind = "zone_icon"
	KindZoneLabel  ElementKind = "zone_label"
	KindPlaced     ElementKind = "placed"
	KindItemsPanel ElementKind = "items_panel"
	KindItem       ElementKind = "item"
	KindGhost      ElementKind = "ghost"
)

// Element is a node of the rendered scene.
//
// Children paint over their parent and later siblings paint over earlier
// ones, so reverse pre-order is the hit-test order.
type Element struct {
	Kind        ElementKind
	Ref         string // zone id for zone parts, item id for items, placed copies and the ghost
	Text        string
	Rect        Rect
	Opacity     float64
	Highlighted bool

	parent   *Element
	children []*Element
	// inert elements never receive hits (the ghost has pointer-events: none).
	inert bool
}

func newElement(kind ElementKind, ref, text string) *Element {
	return &Element{Kind: kind, Ref: ref, Text: text, Opacity: 1}
}

// Parent returns the enclosing element, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child elements in paint order.
func (e *Element) Children() []*Element { return e.children }

func (e *Element) appendChild(child *Element) {
	child.parent = e
	e.children = append(e.children, child)
}

// remove detaches the element from its parent. Detached elements are
// unreachable from the root and therefore invisible to hit testing.
func (e *Element) remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// closest walks from e up through its ancestors and returns the first
// element of the given kind.
func (e *Element) closest(kind ElementKind) *Element {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.Kind == kind {
			return cur
		}
	}
	return nil
}

// Scene is the element tree produced by layout.
type Scene struct {
	Root *Element
}

// ElementAt returns the topmost hittable element under the point, or nil
// when the point is outside the mount.
func (s *Scene) ElementAt(x, y float64) *Element {
	var order []*Element
	var walk func(*Element)
	walk = func(e *Element) {
		order = append(order, e)
		for _, c := range e.children {
			walk(c)
		}
	}
	walk(s.Root)

	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		if e.inert {
			continue
		}
		if e.Rect.Contains(x, y) {
			return e
		}
	}
	return nil
}

// ZoneAt returns the zone element enclosing the topmost element under the
// point, or nil when the point is over no zone.
func (s *Scene) ZoneAt(x, y float64) *Element {
	target := s.ElementAt(x, y)
	if target == nil {
		return nil
	}
	return target.closest(KindZone)
}
