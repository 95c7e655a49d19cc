package ir

// Tag is an item-type tag. Zones accept items whose Type is in their Accept set.
type Tag string

// TagSet is the ordered set of tags a zone accepts.
// Order is kept for display and canonical hashing; membership ignores it.
type TagSet []Tag

// Contains reports whether tag is a member of the set.
func (s TagSet) Contains(tag Tag) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags builds a TagSet from plain strings.
func Tags(tags ...string) TagSet {
	set := make(TagSet, 0, len(tags))
	for _, t := range tags {
		set = append(set, Tag(t))
	}
	return set
}

// Zone is a drop target in a sorting puzzle.
type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Icon   string `json:"icon,omitempty"`
	Accept TagSet `json:"accept"`
}

// Item is a draggable piece of content in a sorting puzzle.
// ID is optional; the engine assigns "item-<index>" when it is empty.
type Item struct {
	ID      string `json:"id,omitempty"`
	Type    Tag    `json:"type"`
	Content string `json:"content"`
}

// Puzzle is the declarative description of one sorting exercise.
// Zones and items render in the given order; order never affects acceptance.
type Puzzle struct {
	Zones []Zone `json:"zones"`
	Items []Item `json:"items"`
}

// Zone returns the zone with the given id.
func (p Puzzle) Zone(id string) (Zone, bool) {
	for _, z := range p.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// Homeless returns the items whose type no zone accepts.
// Such items can never be placed, so a puzzle containing them never completes.
func (p Puzzle) Homeless() []Item {
	var out []Item
	for _, item := range p.Items {
		placeable := false
		for _, z := range p.Zones {
			if z.Accept.Contains(item.Type) {
				placeable = true
				break
			}
		}
		if !placeable {
			out = append(out, item)
		}
	}
	return out
}
