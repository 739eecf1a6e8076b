// Package drag implements pointer-driven reordering of block lists.
//
// A Gesture is held by the containing list. While it is active, hovering over
// another item asks ShouldMove whether the pointer has travelled far enough
// into that item to swap positions.
package drag

import "github.com/gravitrone/labproto/cli/internal/blocks"

// State is the role an item plays in the current gesture.
type State int

const (
	Idle State = iota
	Source
	Target
)

func (s State) String() string {
	switch s {
	case Source:
		return "source"
	case Target:
		return "target"
	default:
		return "idle"
	}
}

// Box is the vertical extent of a rendered item. Bottom is exclusive.
type Box struct {
	Top    float64
	Bottom float64
}

// Contains reports whether y falls inside the box.
func (b Box) Contains(y float64) bool {
	return y >= b.Top && y < b.Bottom
}

// ShouldMove is the hover rule. The pointer must cross the hovered item's
// midpoint in the direction of travel before a move happens.
func ShouldMove(dragIndex, itemIndex int, box Box, pointerY float64) bool {
	if dragIndex == itemIndex {
		return false
	}
	middle := (box.Bottom - box.Top) / 2
	offset := pointerY - box.Top
	if dragIndex < itemIndex && offset < middle {
		return false
	}
	if dragIndex > itemIndex && offset > middle {
		return false
	}
	return true
}

// Gesture tracks one drag from pointer-down to release.
type Gesture struct {
	Active bool
	ItemID string
	Origin int
}

// Begin starts dragging the item at index.
func (g *Gesture) Begin(index int, id string) {
	g.Active = true
	g.ItemID = id
	g.Origin = index
}

// End finishes the gesture. It has no effect on the item order.
func (g *Gesture) End() {
	*g = Gesture{}
}

// Hover applies the hover rule for the item at itemIndex and returns the
// possibly reordered sequence. After a move, Origin follows the dragged item
// so holding the pointer still does not move it again.
func (g *Gesture) Hover(items []blocks.Definition, itemIndex int, box Box, pointerY float64) ([]blocks.Definition, bool) {
	if !g.Active {
		return items, false
	}
	if !ShouldMove(g.Origin, itemIndex, box, pointerY) {
		return items, false
	}
	out, err := blocks.Move(items, g.Origin, itemIndex)
	if err != nil {
		return items, false
	}
	g.Origin = itemIndex
	return out, true
}

// StateOf returns the role of the item at index, given which item (if any)
// the pointer is over.
func StateOf(g Gesture, index, hovered int) State {
	if !g.Active {
		return Idle
	}
	if index == g.Origin {
		return Source
	}
	if index == hovered {
		return Target
	}
	return Idle
}

// HitTest returns the index of the box containing y.
func HitTest(boxes []Box, y float64) (int, bool) {
	for i, b := range boxes {
		if b.Contains(y) {
			return i, true
		}
	}
	return -1, false
}
