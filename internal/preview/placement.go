package preview

// Placement constants, in CSS pixels.
const (
	// PointerOffset separates the overlay from the pointer.
	PointerOffset = 20

	// EdgeMargin is the minimum distance kept from the viewport edges.
	EdgeMargin = 10
)

// Size is a width and height.
type Size struct {
	Width  int
	Height int
}

// Position is the overlay's top-left corner in viewport coordinates.
type Position struct {
	X int
	Y int
}

// Place positions an overlay of size box for a pointer at (px, py) in a
// viewport of size view. The overlay goes below-right of the pointer, flips
// to the other side of the pointer when it would overflow, and is pinned to
// the edge margin when the flipped position underflows.
func Place(px, py int, box, view Size) Position {
	return Position{
		X: placeAxis(px, box.Width, view.Width),
		Y: placeAxis(py, box.Height, view.Height),
	}
}

func placeAxis(pointer, extent, viewport int) int {
	pos := pointer + PointerOffset
	if pos+extent > viewport-EdgeMargin {
		pos = pointer - extent - PointerOffset
	}
	if pos < EdgeMargin {
		pos = EdgeMargin
	}
	return pos
}
