package dragdrop

import (
	"math"

	"storyline-cli/internal/model"
)

const (
	beforeFraction = 0.25
	afterFraction  = 0.75
)

// Classify maps a vertical offset within a row to a gesture: the top quarter is before, the
// bottom quarter is after, the middle half is inside. A degenerate row height reads as inside.
func Classify(offsetY, rowHeight float64) model.DropPosition {
	if rowHeight <= 0 || math.IsNaN(offsetY) || math.IsNaN(rowHeight) {
		return model.DropInside
	}
	pct := offsetY / rowHeight
	switch {
	case pct < beforeFraction:
		return model.DropBefore
	case pct > afterFraction:
		return model.DropAfter
	default:
		return model.DropInside
	}
}

// nearestEdge picks before or after by which half of the row the pointer is in.
func nearestEdge(offsetY, rowHeight float64) model.DropPosition {
	if rowHeight > 0 && offsetY < rowHeight/2 {
		return model.DropBefore
	}
	return model.DropAfter
}
