package operations

import (
	"math"

	"flowdesigner/core"
)

// EdgeAt returns the border region of r under p, corners first. A point
// counts as on a border when it is within grip of it on that axis and within
// the border's extent (grown by grip) on the other.
func EdgeAt(r core.Rect, p core.Point, grip float64) core.ResizeDirection {
	grip = math.Max(grip, core.Tolerance)
	if !r.Inflate(grip).Contains(p) {
		return core.ResizeNone
	}

	near := func(a, b float64) bool { return math.Abs(a-b) < grip }
	left, right := near(p.X, r.Left()), near(p.X, r.Right())
	top, bottom := near(p.Y, r.Top()), near(p.Y, r.Bottom())

	switch {
	case top && left:
		return core.ResizeNW
	case top && right:
		return core.ResizeNE
	case bottom && left:
		return core.ResizeSW
	case bottom && right:
		return core.ResizeSE
	case left:
		return core.ResizeW
	case right:
		return core.ResizeE
	case top:
		return core.ResizeN
	case bottom:
		return core.ResizeS
	}
	return core.ResizeNone
}
