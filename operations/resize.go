package operations

import (
	"errors"
	"fmt"

	"flowdesigner/connections"
	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/geometry"
)

// MinSize is the smallest width or height a resize may leave.
const MinSize = 2

// ErrResizeRejected is returned when a resize would shrink a box below
// MinSize or push it into another component. The shape is left untouched.
var ErrResizeRejected = errors.New("resize rejected")

// resizeSigns holds, per direction, the factors delta is multiplied by to
// get the position and size changes.
var resizeSigns = map[core.ResizeDirection]struct{ pos, size core.Point }{
	core.ResizeN:  {core.Pt(0, 1), core.Pt(0, -1)},
	core.ResizeNE: {core.Pt(0, 1), core.Pt(1, -1)},
	core.ResizeE:  {core.Pt(0, 0), core.Pt(1, 0)},
	core.ResizeSE: {core.Pt(0, 0), core.Pt(1, 1)},
	core.ResizeS:  {core.Pt(0, 0), core.Pt(0, 1)},
	core.ResizeSW: {core.Pt(1, 0), core.Pt(-1, 1)},
	core.ResizeW:  {core.Pt(1, 0), core.Pt(-1, 0)},
	core.ResizeNW: {core.Pt(1, 1), core.Pt(-1, -1)},
}

// Resized returns the box r becomes when its dir border is dragged by delta.
func Resized(r core.Rect, delta core.Point, dir core.ResizeDirection) core.Rect {
	signs, ok := resizeSigns[dir]
	if !ok {
		return r
	}
	return core.Rect{
		Position: r.Position.Add(delta.Mul(signs.pos)),
		Size:     r.Size.Add(delta.Mul(signs.size)),
	}
}

// Resize drags the dir border of a resizable shape by delta. The change is
// rejected with ErrResizeRejected if either side would drop below MinSize
// or if any other component's margin box collides with the new outline.
// After a committed resize of a component its connection points are
// re-clamped and the connections of points that moved are redrawn; a
// routing failure is returned but the resize stands.
func Resize(scene *diagram.Scene, router connections.Router, id diagram.ID, delta core.Point, dir core.ResizeDirection) error {
	shape, ok := scene.Shape(id)
	if !ok {
		return fmt.Errorf("shape %d: %w", id, diagram.ErrNotFound)
	}
	box, ok := diagram.Resizable(shape)
	if !ok {
		return fmt.Errorf("shape %d is not resizable: %w", id, ErrResizeRejected)
	}
	if dir == core.ResizeNone || delta.IsZero() {
		return nil
	}

	next := Resized(box.Bounds(), delta, dir)
	if next.Size.X < MinSize || next.Size.Y < MinSize {
		return fmt.Errorf("size %v below minimum: %w", next.Size, ErrResizeRejected)
	}
	if hits := scene.Colliding(next.Vertices(), geometry.Margin, id); len(hits) > 0 {
		return fmt.Errorf("%d components in the way: %w", len(hits), ErrResizeRejected)
	}

	box.Position, box.Size = next.Position, next.Size

	if _, isComponent := shape.(*diagram.Component); !isComponent {
		return nil
	}
	if _, err := connections.RedrawPoints(scene, router, connections.OwnerResized(scene, id)); err != nil {
		return fmt.Errorf("resize shape %d: %w", id, err)
	}
	return nil
}
