// Package geometry holds the pure 2D primitives every other package builds on:
// containment, intersection and the two collision modes.
package geometry

import (
	"math"

	"flowdesigner/core"
)

// CollisionMode selects between exact and proximity collision tests.
type CollisionMode int

const (
	// Normal tests exact containment and overlap.
	Normal CollisionMode = iota
	// Margin inflates the shape's bounding box by its margin first, so shapes
	// that are about to touch already collide.
	Margin
)

// String returns the mode name.
func (m CollisionMode) String() string {
	if m == Margin {
		return "margin"
	}
	return "normal"
}

// BoundingBox returns the smallest rectangle holding every point.
func BoundingBox(points []core.Point) core.Rect {
	if len(points) == 0 {
		return core.Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return core.Rect{
		Position: core.Point{X: minX, Y: minY},
		Size:     core.Point{X: maxX - minX, Y: maxY - minY},
	}
}

// Collides reports whether the test vertices touch the shape. Both vertex
// lists are closed polygons; one or two vertices degrade to a point or a
// segment. In Margin mode the shape is replaced by its bounding box grown by
// margin.
func Collides(shape, test []core.Point, margin float64, mode CollisionMode) bool {
	if len(shape) == 0 || len(test) == 0 {
		return false
	}
	if mode == Margin {
		shape = BoundingBox(shape).Inflate(margin).Vertices()
	}

	for _, p := range test {
		if PolygonContains(shape, p) {
			return true
		}
	}
	for _, p := range shape {
		if PolygonContains(test, p) {
			return true
		}
	}
	return edgesCross(edges(shape, true), edges(test, true))
}

// PathCollides is Collides for an open polyline: the path touches the shape
// when one of its vertices lies inside or one of its segments crosses the
// shape's border.
func PathCollides(shape, path []core.Point, margin float64, mode CollisionMode) bool {
	if len(shape) == 0 || len(path) == 0 {
		return false
	}
	if mode == Margin {
		shape = BoundingBox(shape).Inflate(margin).Vertices()
	}

	for _, p := range path {
		if PolygonContains(shape, p) {
			return true
		}
	}
	segs := edges(path, false)
	for _, p := range shape {
		for _, e := range segs {
			if onSegment(e[0], e[1], p) {
				return true
			}
		}
	}
	return edgesCross(edges(shape, true), segs)
}

// ExceedsBounds reports whether the margin-inflated bounding box of vertices
// leaves bounds on any side.
func ExceedsBounds(vertices []core.Point, margin float64, bounds core.Rect) bool {
	if len(vertices) == 0 {
		return false
	}
	for _, o := range overshoot(BoundingBox(vertices).Inflate(margin), bounds) {
		if o > core.Tolerance {
			return true
		}
	}
	return false
}

// Escapes reports whether moving a box from `from` to `to` pushes its
// margin-inflated outline further past any side of bounds than it already
// was. A shape that starts inside its margin zone can still move away from
// the wall.
func Escapes(from, to core.Rect, margin float64, bounds core.Rect) bool {
	before := overshoot(from.Inflate(margin), bounds)
	after := overshoot(to.Inflate(margin), bounds)
	for i := range after {
		if after[i] > 0 && after[i] > before[i]+core.Tolerance {
			return true
		}
	}
	return false
}

// overshoot measures how far r passes each side of bounds (left, top, right, bottom).
func overshoot(r, bounds core.Rect) [4]float64 {
	return [4]float64{
		bounds.Left() - r.Left(),
		bounds.Top() - r.Top(),
		r.Right() - bounds.Right(),
		r.Bottom() - bounds.Bottom(),
	}
}

// PolygonContains tests p against a closed polygon, border included.
func PolygonContains(poly []core.Point, p core.Point) bool {
	switch len(poly) {
	case 0:
		return false
	case 1:
		return poly[0].Near(p)
	case 2:
		return onSegment(poly[0], poly[1], p)
	}

	for _, e := range edges(poly, true) {
		if onSegment(e[0], e[1], p) {
			return true
		}
	}

	// Even-odd ray cast towards +X.
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

type segment [2]core.Point

func edges(points []core.Point, closed bool) []segment {
	if len(points) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(points))
	for i := 0; i+1 < len(points); i++ {
		segs = append(segs, segment{points[i], points[i+1]})
	}
	if closed && len(points) > 2 {
		segs = append(segs, segment{points[len(points)-1], points[0]})
	}
	return segs
}

func edgesCross(a, b []segment) bool {
	for _, s := range a {
		for _, t := range b {
			if SegmentsIntersect(s[0], s[1], t[0], t[1]) {
				return true
			}
		}
	}
	return false
}

// SegmentsIntersect reports whether segments p1p2 and q1q2 share a point.
func SegmentsIntersect(p1, p2, q1, q2 core.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return onSegment(q1, q2, p1) || onSegment(q1, q2, p2) ||
		onSegment(p1, p2, q1) || onSegment(p1, p2, q2)
}

func cross(a, b, c core.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p core.Point) bool {
	if math.Abs(cross(a, b, p)) > core.Tolerance*math.Max(1, math.Hypot(b.X-a.X, b.Y-a.Y)) {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-core.Tolerance && p.X <= math.Max(a.X, b.X)+core.Tolerance &&
		p.Y >= math.Min(a.Y, b.Y)-core.Tolerance && p.Y <= math.Max(a.Y, b.Y)+core.Tolerance
}
