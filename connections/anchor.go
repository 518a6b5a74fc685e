// Package connections maintains connection points on component borders and
// redraws the connections between them.
package connections

import (
	"math"

	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/geometry"
)

// Change describes how an owner was mutated.
type Change int

const (
	// Moved means only the position changed.
	Moved Change = iota
	// Resized means the size changed, possibly together with the position.
	Resized
)

// String returns the string representation of a Change.
func (c Change) String() string {
	if c == Resized {
		return "Resized"
	}
	return "Moved"
}

// Place moves the anchor of p to the border face of owner that external
// lies against. Faces are tested north, east, south, west and the first
// match wins; when none matches the anchor is kept. It reports whether the
// anchor changed.
func Place(owner *diagram.Component, p *diagram.ConnectionPoint, external core.Point) bool {
	b := owner.Bounds()
	mid := b.MidPoint()
	anchor, face := p.Anchor, p.Face

	switch {
	case external.Y <= b.Top() && within(external.X, b.Left(), b.Right()):
		face = core.North
		anchor = core.Pt(nudge(intersectX(mid, external, b.Top()), b.Left(), b.Right()), b.Top())
	case external.X >= b.Right() && within(external.Y, b.Top(), b.Bottom()):
		face = core.East
		anchor = core.Pt(b.Right(), nudge(intersectY(mid, external, b.Right()), b.Top(), b.Bottom()))
	case external.Y >= b.Bottom() && within(external.X, b.Left(), b.Right()):
		face = core.South
		anchor = core.Pt(nudge(intersectX(mid, external, b.Bottom()), b.Left(), b.Right()), b.Bottom())
	case external.X <= b.Left() && within(external.Y, b.Top(), b.Bottom()):
		face = core.West
		anchor = core.Pt(b.Left(), nudge(intersectY(mid, external, b.Left()), b.Top(), b.Bottom()))
	}

	p.Face = face
	p.Delta = mid.Sub(anchor)
	if anchor == p.Anchor {
		return false
	}
	p.Anchor = anchor
	return true
}

// Recompute re-derives the anchor after owner changed. A move translates the
// anchor rigidly. A resize projects the translated anchor back onto the
// stored face and keeps it one unit clear of both corners. It reports
// whether the anchor changed.
func Recompute(owner *diagram.Component, p *diagram.ConnectionPoint, kind Change) bool {
	b := owner.Bounds()
	mid := b.MidPoint()
	target := mid.Sub(p.Delta)

	if kind == Moved {
		if target == p.Anchor {
			return false
		}
		p.Anchor = target
		return true
	}

	var anchor core.Point
	switch p.Face {
	case core.North:
		anchor = core.Pt(geometry.ClampOpen(target.X, b.Left(), b.Right()), b.Top())
	case core.East:
		anchor = core.Pt(b.Right(), geometry.ClampOpen(target.Y, b.Top(), b.Bottom()))
	case core.South:
		anchor = core.Pt(geometry.ClampOpen(target.X, b.Left(), b.Right()), b.Bottom())
	case core.West:
		anchor = core.Pt(b.Left(), geometry.ClampOpen(target.Y, b.Top(), b.Bottom()))
	default:
		anchor = target
	}

	p.Delta = mid.Sub(anchor)
	if anchor == p.Anchor {
		return false
	}
	p.Anchor = anchor
	return true
}

// Offset returns the anchor pushed distance units away from the owner,
// diagonally when the anchor sits on a corner.
func Offset(owner *diagram.Component, p *diagram.ConnectionPoint, distance float64) core.Point {
	b := owner.Bounds()
	a := p.Anchor

	switch {
	case a.Near(b.TopLeft()):
		return a.Add(core.Pt(-distance, -distance))
	case a.Near(b.TopRight()):
		return a.Add(core.Pt(distance, -distance))
	case a.Near(b.BottomRight()):
		return a.Add(core.Pt(distance, distance))
	case a.Near(b.BottomLeft()):
		return a.Add(core.Pt(-distance, distance))
	case geometry.NearlyEqual(a.Y, b.Top(), core.Tolerance):
		return a.Add(core.North.Normal().Scale(distance))
	case geometry.NearlyEqual(a.Y, b.Bottom(), core.Tolerance):
		return a.Add(core.South.Normal().Scale(distance))
	case geometry.NearlyEqual(a.X, b.Left(), core.Tolerance):
		return a.Add(core.West.Normal().Scale(distance))
	case geometry.NearlyEqual(a.X, b.Right(), core.Tolerance):
		return a.Add(core.East.Normal().Scale(distance))
	}
	return a
}

// OnBorder reports whether anchor lies on exactly one border of r and on no corner.
func OnBorder(r core.Rect, anchor core.Point) bool {
	onX := geometry.NearlyEqual(anchor.X, r.Left(), core.Tolerance) || geometry.NearlyEqual(anchor.X, r.Right(), core.Tolerance)
	onY := geometry.NearlyEqual(anchor.Y, r.Top(), core.Tolerance) || geometry.NearlyEqual(anchor.Y, r.Bottom(), core.Tolerance)
	switch {
	case onX && !onY:
		return anchor.Y > r.Top() && anchor.Y < r.Bottom()
	case onY && !onX:
		return anchor.X > r.Left() && anchor.X < r.Right()
	default:
		return false
	}
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// nudge clamps v into [lo, hi] and moves a value at either end one unit
// inward. A span of two units or less collapses to its midpoint.
func nudge(v, lo, hi float64) float64 {
	if hi-lo <= 2 {
		return (lo + hi) / 2
	}
	if v < lo+core.Tolerance {
		return lo + 1
	}
	if v > hi-core.Tolerance {
		return hi - 1
	}
	return v
}

// line is y = m*x + c. A vertical line has m = +Inf and c holds its x.
type line struct {
	m, c float64
}

func lineThrough(a, b core.Point) line {
	if math.Abs(b.X-a.X) < core.Tolerance {
		return line{m: math.Inf(1), c: a.X}
	}
	m := (b.Y - a.Y) / (b.X - a.X)
	return line{m: m, c: a.Y - m*a.X}
}

// intersectX returns x where the line from mid through external crosses the
// horizontal line at y.
func intersectX(mid, external core.Point, y float64) float64 {
	l := lineThrough(mid, external)
	if math.IsInf(l.m, 1) {
		return l.c
	}
	if math.Abs(l.m) < core.Tolerance {
		return external.X
	}
	return (y - l.c) / l.m
}

// intersectY returns y where the line from mid through external crosses the
// vertical line at x.
func intersectY(mid, external core.Point, x float64) float64 {
	l := lineThrough(mid, external)
	if math.IsInf(l.m, 1) {
		return external.Y
	}
	return l.m*x + l.c
}
