package diagram

import (
	"flowdesigner/core"
	"flowdesigner/geometry"
)

// Shape is one of the closed set of scene variants: *Rectangle, *Component,
// *Marker, *Path and *SelectionBox.
type Shape interface {
	ShapeID() ID
	Vertices() []core.Point
	shape()
}

// Rectangle is a resizable box.
type Rectangle struct {
	ID       ID
	Position core.Point
	Size     core.Point
	Margin   float64
	Label    string
}

func (r *Rectangle) ShapeID() ID { return r.ID }
func (*Rectangle) shape()        {}

// Bounds returns the rectangle's geometry.
func (r *Rectangle) Bounds() core.Rect {
	return core.Rect{Position: r.Position, Size: r.Size}
}

// Vertices returns the corners clockwise from the top-left.
func (r *Rectangle) Vertices() []core.Point {
	return r.Bounds().Vertices()
}

// MidPoint returns the centre of the rectangle.
func (r *Rectangle) MidPoint() core.Point {
	return r.Bounds().MidPoint()
}

// Component is a Rectangle that owns connection points.
type Component struct {
	Rectangle
	Points []ID
}

// Marker is a zero-size point.
type Marker struct {
	ID       ID
	Position core.Point
	Label    string
}

func (m *Marker) ShapeID() ID            { return m.ID }
func (m *Marker) Vertices() []core.Point { return []core.Point{m.Position} }
func (*Marker) shape()                   {}

// Path is an open polyline. Only collidable paths take part in hit tests.
type Path struct {
	ID         ID
	Points     []core.Point
	Margin     float64
	Collidable bool
}

func (p *Path) ShapeID() ID            { return p.ID }
func (p *Path) Vertices() []core.Point { return p.Points }
func (*Path) shape()                   {}

// SelectionBox is the transient rectangle drawn during a box gesture.
type SelectionBox struct {
	ID       ID
	Position core.Point
	Size     core.Point
	Visible  bool
}

func (b *SelectionBox) ShapeID() ID { return b.ID }
func (*SelectionBox) shape()        {}

// Bounds returns the box geometry.
func (b *SelectionBox) Bounds() core.Rect {
	return core.Rect{Position: b.Position, Size: b.Size}
}

// Vertices returns the corners clockwise from the top-left.
func (b *SelectionBox) Vertices() []core.Point {
	return b.Bounds().Vertices()
}

// Show makes the box visible as a single point at p.
func (b *SelectionBox) Show(p core.Point) {
	b.Position = p
	b.Size = core.Point{}
	b.Visible = true
}

// Adjust spans the box between two corners.
func (b *SelectionBox) Adjust(from, to core.Point) {
	r := core.Span(from, to)
	b.Position, b.Size = r.Position, r.Size
}

// Hide clears the box.
func (b *SelectionBox) Hide() {
	b.Visible = false
	b.Size = core.Point{}
}

// Margin returns the proximity buffer of s.
func Margin(s Shape) float64 {
	switch v := s.(type) {
	case *Rectangle:
		return v.Margin
	case *Component:
		return v.Margin
	case *Path:
		return v.Margin
	default:
		return 0
	}
}

// Bounds returns the axis-aligned bounds of s.
func Bounds(s Shape) core.Rect {
	return geometry.BoundingBox(s.Vertices())
}

// Collide tests s against a polygon. Selection boxes and non-collidable
// paths never collide.
func Collide(s Shape, test []core.Point, mode geometry.CollisionMode) bool {
	switch v := s.(type) {
	case *Rectangle:
		return geometry.Collides(v.Vertices(), test, v.Margin, mode)
	case *Component:
		return geometry.Collides(v.Vertices(), test, v.Margin, mode)
	case *Marker:
		return geometry.Collides(v.Vertices(), test, 0, mode)
	case *Path:
		if !v.Collidable {
			return false
		}
		return geometry.PathCollides(test, v.Points, v.Margin, mode)
	default:
		return false
	}
}

// Translate moves s by delta.
func Translate(s Shape, delta core.Point) {
	switch v := s.(type) {
	case *Rectangle:
		v.Position = v.Position.Add(delta)
	case *Component:
		v.Position = v.Position.Add(delta)
	case *Marker:
		v.Position = v.Position.Add(delta)
	case *Path:
		v.Points = core.Path{Points: v.Points}.Translate(delta).Points
	case *SelectionBox:
		v.Position = v.Position.Add(delta)
	}
}

// Resizable returns the box of a shape that supports resizing.
func Resizable(s Shape) (*Rectangle, bool) {
	switch v := s.(type) {
	case *Rectangle:
		return v, true
	case *Component:
		return &v.Rectangle, true
	default:
		return nil, false
	}
}

// Label returns the editable text of s.
func Label(s Shape) (string, bool) {
	switch v := s.(type) {
	case *Rectangle:
		return v.Label, true
	case *Component:
		return v.Label, true
	case *Marker:
		return v.Label, true
	default:
		return "", false
	}
}

// SetLabel replaces the text of s. It reports false for variants without a label.
func SetLabel(s Shape, label string) bool {
	switch v := s.(type) {
	case *Rectangle:
		v.Label = label
	case *Component:
		v.Label = label
	case *Marker:
		v.Label = label
	default:
		return false
	}
	return true
}
