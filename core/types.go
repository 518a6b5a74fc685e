// Package core contains the fundamental types used throughout the flowdesigner engine.
package core

import "math"

// Tolerance is the distance below which two coordinates are considered equal.
const Tolerance = 1e-3

// Point represents a 2D coordinate on the canvas. It doubles as a vector
// when used for deltas, sizes and offsets.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale multiplies both components by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Mul multiplies component-wise.
func (p Point) Mul(q Point) Point {
	return Point{X: p.X * q.X, Y: p.Y * q.Y}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Near reports whether p and q are within Tolerance on both axes.
func (p Point) Near(q Point) bool {
	return math.Abs(p.X-q.X) < Tolerance && math.Abs(p.Y-q.Y) < Tolerance
}

// IsZero returns true for the zero vector.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Direction represents a cardinal direction. It is used as the face of a
// rectangle border a connection point is attached to.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Normal returns the outward unit vector of the face.
func (d Direction) Normal() Point {
	switch d {
	case North:
		return Point{Y: -1}
	case East:
		return Point{X: 1}
	case South:
		return Point{Y: 1}
	case West:
		return Point{X: -1}
	default:
		return Point{}
	}
}

// ResizeDirection is the border region a resize gesture grabs.
type ResizeDirection int

const (
	ResizeNone ResizeDirection = iota
	ResizeN
	ResizeNE
	ResizeE
	ResizeSE
	ResizeS
	ResizeSW
	ResizeW
	ResizeNW
)

// String returns the compass abbreviation.
func (r ResizeDirection) String() string {
	switch r {
	case ResizeN:
		return "N"
	case ResizeNE:
		return "NE"
	case ResizeE:
		return "E"
	case ResizeSE:
		return "SE"
	case ResizeS:
		return "S"
	case ResizeSW:
		return "SW"
	case ResizeW:
		return "W"
	case ResizeNW:
		return "NW"
	default:
		return "None"
	}
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Position Point
	Size     Point
}

// R is shorthand for a Rect at (x, y) with size (w, h).
func R(x, y, w, h float64) Rect {
	return Rect{Position: Point{X: x, Y: y}, Size: Point{X: w, Y: h}}
}

func (r Rect) Left() float64   { return r.Position.X }
func (r Rect) Top() float64    { return r.Position.Y }
func (r Rect) Right() float64  { return r.Position.X + r.Size.X }
func (r Rect) Bottom() float64 { return r.Position.Y + r.Size.Y }

func (r Rect) TopLeft() Point     { return r.Position }
func (r Rect) TopRight() Point    { return Point{X: r.Right(), Y: r.Top()} }
func (r Rect) BottomRight() Point { return Point{X: r.Right(), Y: r.Bottom()} }
func (r Rect) BottomLeft() Point  { return Point{X: r.Left(), Y: r.Bottom()} }

// MidPoint returns the centre of the rectangle.
func (r Rect) MidPoint() Point {
	return r.Position.Add(r.Size.Scale(0.5))
}

// Vertices returns the corners clockwise from the top-left.
func (r Rect) Vertices() []Point {
	return []Point{r.TopLeft(), r.TopRight(), r.BottomRight(), r.BottomLeft()}
}

// Contains checks if a point is within the rectangle, borders included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() &&
		p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Inflate grows the rectangle by m on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{
		Position: Point{X: r.Position.X - m, Y: r.Position.Y - m},
		Size:     Point{X: r.Size.X + 2*m, Y: r.Size.Y + 2*m},
	}
}

// Translate returns the rectangle moved by delta.
func (r Rect) Translate(delta Point) Rect {
	return Rect{Position: r.Position.Add(delta), Size: r.Size}
}

// Span returns a rectangle spanning two arbitrary corners.
func Span(a, b Point) Rect {
	return Rect{
		Position: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Size:     Point{X: math.Abs(a.X - b.X), Y: math.Abs(a.Y - b.Y)},
	}
}

// Path represents a route through the canvas.
type Path struct {
	Points []Point
}

// Length returns the number of points in the path.
func (p Path) Length() int {
	return len(p.Points)
}

// IsEmpty returns true if the path has no points.
func (p Path) IsEmpty() bool {
	return len(p.Points) == 0
}

// Translate moves every point of the path by delta.
func (p Path) Translate(delta Point) Path {
	points := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		points[i] = pt.Add(delta)
	}
	return Path{Points: points}
}
