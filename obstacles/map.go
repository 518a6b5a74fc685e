// Package obstacles builds the discretized obstacle map that path search runs on.
package obstacles

import (
	"errors"
	"fmt"
	"math"

	"flowdesigner/core"
)

// MaxCells caps the size of a map so an oversized canvas fails instead of
// exhausting memory.
const MaxCells = 1 << 24

var (
	// ErrInvalidMap is returned by Build when the map cannot be constructed.
	ErrInvalidMap = errors.New("invalid obstacle map")
	// ErrOutOfBounds is returned when the start or end lies outside the map.
	ErrOutOfBounds = errors.New("point outside map bounds")
)

// Cell addresses one grid vertex of a Map.
type Cell struct {
	X, Y int
}

// Zone is the inclusive cell range covered by one registered obstacle.
type Zone struct {
	MinX, MinY, MaxX, MaxY int
	Rect                   core.Rect
}

// Map is a grid laid over a canvas at a fixed resolution. Grid vertex (0,0)
// sits on the canvas origin.
type Map struct {
	Bounds     core.Rect
	Resolution float64
	Cols, Rows int
	Start, End Cell
	Zones      []Zone

	blocked []bool
}

// Builder collects obstacles, start and end before building a Map.
type Builder struct {
	bounds     core.Rect
	resolution float64
	padding    float64
	obstacles  []core.Rect
	start, end *core.Point
}

// NewBuilder starts a map over bounds with cells resolution units apart.
// Obstacles are inflated by one unit unless Padding says otherwise.
func NewBuilder(bounds core.Rect, resolution float64) *Builder {
	return &Builder{bounds: bounds, resolution: resolution, padding: 1}
}

// Padding sets how far each obstacle is inflated on every side.
func (b *Builder) Padding(p float64) *Builder {
	b.padding = p
	return b
}

// AddObstacle registers rectangles to avoid.
func (b *Builder) AddObstacle(rects ...core.Rect) *Builder {
	b.obstacles = append(b.obstacles, rects...)
	return b
}

// SetStart sets the search origin.
func (b *Builder) SetStart(p core.Point) *Builder {
	b.start = &p
	return b
}

// SetEnd sets the search target.
func (b *Builder) SetEnd(p core.Point) *Builder {
	b.end = &p
	return b
}

// Build rasterises the obstacles. The start and end cells are always free.
func (b *Builder) Build() (*Map, error) {
	if b.resolution <= 0 || math.IsNaN(b.resolution) {
		return nil, fmt.Errorf("%w: resolution %v", ErrInvalidMap, b.resolution)
	}
	if b.bounds.Size.X <= 0 || b.bounds.Size.Y <= 0 {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidMap, b.bounds.Size)
	}
	if b.start == nil || b.end == nil {
		return nil, fmt.Errorf("%w: start and end must be set", ErrInvalidMap)
	}

	cols := int(math.Floor(b.bounds.Size.X/b.resolution)) + 1
	rows := int(math.Floor(b.bounds.Size.Y/b.resolution)) + 1
	if cols*rows > MaxCells {
		return nil, fmt.Errorf("%w: %dx%d cells exceeds limit", ErrInvalidMap, cols, rows)
	}

	m := &Map{
		Bounds:     b.bounds,
		Resolution: b.resolution,
		Cols:       cols,
		Rows:       rows,
		blocked:    make([]bool, cols*rows),
	}

	var ok bool
	if m.Start, ok = m.CellAt(*b.start); !ok {
		return nil, fmt.Errorf("start %v: %w", *b.start, ErrOutOfBounds)
	}
	if m.End, ok = m.CellAt(*b.end); !ok {
		return nil, fmt.Errorf("end %v: %w", *b.end, ErrOutOfBounds)
	}

	for _, r := range b.obstacles {
		m.block(r.Inflate(b.padding))
	}
	m.blocked[m.index(m.Start)] = false
	m.blocked[m.index(m.End)] = false
	return m, nil
}

// block marks every grid vertex inside r, border included.
func (m *Map) block(r core.Rect) {
	minX := int(math.Ceil((r.Left() - m.Bounds.Left()) / m.Resolution))
	minY := int(math.Ceil((r.Top() - m.Bounds.Top()) / m.Resolution))
	maxX := int(math.Floor((r.Right() - m.Bounds.Left()) / m.Resolution))
	maxY := int(math.Floor((r.Bottom() - m.Bounds.Top()) / m.Resolution))

	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, m.Cols-1), min(maxY, m.Rows-1)
	if minX > maxX || minY > maxY {
		return
	}

	m.Zones = append(m.Zones, Zone{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, Rect: r})
	for y := minY; y <= maxY; y++ {
		row := y * m.Cols
		for x := minX; x <= maxX; x++ {
			m.blocked[row+x] = true
		}
	}
}

func (m *Map) index(c Cell) int {
	return c.Y*m.Cols + c.X
}

// InBounds reports whether c is a vertex of the grid.
func (m *Map) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < m.Cols && c.Y >= 0 && c.Y < m.Rows
}

// Blocked reports whether c lies inside an obstacle or off the grid.
func (m *Map) Blocked(c Cell) bool {
	return !m.InBounds(c) || m.blocked[m.index(c)]
}

// CellAt snaps p to its nearest grid vertex.
func (m *Map) CellAt(p core.Point) (Cell, bool) {
	c := Cell{
		X: int(math.Round((p.X - m.Bounds.Left()) / m.Resolution)),
		Y: int(math.Round((p.Y - m.Bounds.Top()) / m.Resolution)),
	}
	return c, m.InBounds(c)
}

// Point returns the canvas position of a grid vertex.
func (m *Map) Point(c Cell) core.Point {
	return core.Pt(
		m.Bounds.Left()+float64(c.X)*m.Resolution,
		m.Bounds.Top()+float64(c.Y)*m.Resolution,
	)
}

// Points converts a cell sequence to canvas positions.
func (m *Map) Points(cells []Cell) []core.Point {
	points := make([]core.Point, len(cells))
	for i, c := range cells {
		points[i] = m.Point(c)
	}
	return points
}
