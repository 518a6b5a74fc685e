package diagram

import (
	"fmt"

	"github.com/samber/lo"

	"flowdesigner/core"
	"flowdesigner/geometry"
)

// Scene owns every shape, connection point and connection of one canvas.
// The shape order is the z-order: index 0 is the front.
type Scene struct {
	Width, Height float64

	shapes      map[ID]Shape
	order       []ID
	points      map[ID]*ConnectionPoint
	connections map[ID]*Connection
	links       []ID
	nextID      ID
}

// NewScene creates an empty scene of the given size.
func NewScene(width, height float64) *Scene {
	return &Scene{
		Width:       width,
		Height:      height,
		shapes:      make(map[ID]Shape),
		points:      make(map[ID]*ConnectionPoint),
		connections: make(map[ID]*Connection),
	}
}

// Bounds returns the canvas rectangle.
func (s *Scene) Bounds() core.Rect {
	return core.R(0, 0, s.Width, s.Height)
}

func (s *Scene) allocate() ID {
	id := s.nextID
	s.nextID++
	return id
}

// Add assigns shape a fresh ID and places it at the back of the z-order.
func (s *Scene) Add(shape Shape) ID {
	id := s.allocate()
	switch v := shape.(type) {
	case *Rectangle:
		v.ID = id
	case *Component:
		v.ID = id
		v.Points = nil
	case *Marker:
		v.ID = id
	case *Path:
		v.ID = id
	case *SelectionBox:
		v.ID = id
	}
	s.shapes[id] = shape
	s.order = append(s.order, id)
	return id
}

// Remove deletes a shape. Removing a component also removes its connection
// points and every connection that uses them.
func (s *Scene) Remove(id ID) bool {
	shape, ok := s.shapes[id]
	if !ok {
		return false
	}
	if c, ok := shape.(*Component); ok {
		for _, p := range append([]ID(nil), c.Points...) {
			s.RemovePoint(p)
		}
	}
	delete(s.shapes, id)
	s.order = lo.Without(s.order, id)
	return true
}

// Shape looks up a shape by ID.
func (s *Scene) Shape(id ID) (Shape, bool) {
	shape, ok := s.shapes[id]
	return shape, ok
}

// Component looks up a component by ID.
func (s *Scene) Component(id ID) (*Component, bool) {
	c, ok := s.shapes[id].(*Component)
	return c, ok
}

// Shapes returns every shape front to back.
func (s *Scene) Shapes() []Shape {
	return lo.Map(s.order, func(id ID, _ int) Shape { return s.shapes[id] })
}

// Components returns every component front to back.
func (s *Scene) Components() []*Component {
	return lo.FilterMap(s.order, func(id ID, _ int) (*Component, bool) {
		c, ok := s.shapes[id].(*Component)
		return c, ok
	})
}

// Order returns a copy of the z-order.
func (s *Scene) Order() []ID {
	return append([]ID(nil), s.order...)
}

// AddPoint registers a connection point on its owner and returns its ID.
func (s *Scene) AddPoint(p *ConnectionPoint) (ID, error) {
	owner, ok := s.Component(p.Owner)
	if !ok {
		return NoID, fmt.Errorf("owner %d: %w", p.Owner, ErrNotFound)
	}
	p.ID = s.allocate()
	p.Connections = nil
	if p.Size == 0 {
		p.Size = DefaultPointSize
	}
	s.points[p.ID] = p
	owner.Points = append(owner.Points, p.ID)
	return p.ID, nil
}

// Point looks up a connection point by ID.
func (s *Scene) Point(id ID) (*ConnectionPoint, bool) {
	p, ok := s.points[id]
	return p, ok
}

// Points returns every connection point, grouped by owner front to back.
func (s *Scene) Points() []*ConnectionPoint {
	var out []*ConnectionPoint
	for _, c := range s.Components() {
		for _, id := range c.Points {
			out = append(out, s.points[id])
		}
	}
	return out
}

// Owner returns the component a connection point belongs to.
func (s *Scene) Owner(point ID) (*Component, bool) {
	p, ok := s.points[point]
	if !ok {
		return nil, false
	}
	return s.Component(p.Owner)
}

// RemovePoint deletes a connection point together with its connections.
func (s *Scene) RemovePoint(id ID) bool {
	p, ok := s.points[id]
	if !ok {
		return false
	}
	for _, c := range append([]ID(nil), p.Connections...) {
		s.Break(c)
	}
	// Break may already have pruned the point.
	if _, ok := s.points[id]; ok {
		s.dropPoint(p)
	}
	return true
}

func (s *Scene) dropPoint(p *ConnectionPoint) {
	if owner, ok := s.Component(p.Owner); ok {
		owner.Points = lo.Without(owner.Points, p.ID)
	}
	delete(s.points, p.ID)
}

// Connect joins two distinct connection points.
func (s *Scene) Connect(a, b ID) (*Connection, error) {
	pa, ok := s.points[a]
	if !ok {
		return nil, fmt.Errorf("point %d: %w", a, ErrNotFound)
	}
	pb, ok := s.points[b]
	if !ok {
		return nil, fmt.Errorf("point %d: %w", b, ErrNotFound)
	}
	if a == b {
		return nil, fmt.Errorf("cannot connect point %d to itself", a)
	}

	c := &Connection{ID: s.allocate(), A: a, B: b}
	s.connections[c.ID] = c
	s.links = append(s.links, c.ID)
	pa.Connections = append(pa.Connections, c.ID)
	pb.Connections = append(pb.Connections, c.ID)
	return c, nil
}

// Connection looks up a connection by ID.
func (s *Scene) Connection(id ID) (*Connection, bool) {
	c, ok := s.connections[id]
	return c, ok
}

// Connections returns every connection in creation order.
func (s *Scene) Connections() []*Connection {
	return lo.Map(s.links, func(id ID, _ int) *Connection { return s.connections[id] })
}

// Break removes a connection from both endpoints. An endpoint left without
// connections is destroyed.
func (s *Scene) Break(id ID) bool {
	c, ok := s.connections[id]
	if !ok {
		return false
	}
	delete(s.connections, id)
	s.links = lo.Without(s.links, id)

	for _, end := range []ID{c.A, c.B} {
		p, ok := s.points[end]
		if !ok {
			continue
		}
		p.Connections = lo.Without(p.Connections, id)
		if len(p.Connections) == 0 {
			s.dropPoint(p)
		}
	}
	return true
}

// ConnectionsOf returns the connections that terminate on a component.
func (s *Scene) ConnectionsOf(component ID) []*Connection {
	return lo.Filter(s.Connections(), func(c *Connection, _ int) bool {
		return s.ownerOf(c.A) == component || s.ownerOf(c.B) == component
	})
}

// Endpoints returns the two points of a connection.
func (s *Scene) Endpoints(c *Connection) (*ConnectionPoint, *ConnectionPoint, bool) {
	a, okA := s.points[c.A]
	b, okB := s.points[c.B]
	return a, b, okA && okB
}

func (s *Scene) ownerOf(point ID) ID {
	if p, ok := s.points[point]; ok {
		return p.Owner
	}
	return NoID
}

// ToggleMarker adds a marker at p, or removes the marker already there.
// It reports the marker ID and whether it was added.
func (s *Scene) ToggleMarker(p core.Point) (ID, bool) {
	for _, id := range s.order {
		if m, ok := s.shapes[id].(*Marker); ok && m.Position.Near(p) {
			s.Remove(id)
			return id, false
		}
	}
	return s.Add(&Marker{Position: p}), true
}

// BringToFront moves a shape to the front of the z-order.
func (s *Scene) BringToFront(id ID) bool {
	if !lo.Contains(s.order, id) {
		return false
	}
	s.order = append([]ID{id}, lo.Without(s.order, id)...)
	return true
}

// SendToBack moves a shape to the back of the z-order.
func (s *Scene) SendToBack(id ID) bool {
	if !lo.Contains(s.order, id) {
		return false
	}
	s.order = append(lo.Without(s.order, id), id)
	return true
}

// BringForward swaps a shape with the one in front of it.
func (s *Scene) BringForward(id ID) bool {
	i := lo.IndexOf(s.order, id)
	if i <= 0 {
		return false
	}
	s.order[i-1], s.order[i] = s.order[i], s.order[i-1]
	return true
}

// SendBackward swaps a shape with the one behind it.
func (s *Scene) SendBackward(id ID) bool {
	i := lo.IndexOf(s.order, id)
	if i < 0 || i == len(s.order)-1 {
		return false
	}
	s.order[i+1], s.order[i] = s.order[i], s.order[i+1]
	return true
}

// ComponentAt returns the front-most component containing p.
func (s *Scene) ComponentAt(p core.Point) (*Component, bool) {
	return lo.Find(s.Components(), func(c *Component) bool {
		return Collide(c, []core.Point{p}, geometry.Normal)
	})
}

// PointAt returns the front-most connection point whose anchor is within
// radius of p on both axes.
func (s *Scene) PointAt(p core.Point, radius float64) (*ConnectionPoint, bool) {
	return lo.Find(s.Points(), func(cp *ConnectionPoint) bool {
		return core.Rect{Position: cp.Anchor}.Inflate(radius).Contains(p)
	})
}

// ConnectionAt returns the first connection whose path passes within
// radius of p.
func (s *Scene) ConnectionAt(p core.Point, radius float64) (*Connection, bool) {
	probe := core.Rect{Position: p}.Inflate(radius).Vertices()
	return lo.Find(s.Connections(), func(c *Connection) bool {
		return geometry.PathCollides(probe, c.Path.Points, 0, geometry.Normal)
	})
}

// Colliding returns the components, front to back, that collide with the
// test polygon, skipping the excluded IDs.
func (s *Scene) Colliding(test []core.Point, mode geometry.CollisionMode, exclude ...ID) []*Component {
	return lo.Filter(s.Components(), func(c *Component, _ int) bool {
		return !lo.Contains(exclude, c.ID) && Collide(c, test, mode)
	})
}
