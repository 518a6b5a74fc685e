package connections

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"flowdesigner/core"
	"flowdesigner/diagram"
)

// Router finds an obstacle-free path between two canvas points.
type Router interface {
	Route(start, end core.Point, obstacles []core.Rect, bounds core.Rect) ([]core.Point, error)
}

// ClearanceRouter is a Router that keeps paths a fixed distance from every
// obstacle. Routes to and from an owner start at least that far out.
type ClearanceRouter interface {
	Router
	Clearance() float64
}

// standoff is how far from its owner a route endpoint is placed.
func standoff(router Router, owner *diagram.Component) float64 {
	if r, ok := router.(ClearanceRouter); ok {
		return math.Max(owner.Margin, r.Clearance())
	}
	return owner.Margin
}

// NewPoint creates a connection point on owner, starting at the middle of
// its east face and placed toward external.
func NewPoint(scene *diagram.Scene, owner diagram.ID, external core.Point) (*diagram.ConnectionPoint, error) {
	c, ok := scene.Component(owner)
	if !ok {
		return nil, fmt.Errorf("component %d: %w", owner, diagram.ErrNotFound)
	}

	b := c.Bounds()
	p := &diagram.ConnectionPoint{
		Owner:  owner,
		Anchor: core.Pt(b.Right(), b.MidPoint().Y),
		Face:   core.East,
		Size:   diagram.DefaultPointSize,
	}
	p.Delta = b.MidPoint().Sub(p.Anchor)
	Place(c, p, external)

	if _, err := scene.AddPoint(p); err != nil {
		return nil, err
	}
	return p, nil
}

// OwnerMoved translates every point of a moved component and returns the
// points whose anchor changed.
func OwnerMoved(scene *diagram.Scene, owner diagram.ID) []diagram.ID {
	return recomputeAll(scene, owner, Moved)
}

// OwnerResized re-clamps every point of a resized component and returns
// the points whose anchor changed.
func OwnerResized(scene *diagram.Scene, owner diagram.ID) []diagram.ID {
	return recomputeAll(scene, owner, Resized)
}

func recomputeAll(scene *diagram.Scene, owner diagram.ID, kind Change) []diagram.ID {
	c, ok := scene.Component(owner)
	if !ok {
		return nil
	}
	return lo.Filter(c.Points, func(id diagram.ID, _ int) bool {
		p, ok := scene.Point(id)
		return ok && Recompute(c, p, kind)
	})
}

// Obstacles returns the bounds of every component in the scene.
func Obstacles(scene *diagram.Scene) []core.Rect {
	return lo.Map(scene.Components(), func(c *diagram.Component, _ int) core.Rect {
		return c.Bounds()
	})
}

// Redraw routes a connection between its two endpoints. The path starts and
// ends with a short stub off each anchor and is routed between points one
// margin away from each owner, or the router's clearance if that is larger. On failure the path is left empty and the
// routing error is returned.
func Redraw(scene *diagram.Scene, router Router, conn *diagram.Connection) error {
	conn.Path = core.Path{}

	a, b, ok := scene.Endpoints(conn)
	if !ok {
		return fmt.Errorf("connection %d endpoints: %w", conn.ID, diagram.ErrNotFound)
	}
	ownerA, okA := scene.Component(a.Owner)
	ownerB, okB := scene.Component(b.Owner)
	if !okA || !okB {
		return fmt.Errorf("connection %d owners: %w", conn.ID, diagram.ErrNotFound)
	}

	route, err := router.Route(
		Offset(ownerA, a, standoff(router, ownerA)),
		Offset(ownerB, b, standoff(router, ownerB)),
		Obstacles(scene),
		scene.Bounds(),
	)
	if err != nil {
		return fmt.Errorf("redraw connection %d: %w", conn.ID, err)
	}

	points := make([]core.Point, 0, len(route)+2)
	points = append(points, Offset(ownerA, a, a.Size))
	points = append(points, route...)
	points = append(points, Offset(ownerB, b, b.Size))
	conn.Path = core.Path{Points: points}
	return nil
}

// RedrawPoints redraws every connection attached to the given points, each
// connection once. It returns the redrawn connection IDs and the first
// routing error.
func RedrawPoints(scene *diagram.Scene, router Router, points []diagram.ID) ([]diagram.ID, error) {
	var ids []diagram.ID
	for _, id := range points {
		if p, ok := scene.Point(id); ok {
			ids = append(ids, p.Connections...)
		}
	}
	ids = lo.Uniq(ids)

	var first error
	for _, id := range ids {
		conn, ok := scene.Connection(id)
		if !ok {
			continue
		}
		if err := Redraw(scene, router, conn); err != nil && first == nil {
			first = err
		}
	}
	return ids, first
}

// Preview routes a provisional path from a point toward target, used while a
// new connection is being dragged. The path starts with the anchor stub.
func Preview(scene *diagram.Scene, router Router, point diagram.ID, target core.Point) ([]core.Point, error) {
	p, ok := scene.Point(point)
	if !ok {
		return nil, fmt.Errorf("point %d: %w", point, diagram.ErrNotFound)
	}
	owner, ok := scene.Component(p.Owner)
	if !ok {
		return nil, fmt.Errorf("component %d: %w", p.Owner, diagram.ErrNotFound)
	}

	route, err := router.Route(Offset(owner, p, standoff(router, owner)), target, Obstacles(scene), scene.Bounds())
	if err != nil {
		return nil, fmt.Errorf("preview from point %d: %w", point, err)
	}
	return append([]core.Point{Offset(owner, p, p.Size)}, route...), nil
}
