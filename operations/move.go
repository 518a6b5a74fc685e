// Package operations implements the mutating gestures on a scene: moving a
// selection with collision push-through and resizing a box.
package operations

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"flowdesigner/connections"
	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/geometry"
)

// ErrBoundsViolation is returned when a move would push a shape's margin
// box off the canvas. Nothing stays moved.
var ErrBoundsViolation = errors.New("move leaves the canvas")

// MoveResult describes what a committed move touched.
type MoveResult struct {
	Moved      []diagram.ID // Shapes translated, primaries first
	Translated []diagram.ID // Connections shifted rigidly with both owners
	Rerouted   []diagram.ID // Connections routed again
}

// mover carries the state of one move increment.
type mover struct {
	scene   *diagram.Scene
	delta   core.Point
	moving  []diagram.ID
	journal []diagram.Shape
	abort   bool
}

// Move translates the primaries by delta. Components whose margin box the
// moved shapes run into are pushed along by the same delta, transitively.
// If any moved shape would leave the canvas the whole increment is undone
// and ErrBoundsViolation is returned. After a committed move, connections
// between two moved owners are shifted and the ones touching a moved shape
// are rerouted; the first routing error is returned with the result.
func Move(scene *diagram.Scene, router connections.Router, primaries []diagram.ID, delta core.Point) (MoveResult, error) {
	primaries = lo.Uniq(primaries)
	for _, id := range primaries {
		if _, ok := scene.Shape(id); !ok {
			return MoveResult{}, fmt.Errorf("shape %d: %w", id, diagram.ErrNotFound)
		}
	}
	if delta.IsZero() || len(primaries) == 0 {
		return MoveResult{}, nil
	}

	m := &mover{scene: scene, delta: delta, moving: append([]diagram.ID(nil), primaries...)}
	m.cascade()
	if m.abort {
		m.rollback()
		return MoveResult{}, ErrBoundsViolation
	}

	result := MoveResult{Moved: lo.Map(m.journal, func(s diagram.Shape, _ int) diagram.ID { return s.ShapeID() })}
	for _, id := range result.Moved {
		connections.OwnerMoved(scene, id)
	}
	err := m.updateConnections(router, &result)
	return result, err
}

// cascade works through the moving set. Each shape is checked against the
// canvas and then against the components not yet in the set.
func (m *mover) cascade() {
	queue := append([]diagram.ID(nil), m.moving...)
	for len(queue) > 0 && !m.abort {
		id := queue[0]
		queue = queue[1:]

		shape, ok := m.scene.Shape(id)
		if !ok {
			continue
		}
		before := diagram.Bounds(shape)
		diagram.Translate(shape, m.delta)
		m.journal = append(m.journal, shape)

		if geometry.Escapes(before, diagram.Bounds(shape), diagram.Margin(shape), m.scene.Bounds()) {
			m.abort = true
			return
		}

		for _, c := range m.scene.Colliding(shape.Vertices(), geometry.Margin, m.moving...) {
			m.moving = append(m.moving, c.ID)
			queue = append(queue, c.ID)
		}
	}
}

// rollback undoes every journalled translation.
func (m *mover) rollback() {
	for i := len(m.journal) - 1; i >= 0; i-- {
		diagram.Translate(m.journal[i], m.delta.Neg())
	}
	m.journal = nil
}

func (m *mover) updateConnections(router connections.Router, result *MoveResult) error {
	moved := result.Moved
	var first error
	for _, conn := range m.scene.Connections() {
		a, b, ok := m.scene.Endpoints(conn)
		if !ok {
			continue
		}
		ownsA, ownsB := lo.Contains(moved, a.Owner), lo.Contains(moved, b.Owner)

		if ownsA && ownsB {
			conn.Path = conn.Path.Translate(m.delta)
			result.Translated = append(result.Translated, conn.ID)
			continue
		}
		if !ownsA && !ownsB && !m.crossesMoved(conn) {
			continue
		}

		result.Rerouted = append(result.Rerouted, conn.ID)
		if err := connections.Redraw(m.scene, router, conn); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// crossesMoved reports whether the connection's path runs into the margin
// box of a moved shape.
func (m *mover) crossesMoved(conn *diagram.Connection) bool {
	return lo.SomeBy(m.journal, func(s diagram.Shape) bool {
		return geometry.PathCollides(s.Vertices(), conn.Path.Points, diagram.Margin(s), geometry.Margin)
	})
}
