// Package diagram holds the scene model: shapes, connection points and the
// connections between them, all addressed by ID.
package diagram

import (
	"errors"

	"flowdesigner/core"
)

// ID identifies a shape, connection point or connection within a Scene.
// All three share one id space.
type ID int

// NoID is the zero reference.
const NoID ID = -1

// ErrNotFound is returned when an ID does not resolve in the scene tables.
var ErrNotFound = errors.New("not found")

// EndMode is the visual treatment of one end of a connection.
type EndMode int

const (
	EndNone EndMode = iota
	EndArrow
)

// String returns the string representation of an EndMode.
func (m EndMode) String() string {
	switch m {
	case EndNone:
		return "None"
	case EndArrow:
		return "Arrow"
	default:
		return "Unknown"
	}
}

// DefaultPointSize is the visual size of a new connection point.
const DefaultPointSize = 1

// ConnectionPoint is the attachment of one or more connections to the border
// of a Component.
type ConnectionPoint struct {
	ID    ID
	Owner ID

	// Anchor lies on the owner's border, strictly between two corners.
	Anchor core.Point
	// Delta is the owner's midpoint minus Anchor.
	Delta core.Point
	// Face is the border edge Anchor sits on.
	Face core.Direction

	Connections []ID
	Size        float64
}

// Connection joins two connection points.
type Connection struct {
	ID       ID
	A, B     ID
	Path     core.Path
	ModeA    EndMode
	ModeB    EndMode
	Selected bool
}

// Touches reports whether point is one of the connection's endpoints.
func (c *Connection) Touches(point ID) bool {
	return c.A == point || c.B == point
}

// Other returns the endpoint opposite point, or NoID if point is not an endpoint.
func (c *Connection) Other(point ID) ID {
	switch point {
	case c.A:
		return c.B
	case c.B:
		return c.A
	default:
		return NoID
	}
}
