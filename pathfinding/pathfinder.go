// Package pathfinding routes connections around obstacles with an A* search
// over an obstacles.Map.
package pathfinding

import (
	"fmt"
	"strings"

	"flowdesigner/core"
	"flowdesigner/geometry"
	"flowdesigner/obstacles"
)

// PathCost defines the cost model for the search. Costs are per grid step.
type PathCost struct {
	StraightCost int // Base cost for an axis-aligned step
	TurnCost     int // Penalty for changing step direction
	DiagonalCost int // Base cost for a diagonal step
}

// DefaultPathCost provides reasonable defaults for routing connections.
var DefaultPathCost = PathCost{
	StraightCost: 10,
	TurnCost:     20,
	DiagonalCost: 14,
}

// Step is a move between neighbouring grid cells.
type Step struct {
	DX, DY int
}

// Diagonal reports whether the step changes both coordinates.
func (s Step) Diagonal() bool {
	return s.DX != 0 && s.DY != 0
}

// NeighbourPolicy decides the grid resolution and which neighbours a cell has.
type NeighbourPolicy interface {
	Resolution() float64
	Steps() []Step
}

type uniformPolicy struct {
	resolution float64
	steps      []Step
}

func (p uniformPolicy) Resolution() float64 { return p.resolution }
func (p uniformPolicy) Steps() []Step        { return p.steps }

var (
	straightSteps = []Step{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	diagonalSteps = []Step{{0, -1}, {1, 0}, {0, 1}, {-1, 0}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}
)

// Straight steps north, east, south and west, resolution units apart.
func Straight(resolution float64) NeighbourPolicy {
	return uniformPolicy{resolution: resolution, steps: straightSteps}
}

// Diagonal adds the four diagonal steps to Straight.
func Diagonal(resolution float64) NeighbourPolicy {
	return uniformPolicy{resolution: resolution, steps: diagonalSteps}
}

// orderSteps returns the policy's steps with those heading towards the goal
// first, so ties expand symmetrically instead of favouring one axis.
func orderSteps(steps []Step, from, goal obstacles.Cell) []Step {
	dx, dy := sign(goal.X-from.X), sign(goal.Y-from.Y)
	if dx == 0 && dy == 0 {
		return steps
	}
	ordered := make([]Step, 0, len(steps))
	var rest []Step
	for _, s := range steps {
		if (s.DX != 0 && s.DX == dx) || (s.DY != 0 && s.DY == dy) {
			ordered = append(ordered, s)
		} else {
			rest = append(rest, s)
		}
	}
	return append(ordered, rest...)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// IsAligned checks if three points lie on one line.
func IsAligned(p1, p2, p3 core.Point) bool {
	d1 := p2.Sub(p1)
	d2 := p3.Sub(p2)
	return geometry.NearlyEqual(d1.X*d2.Y, d1.Y*d2.X, core.Tolerance)
}

// SimplifyPath removes waypoints that sit on the segment joining their neighbours.
func SimplifyPath(points []core.Point) []core.Point {
	if len(points) <= 2 {
		return points
	}

	simplified := []core.Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		prev := simplified[len(simplified)-1]
		if !IsAligned(prev, points[i], points[i+1]) {
			simplified = append(simplified, points[i])
		}
	}
	// Always include the last point
	return append(simplified, points[len(points)-1])
}

// PathToString converts a path to a string representation for debugging.
func PathToString(points []core.Point) string {
	if len(points) == 0 {
		return "empty path"
	}

	var result strings.Builder
	for i, p := range points {
		if i > 0 {
			result.WriteString(" -> ")
		}
		result.WriteString(fmt.Sprintf("(%g,%g)", p.X, p.Y))
	}
	return result.String()
}
