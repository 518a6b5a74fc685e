package pathfinding

import (
	"errors"
	"fmt"
	"log/slog"

	"flowdesigner/core"
	"flowdesigner/obstacles"
)

// ErrRoutingFailure is returned when no route can be produced.
var ErrRoutingFailure = errors.New("routing failure")

// DefaultResolution is the grid spacing used when no policy is given.
const DefaultResolution = 0.5

// Router finds obstacle-free polylines across a canvas. It keeps no state
// between calls.
type Router struct {
	Policy   NeighbourPolicy
	Costs    PathCost
	Padding  float64 // Inflation applied to every obstacle
	MaxNodes int     // Search budget, 0 means unlimited

	logger *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithPolicy sets the neighbour policy.
func WithPolicy(p NeighbourPolicy) Option {
	return func(r *Router) { r.Policy = p }
}

// WithCosts sets the cost model.
func WithCosts(c PathCost) Option {
	return func(r *Router) { r.Costs = c }
}

// WithPadding sets how far obstacles are inflated.
func WithPadding(p float64) Option {
	return func(r *Router) { r.Padding = p }
}

// WithMaxNodes bounds the number of nodes a search may expand.
func WithMaxNodes(n int) Option {
	return func(r *Router) { r.MaxNodes = n }
}

// WithLogger sets the logger routing failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// NewRouter returns a Router stepping straight at DefaultResolution.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		Policy:  Straight(DefaultResolution),
		Costs:   DefaultPathCost,
		Padding: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route returns a path from start to end that avoids every obstacle. On
// failure the path is empty and the error wraps ErrRoutingFailure.
func (r *Router) Route(start, end core.Point, rects []core.Rect, bounds core.Rect) ([]core.Point, error) {
	_, points, err := r.Plan(start, end, rects, bounds)
	if err != nil {
		r.log().Warn("route failed", "start", start, "end", end, "err", err)
		return nil, err
	}
	return points, nil
}

// Plan is Route that also returns the obstacle map the search ran on. The
// map is nil when it could not be built.
func (r *Router) Plan(start, end core.Point, rects []core.Rect, bounds core.Rect) (m *obstacles.Map, points []core.Point, err error) {
	defer func() {
		if v := recover(); v != nil {
			points = nil
			err = fmt.Errorf("%w: %v", ErrRoutingFailure, v)
		}
	}()

	policy := r.Policy
	if policy == nil {
		policy = Straight(DefaultResolution)
	}

	m, err = obstacles.NewBuilder(bounds, policy.Resolution()).
		Padding(r.Padding).
		AddObstacle(rects...).
		SetStart(start).
		SetEnd(end).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRoutingFailure, err)
	}

	cells, err := search(m, policy, r.Costs, r.MaxNodes)
	if err != nil {
		return m, nil, fmt.Errorf("%w: %w", ErrRoutingFailure, err)
	}

	return m, withEndpoints(SimplifyPath(m.Points(cells)), start, end), nil
}

// withEndpoints makes the path begin at start and finish at end exactly.
// Off-grid endpoints are joined to the nearest grid vertex.
func withEndpoints(points []core.Point, start, end core.Point) []core.Point {
	if start.Near(end) {
		return []core.Point{start}
	}
	if !points[0].Near(start) {
		points = append([]core.Point{start}, points...)
	} else {
		points[0] = start
	}
	last := len(points) - 1
	if !points[last].Near(end) {
		points = append(points, end)
	} else {
		points[last] = end
	}
	return points
}

// Clearance is the distance kept between a path and every obstacle.
func (r *Router) Clearance() float64 {
	return r.Padding
}

func (r *Router) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}
