package pathfinding

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowdesigner/core"
	"flowdesigner/geometry"
	"flowdesigner/obstacles"
)

func TestRouteSimplePaths(t *testing.T) {
	bounds := core.R(0, 0, 20, 20)

	tests := []struct {
		name      string
		router    *Router
		start     core.Point
		end       core.Point
		wantLen   int
		wantShape []core.Point
	}{
		{
			name:      "Direct horizontal path",
			router:    NewRouter(),
			start:     core.Pt(0, 5),
			end:       core.Pt(10, 5),
			wantShape: []core.Point{core.Pt(0, 5), core.Pt(10, 5)},
		},
		{
			name:      "Direct vertical path",
			router:    NewRouter(),
			start:     core.Pt(3, 1),
			end:       core.Pt(3, 15),
			wantShape: []core.Point{core.Pt(3, 1), core.Pt(3, 15)},
		},
		{
			name:    "L-shaped path",
			router:  NewRouter(),
			start:   core.Pt(0, 0),
			end:     core.Pt(10, 10),
			wantLen: 3,
		},
		{
			name:      "Diagonal policy",
			router:    NewRouter(WithPolicy(Diagonal(1))),
			start:     core.Pt(0, 0),
			end:       core.Pt(10, 10),
			wantShape: []core.Point{core.Pt(0, 0), core.Pt(10, 10)},
		},
		{
			name:      "Same start and end",
			router:    NewRouter(),
			start:     core.Pt(4, 4),
			end:       core.Pt(4, 4),
			wantShape: []core.Point{core.Pt(4, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := tt.router.Route(tt.start, tt.end, nil, bounds)
			if err != nil {
				t.Fatalf("Route failed: %v", err)
			}
			if tt.wantShape != nil {
				if diff := cmp.Diff(tt.wantShape, path); diff != "" {
					t.Errorf("path mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if len(path) < tt.wantLen {
				t.Errorf("got %d points %v, want at least %d", len(path), path, tt.wantLen)
			}
			assertAxisAligned(t, path)
		})
	}
}

func TestRouteAvoidsObstacle(t *testing.T) {
	bounds := core.R(0, 0, 800, 600)
	obstacle := core.R(300, 250, 100, 100)
	inflated := obstacle.Inflate(1)

	path, err := NewRouter().Route(core.Pt(200, 300), core.Pt(500, 300), []core.Rect{obstacle}, bounds)
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if path[0] != core.Pt(200, 300) || path[len(path)-1] != core.Pt(500, 300) {
		t.Fatalf("path %v does not join the endpoints", path)
	}
	assertAxisAligned(t, path)

	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		length := max(geometry.Abs(int(b.X-a.X)), geometry.Abs(int(b.Y-a.Y)))
		for s := 0; s <= 2*length; s++ {
			p := a.Add(b.Sub(a).Scale(float64(s) / float64(2*length)))
			if inflated.Contains(p) {
				t.Fatalf("segment %v-%v passes through the obstacle at %v", a, b, p)
			}
		}
	}
}

func TestRouteFailures(t *testing.T) {
	bounds := core.R(0, 0, 40, 40)
	walled := []core.Rect{
		core.R(10, 10, 20, 1),
		core.R(10, 29, 20, 1),
		core.R(10, 10, 1, 20),
		core.R(29, 10, 1, 20),
	}

	tests := []struct {
		name   string
		router *Router
		start  core.Point
		end    core.Point
		rects  []core.Rect
		bounds core.Rect
		cause  error
	}{
		{"start outside", NewRouter(), core.Pt(-10, 2), core.Pt(20, 2), nil, bounds, obstacles.ErrOutOfBounds},
		{"empty canvas", NewRouter(), core.Pt(0, 0), core.Pt(0, 0), nil, core.Rect{}, obstacles.ErrInvalidMap},
		{"enclosed goal", NewRouter(), core.Pt(2, 2), core.Pt(20, 20), walled, bounds, errNoPath},
		{"node budget", NewRouter(WithMaxNodes(5)), core.Pt(2, 2), core.Pt(38, 38), nil, bounds, errNodeLimit},
		{"bad policy", NewRouter(WithPolicy(Straight(0))), core.Pt(2, 2), core.Pt(20, 20), nil, bounds, obstacles.ErrInvalidMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := tt.router.Route(tt.start, tt.end, tt.rects, tt.bounds)
			if !errors.Is(err, ErrRoutingFailure) {
				t.Fatalf("error = %v, want ErrRoutingFailure", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("error = %v, want it to wrap %v", err, tt.cause)
			}
			if len(path) != 0 {
				t.Errorf("path = %v, want empty", path)
			}
		})
	}
}

type panickingPolicy struct{}

func (panickingPolicy) Resolution() float64 { return 1 }
func (panickingPolicy) Steps() []Step        { panic("broken policy") }

func TestRouteRecoversPanics(t *testing.T) {
	r := NewRouter(WithPolicy(panickingPolicy{}))
	path, err := r.Route(core.Pt(0, 0), core.Pt(5, 5), nil, core.R(0, 0, 10, 10))
	if !errors.Is(err, ErrRoutingFailure) {
		t.Fatalf("error = %v, want ErrRoutingFailure", err)
	}
	if path != nil {
		t.Errorf("path = %v, want nil", path)
	}
}

func TestPlanReturnsMap(t *testing.T) {
	m, path, err := NewRouter(WithPolicy(Straight(1))).Plan(core.Pt(0, 4), core.Pt(8, 4), []core.Rect{core.R(3, 2, 2, 4)}, core.R(0, 0, 8, 8))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if m == nil || m.Cols != 9 || m.Rows != 9 {
		t.Fatalf("unexpected map %+v", m)
	}
	for _, p := range path {
		c, _ := m.CellAt(p)
		if m.Blocked(c) {
			t.Errorf("waypoint %v lies on a blocked cell", p)
		}
	}
	if !strings.Contains(m.ASCII(path, 1), "S") {
		t.Error("ASCII dump should mark the start")
	}
}

func TestOffGridEndpointsAreJoined(t *testing.T) {
	path, err := NewRouter().Route(core.Pt(1.2, 5), core.Pt(9, 5), nil, core.R(0, 0, 20, 20))
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	want := []core.Point{core.Pt(1.2, 5), core.Pt(1, 5), core.Pt(9, 5)}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestSimplifyPath(t *testing.T) {
	tests := []struct {
		name string
		in   []core.Point
		want []core.Point
	}{
		{"short", []core.Point{core.Pt(0, 0), core.Pt(1, 0)}, []core.Point{core.Pt(0, 0), core.Pt(1, 0)}},
		{
			"straight run",
			[]core.Point{core.Pt(0, 0), core.Pt(1, 0), core.Pt(2, 0), core.Pt(3, 0)},
			[]core.Point{core.Pt(0, 0), core.Pt(3, 0)},
		},
		{
			"one turn",
			[]core.Point{core.Pt(0, 0), core.Pt(1, 0), core.Pt(1, 1), core.Pt(1, 2)},
			[]core.Point{core.Pt(0, 0), core.Pt(1, 0), core.Pt(1, 2)},
		},
		{
			"diagonal run",
			[]core.Point{core.Pt(0, 0), core.Pt(1, 1), core.Pt(2, 2), core.Pt(3, 2)},
			[]core.Point{core.Pt(0, 0), core.Pt(2, 2), core.Pt(3, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SimplifyPath(tt.in)); diff != "" {
				t.Errorf("SimplifyPath mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeuristicIsAdmissibleOnOpenGrid(t *testing.T) {
	m, err := obstacles.NewBuilder(core.R(0, 0, 10, 10), 1).SetStart(core.Pt(0, 0)).SetEnd(core.Pt(7, 4)).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cells, err := search(m, Straight(1), DefaultPathCost, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(cells) != 12 {
		t.Fatalf("got %d cells, want the 12 of a shortest route", len(cells))
	}

	cost := 0
	var prev Step
	for i := 1; i < len(cells); i++ {
		step := Step{cells[i].X - cells[i-1].X, cells[i].Y - cells[i-1].Y}
		cost += DefaultPathCost.StraightCost
		if i > 1 && step != prev {
			cost += DefaultPathCost.TurnCost
		}
		prev = step
	}
	if h := heuristic(m.Start, m.End, DefaultPathCost, false); h > cost {
		t.Errorf("heuristic %d overestimates %d", h, cost)
	}
}

func TestPathToString(t *testing.T) {
	if got := PathToString(nil); got != "empty path" {
		t.Errorf("PathToString(nil) = %q", got)
	}
	if got := PathToString([]core.Point{core.Pt(0, 0), core.Pt(1.5, 2)}); got != "(0,0) -> (1.5,2)" {
		t.Errorf("PathToString = %q", got)
	}
}

func assertAxisAligned(t *testing.T, path []core.Point) {
	t.Helper()
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if a.X != b.X && a.Y != b.Y {
			t.Errorf("segment %v-%v is not axis aligned", a, b)
		}
	}
}
