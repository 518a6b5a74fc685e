package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesigner/core"
	"flowdesigner/diagram"
)

// ===== Test helpers =====

type lineRouter struct{}

func (lineRouter) Route(start, end core.Point, _ []core.Rect, _ core.Rect) ([]core.Point, error) {
	return []core.Point{start, end}, nil
}

func addComponent(s *diagram.Scene, x, y, w, h, margin float64) *diagram.Component {
	c := &diagram.Component{Rectangle: diagram.Rectangle{Position: core.Pt(x, y), Size: core.Pt(w, h), Margin: margin}}
	s.Add(c)
	return c
}

func createTestEditor(opts ...Option) *Editor {
	return New(diagram.NewScene(400, 300), append([]Option{WithRouter(lineRouter{})}, opts...)...)
}

// drag presses at from, moves through the given points and releases at the last one.
func drag(e *Editor, from core.Point, through ...core.Point) {
	e.PointerDown(from)
	last := from
	for _, p := range through {
		e.PointerMove(p)
		last = p
	}
	e.PointerUp(last)
}

// ===== Move and resize =====

func TestPressInteriorMovesSelection(t *testing.T) {
	e := createTestEditor()
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)

	var notified [][]diagram.ID
	e.OnSelectionChanged(func(ids []diagram.ID) { notified = append(notified, ids) })

	e.PointerDown(core.Pt(30, 30))
	require.Equal(t, StateMovingItems, e.State())
	require.Equal(t, []diagram.ID{a.ID}, e.Selection())

	e.PointerMove(core.Pt(35, 32))
	assert.Equal(t, core.Pt(15, 12), a.Position)

	e.PointerUp(core.Pt(35, 32))
	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, e.Selection())
	assert.Len(t, notified, 2, "select and clear should each notify once")
}

func TestMultiSelectKeepsSelection(t *testing.T) {
	mods := ModifierSet{ModMultiSelect: true}
	e := createTestEditor(WithModifiers(mods))
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)
	b := addComponent(e.Scene(), 100, 10, 40, 40, 0)

	drag(e, core.Pt(30, 30), core.Pt(31, 30))
	drag(e, core.Pt(120, 30), core.Pt(121, 30))

	assert.Equal(t, []diagram.ID{a.ID, b.ID}, e.Selection())

	// Both selected components move together.
	drag(e, core.Pt(32, 30), core.Pt(32, 40))
	assert.Equal(t, core.Pt(11, 20), a.Position)
	assert.Equal(t, core.Pt(101, 20), b.Position)
}

func TestBoundsViolationKeepsGestureAlive(t *testing.T) {
	e := createTestEditor()
	a := addComponent(e.Scene(), 0, 50, 20, 20, 5)

	e.PointerDown(core.Pt(10, 60))
	e.PointerMove(core.Pt(0, 60))
	assert.Equal(t, core.Pt(0, 50), a.Position, "increment should be rolled back")
	assert.Equal(t, StateMovingItems, e.State())

	e.PointerMove(core.Pt(5, 60))
	assert.Equal(t, core.Pt(5, 50), a.Position)
	e.PointerUp(core.Pt(5, 60))
	assert.Equal(t, StateIdle, e.State())
}

func TestBorderPressResizes(t *testing.T) {
	e := createTestEditor()
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)

	e.PointerDown(core.Pt(50, 30))
	require.Equal(t, StateResizing, e.State())
	assert.Equal(t, core.ResizeE, e.ResizeDirection())

	e.PointerMove(core.Pt(60, 30))
	assert.Equal(t, core.Pt(50, 40), a.Size)

	// Shrinking below the minimum is ignored and the gesture goes on.
	e.PointerMove(core.Pt(0, 30))
	assert.Equal(t, core.Pt(50, 40), a.Size)
	assert.Equal(t, StateResizing, e.State())

	e.PointerUp(core.Pt(0, 30))
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, core.ResizeNone, e.ResizeDirection())
}

func TestGripBandOutsideBorder(t *testing.T) {
	e := createTestEditor()
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)

	e.PointerMove(core.Pt(50.5, 30))
	assert.Equal(t, Hover{Kind: HoverResize, Dir: core.ResizeE}, e.Hover())
	e.PointerMove(core.Pt(9.5, 9.5))
	assert.Equal(t, Hover{Kind: HoverResize, Dir: core.ResizeNW}, e.Hover())
	e.PointerMove(core.Pt(52, 30))
	assert.Equal(t, Hover{}, e.Hover())

	drag(e, core.Pt(50.5, 30), core.Pt(60.5, 30))
	assert.Equal(t, core.Pt(50, 40), a.Size)
	assert.Equal(t, StateIdle, e.State())
}

// ===== Box gestures =====

func TestBoxSelect(t *testing.T) {
	e := createTestEditor()
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)
	addComponent(e.Scene(), 100, 10, 40, 40, 0)

	e.PointerDown(core.Pt(5, 5))
	require.Equal(t, StateBoxSelecting, e.State())
	assert.True(t, e.Box().Visible)

	e.PointerMove(core.Pt(60, 60))
	assert.Equal(t, core.R(5, 5, 55, 55), e.Box().Bounds())

	e.PointerUp(core.Pt(60, 60))
	assert.Equal(t, []diagram.ID{a.ID}, e.Selection())
	assert.False(t, e.Box().Visible)
	assert.Equal(t, StateIdle, e.State())
}

func TestBoxCreate(t *testing.T) {
	e := createTestEditor(WithComponentMargin(3))
	e.SetTool(ToolCreate)
	addComponent(e.Scene(), 10, 10, 40, 40, 0)

	drag(e, core.Pt(200, 100), core.Pt(260, 150))
	comps := e.Scene().Components()
	require.Len(t, comps, 2)
	assert.Equal(t, core.R(200, 100, 60, 50), comps[1].Bounds())
	assert.Equal(t, 3.0, comps[1].Margin)

	// Too small, and overlapping an existing component.
	drag(e, core.Pt(300, 200), core.Pt(301, 201))
	drag(e, core.Pt(5, 5), core.Pt(30, 30))
	assert.Len(t, e.Scene().Components(), 2)
}

// ===== Connections =====

func TestCreateToolDragsNewConnection(t *testing.T) {
	e := createTestEditor()
	e.SetTool(ToolCreate)
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)
	b := addComponent(e.Scene(), 100, 10, 40, 40, 0)

	var active []diagram.ID
	e.OnActiveConnectionChanged(func(id diagram.ID) { active = append(active, id) })

	e.PointerDown(core.Pt(45, 30))
	require.Equal(t, StateDraggingConnection, e.State())
	require.Len(t, a.Points, 1)
	p, _ := e.Scene().Point(a.Points[0])
	assert.Equal(t, core.East, p.Face)
	assert.True(t, p.Anchor.Near(core.Pt(50, 30)), "anchor %v", p.Anchor)

	e.PointerMove(core.Pt(80, 30))
	e.PointerUp(core.Pt(120, 30))

	assert.Equal(t, StateIdle, e.State())
	require.Len(t, e.Scene().Connections(), 1)
	require.Len(t, b.Points, 1)
	q, _ := e.Scene().Point(b.Points[0])
	assert.True(t, q.Anchor.Near(core.Pt(100, 30)), "target anchor %v", q.Anchor)
	assert.False(t, e.Scene().Connections()[0].Path.IsEmpty())
	assert.Equal(t, []diagram.ID{p.ID, diagram.NoID}, active)
}

// requireClear fails when a path point lies within half a unit of c.
func requireClear(t *testing.T, path []core.Point, c *diagram.Component) {
	t.Helper()
	inner := c.Bounds().Inflate(0.5)
	for _, p := range path {
		require.False(t, inner.Contains(p), "path point %v inside component %d", p, c.ID)
	}
}

func TestDefaultRouterConnectsCreatedComponents(t *testing.T) {
	e := New(diagram.NewScene(200, 80))
	e.SetTool(ToolCreate)

	drag(e, core.Pt(20, 20), core.Pt(40, 30))
	drag(e, core.Pt(100, 20), core.Pt(120, 30))
	comps := e.Scene().Components()
	require.Len(t, comps, 2)
	a, b := comps[0], comps[1]
	assert.Equal(t, 1.0, a.Margin)
	assert.Equal(t, 1.0, b.Margin)

	drag(e, core.Pt(38, 25), core.Pt(110, 25))
	conns := e.Scene().Connections()
	require.Len(t, conns, 1)
	conn := conns[0]
	require.False(t, conn.Path.IsEmpty())
	requireClear(t, conn.Path.Points, a)
	requireClear(t, conn.Path.Points, b)

	e.SetTool(ToolSelect)
	drag(e, core.Pt(110, 28), core.Pt(110, 40))
	require.Equal(t, core.Pt(100, 32), b.Position)
	require.False(t, conn.Path.IsEmpty())
	requireClear(t, conn.Path.Points, a)
	requireClear(t, conn.Path.Points, b)

	pb, ok := e.Scene().Point(conn.B)
	require.True(t, ok)
	assert.Equal(t, pb.Anchor.Add(core.Pt(-1, 0)), conn.Path.Points[len(conn.Path.Points)-1])
}

func TestReleaseOnCanvasDestroysUnconnectedPoint(t *testing.T) {
	e := createTestEditor()
	e.SetTool(ToolCreate)
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)

	drag(e, core.Pt(45, 30), core.Pt(300, 250))

	assert.Empty(t, a.Points)
	assert.Empty(t, e.Scene().Points())
	assert.Equal(t, diagram.NoID, e.ActivePoint())
}

func TestConnectModifierShowsPreview(t *testing.T) {
	mods := ModifierSet{}
	e := createTestEditor(WithModifiers(mods))
	e.SetTool(ToolCreate)
	addComponent(e.Scene(), 10, 10, 40, 40, 0)

	e.PointerDown(core.Pt(45, 30))
	e.PointerMove(core.Pt(200, 30))
	assert.Nil(t, e.Preview(), "no preview without the connect modifier")

	mods[ModConnect] = true
	e.PointerMove(core.Pt(200, 40))
	preview := e.Preview()
	require.NotEmpty(t, preview)
	assert.Equal(t, core.Pt(200, 40), preview[len(preview)-1])

	// Inside a component the last preview is kept.
	e.PointerMove(core.Pt(30, 30))
	assert.Equal(t, preview, e.Preview())

	e.PointerUp(core.Pt(300, 250))
	assert.Nil(t, e.Preview())
}

func TestDragExistingPointConnectsToPoint(t *testing.T) {
	e := createTestEditor()
	e.SetTool(ToolCreate)
	addComponent(e.Scene(), 10, 10, 40, 40, 0)
	addComponent(e.Scene(), 100, 10, 40, 40, 0)
	c := addComponent(e.Scene(), 100, 100, 40, 40, 0)

	drag(e, core.Pt(45, 30), core.Pt(120, 30))
	require.Len(t, e.Scene().Connections(), 1)

	// Select tool: press the existing point on B and drop it on C.
	e.SetTool(ToolSelect)
	drag(e, core.Pt(100, 30), core.Pt(120, 120))
	assert.Len(t, e.Scene().Connections(), 2)
	assert.Len(t, c.Points, 1)
}

// ===== Labels =====

func TestLabelEditing(t *testing.T) {
	e := createTestEditor()
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)

	e.DoubleClick(core.Pt(30, 30))
	require.Equal(t, StateEditingLabel, e.State())
	assert.Equal(t, a.ID, e.Editing())

	for _, k := range []string{"H", "i", "é", "Backspace", "Shift"} {
		e.KeyPress(k)
	}
	assert.Equal(t, "Hi", a.Label)

	// Presses are ignored while editing and a click inside keeps editing.
	e.PointerDown(core.Pt(30, 30))
	e.Click(core.Pt(30, 30))
	assert.Equal(t, StateEditingLabel, e.State())

	e.Click(core.Pt(200, 200))
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, diagram.NoID, e.Editing())

	e.DoubleClick(core.Pt(30, 30))
	e.KeyPress("!")
	e.KeyPress("Enter")
	assert.Equal(t, "Hi!", a.Label)
	assert.Equal(t, StateIdle, e.State())
}

// ===== Delete, markers and selection bookkeeping =====

func TestDeleteAt(t *testing.T) {
	e := createTestEditor()
	e.SetTool(ToolCreate)
	a := addComponent(e.Scene(), 10, 10, 40, 40, 0)
	b := addComponent(e.Scene(), 100, 10, 40, 40, 0)
	addComponent(e.Scene(), 100, 100, 40, 40, 0)

	drag(e, core.Pt(45, 30), core.Pt(120, 30))
	drag(e, core.Pt(135, 30), core.Pt(120, 120))
	require.Len(t, e.Scene().Connections(), 2)

	// Deleting A's point removes the A-B connection.
	e.DeleteAt(core.Pt(50, 30))
	assert.Len(t, e.Scene().Connections(), 1)
	assert.Empty(t, a.Points)

	// Deleting along the remaining path, halfway between B and C, breaks it.
	e.DeleteAt(core.Pt(120, 75))
	assert.Empty(t, e.Scene().Connections())

	// Deleting a component removes it.
	e.DeleteAt(core.Pt(120, 30))
	_, ok := e.Scene().Component(b.ID)
	assert.False(t, ok)
}

func TestClearSelectionIsIdempotent(t *testing.T) {
	e := createTestEditor(WithModifiers(ModifierSet{ModMultiSelect: true}))
	addComponent(e.Scene(), 10, 10, 40, 40, 0)

	calls := 0
	e.OnSelectionChanged(func([]diagram.ID) { calls++ })

	e.ClearSelection()
	assert.Equal(t, 0, calls)

	drag(e, core.Pt(30, 30), core.Pt(30, 30))
	require.Equal(t, 1, calls)

	e.ClearSelection()
	e.ClearSelection()
	assert.Equal(t, 2, calls)
}

func TestHoverClassification(t *testing.T) {
	e := createTestEditor()
	e.SetTool(ToolCreate)
	addComponent(e.Scene(), 10, 10, 40, 40, 0)
	addComponent(e.Scene(), 100, 10, 40, 40, 0)
	drag(e, core.Pt(45, 30), core.Pt(120, 30))

	tests := []struct {
		p    core.Point
		want Hover
	}{
		{core.Pt(200, 200), Hover{}},
		{core.Pt(30, 30), Hover{Kind: HoverMove}},
		{core.Pt(10, 10), Hover{Kind: HoverResize, Dir: core.ResizeNW}},
		{core.Pt(30, 50), Hover{Kind: HoverResize, Dir: core.ResizeS}},
		{core.Pt(50, 30), Hover{Kind: HoverGrab}},
	}
	for _, tt := range tests {
		e.PointerMove(tt.p)
		assert.Equal(t, tt.want, e.Hover(), "hover at %v", tt.p)
	}
	assert.Equal(t, "resize-NW", Hover{Kind: HoverResize, Dir: core.ResizeNW}.String())
}

func TestToggleMarker(t *testing.T) {
	e := createTestEditor()

	e.ToggleMarker(core.Pt(5, 5))
	var markers int
	for _, s := range e.Scene().Shapes() {
		if _, ok := s.(*diagram.Marker); ok {
			markers++
		}
	}
	assert.Equal(t, 1, markers)

	e.ToggleMarker(core.Pt(5, 5))
	for _, s := range e.Scene().Shapes() {
		_, ok := s.(*diagram.Marker)
		assert.False(t, ok, "marker should be removed")
	}
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "CONNECT", StateDraggingConnection.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
	assert.Equal(t, "create", ToolCreate.String())
}
