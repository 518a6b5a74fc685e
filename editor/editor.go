// Package editor sequences pointer and keyboard gestures into scene
// operations. An Editor owns all interaction state for one scene and must be
// driven from a single goroutine.
package editor

import (
	"errors"
	"log/slog"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/samber/lo"

	"flowdesigner/connections"
	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/geometry"
	"flowdesigner/operations"
	"flowdesigner/pathfinding"
)

// Editor is the interaction state machine.
type Editor struct {
	scene  *diagram.Scene
	router connections.Router
	logger *slog.Logger

	// Tunables
	borderGrip     float64
	pointHitRadius float64
	margin         float64
	pointSize      float64

	// Interaction state
	state     State
	resizeDir core.ResizeDirection
	tool      Tool
	mods      Modifiers
	selection []diagram.ID
	active    diagram.ID
	editing   diagram.ID
	hover     Hover
	preview   []core.Point
	box       *diagram.SelectionBox
	down      core.Point
	last      core.Point

	onSelection func([]diagram.ID)
	onActive    func(diagram.ID)
}

// Option configures an Editor.
type Option func(*Editor)

// WithRouter sets the router used for connection redraws and previews.
func WithRouter(r connections.Router) Option {
	return func(e *Editor) { e.router = r }
}

// WithLogger sets the logger gesture transitions are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithBorderGrip sets how close to a border a press starts a resize.
func WithBorderGrip(g float64) Option {
	return func(e *Editor) { e.borderGrip = g }
}

// WithPointHitRadius sets how close to an anchor a press grabs its point.
func WithPointHitRadius(r float64) Option {
	return func(e *Editor) { e.pointHitRadius = r }
}

// WithComponentMargin sets the margin given to components the editor creates.
func WithComponentMargin(m float64) Option {
	return func(e *Editor) { e.margin = m }
}

// WithPointSize sets the size given to connection points the editor creates.
func WithPointSize(s float64) Option {
	return func(e *Editor) { e.pointSize = s }
}

// WithModifiers sets where held modifiers are read from.
func WithModifiers(m Modifiers) Option {
	return func(e *Editor) { e.mods = m }
}

// New creates an editor for scene. Its selection box is added to the scene.
func New(scene *diagram.Scene, opts ...Option) *Editor {
	e := &Editor{
		scene:          scene,
		borderGrip:     1,
		pointHitRadius: 1,
		margin:         1,
		pointSize:      diagram.DefaultPointSize,
		state:          StateIdle,
		mods:           ModifierSet{},
		active:         diagram.NoID,
		editing:        diagram.NoID,
		box:            &diagram.SelectionBox{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.router == nil {
		e.router = pathfinding.NewRouter(pathfinding.WithLogger(e.log()))
	}
	scene.Add(e.box)
	return e
}

// Scene returns the edited scene.
func (e *Editor) Scene() *diagram.Scene { return e.scene }

// State returns the current interaction state.
func (e *Editor) State() State { return e.state }

// ResizeDirection returns the border being dragged while Resizing.
func (e *Editor) ResizeDirection() core.ResizeDirection { return e.resizeDir }

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches the active tool.
func (e *Editor) SetTool(t Tool) { e.tool = t }

// SetModifiers replaces the modifier source.
func (e *Editor) SetModifiers(m Modifiers) { e.mods = m }

// Selection returns the selected component IDs in selection order.
func (e *Editor) Selection() []diagram.ID { return slices.Clone(e.selection) }

// ActivePoint returns the connection point being dragged, or NoID.
func (e *Editor) ActivePoint() diagram.ID { return e.active }

// Editing returns the component whose label is being edited, or NoID.
func (e *Editor) Editing() diagram.ID { return e.editing }

// Hover returns the last idle pointer classification.
func (e *Editor) Hover() Hover { return e.hover }

// Preview returns the live connection preview path, if any.
func (e *Editor) Preview() []core.Point { return e.preview }

// Box returns the selection box shown during box gestures.
func (e *Editor) Box() *diagram.SelectionBox { return e.box }

// OnSelectionChanged registers fn to be called whenever the selection changes.
func (e *Editor) OnSelectionChanged(fn func([]diagram.ID)) { e.onSelection = fn }

// OnActiveConnectionChanged registers fn to be called whenever the dragged
// connection point changes.
func (e *Editor) OnActiveConnectionChanged(fn func(diagram.ID)) { e.onActive = fn }

// PointerDown starts a gesture. Presses outside Idle are ignored.
func (e *Editor) PointerDown(p core.Point) {
	e.down, e.last = p, p
	if e.state != StateIdle {
		return
	}

	if cp, ok := e.pointAt(p, diagram.NoID); ok {
		e.setActive(cp.ID)
		e.setState(StateDraggingConnection)
		return
	}

	if c, ok := e.componentAt(p); ok {
		e.pressComponent(c, p)
		return
	}

	e.ClearSelection()
	e.box.Show(p)
	if e.tool == ToolCreate {
		e.setState(StateBoxCreating)
	} else {
		e.setState(StateBoxSelecting)
	}
}

func (e *Editor) pressComponent(c *diagram.Component, p core.Point) {
	if e.tool == ToolCreate {
		cp, err := connections.NewPoint(e.scene, c.ID, outward(c.Bounds(), p))
		if err != nil {
			e.log().Warn("create connection point", "component", c.ID, "err", err)
			return
		}
		cp.Size = e.pointSize
		e.setActive(cp.ID)
		e.setState(StateDraggingConnection)
		return
	}

	if dir := operations.EdgeAt(c.Bounds(), p, e.borderGrip); dir != core.ResizeNone {
		e.setSelection([]diagram.ID{c.ID})
		e.resizeDir = dir
		e.setState(StateResizing)
		return
	}

	if !lo.Contains(e.selection, c.ID) {
		e.setSelection(append(slices.Clone(e.selection), c.ID))
	}
	e.setState(StateMovingItems)
}

// PointerMove advances the current gesture, or updates the hover state
// when idle.
func (e *Editor) PointerMove(p core.Point) {
	delta := p.Sub(e.last)
	e.last = p

	switch e.state {
	case StateIdle:
		e.hover = e.classify(p)
	case StateMovingItems:
		e.moveSelection(delta)
	case StateResizing:
		e.resizeSelection(delta)
	case StateDraggingConnection:
		e.dragConnection(p)
	case StateBoxSelecting, StateBoxCreating:
		e.box.Adjust(e.down, p)
	}
}

func (e *Editor) moveSelection(delta core.Point) {
	if delta.IsZero() {
		return
	}
	res, err := operations.Move(e.scene, e.router, e.selection, delta)
	switch {
	case errors.Is(err, operations.ErrBoundsViolation):
		e.log().Debug("move rolled back", "delta", delta)
	case err != nil:
		e.log().Debug("move committed with routing errors", "err", err)
	default:
		e.log().Debug("moved", "shapes", res.Moved, "rerouted", res.Rerouted)
	}
}

func (e *Editor) resizeSelection(delta core.Point) {
	if len(e.selection) == 0 || delta.IsZero() {
		return
	}
	if err := operations.Resize(e.scene, e.router, e.selection[0], delta, e.resizeDir); err != nil {
		e.log().Debug("resize", "dir", e.resizeDir, "err", err)
	}
}

func (e *Editor) dragConnection(p core.Point) {
	cp, ok := e.scene.Point(e.active)
	if !ok {
		return
	}
	owner, ok := e.scene.Component(cp.Owner)
	if !ok {
		return
	}
	if connections.Place(owner, cp, p) {
		if _, err := connections.RedrawPoints(e.scene, e.router, []diagram.ID{cp.ID}); err != nil {
			e.log().Debug("redraw dragged point", "point", cp.ID, "err", err)
		}
	}

	if !e.mods.Held(ModConnect) {
		return
	}
	if _, inside := e.scene.ComponentAt(p); inside {
		return
	}
	path, err := connections.Preview(e.scene, e.router, cp.ID, p)
	if err != nil {
		e.log().Debug("preview", "err", err)
	}
	e.preview = path
}

// PointerUp ends the current gesture and returns to Idle.
func (e *Editor) PointerUp(p core.Point) {
	e.last = p

	switch e.state {
	case StateMovingItems, StateResizing:
		if !e.mods.Held(ModMultiSelect) {
			e.ClearSelection()
		}
		e.resizeDir = core.ResizeNone
	case StateDraggingConnection:
		e.releaseConnection(p)
	case StateBoxSelecting:
		e.box.Adjust(e.down, p)
		hits := e.scene.Colliding(e.box.Vertices(), geometry.Normal)
		e.setSelection(lo.Union(e.selection, lo.Map(hits, func(c *diagram.Component, _ int) diagram.ID { return c.ID })))
		e.box.Hide()
	case StateBoxCreating:
		e.box.Adjust(e.down, p)
		e.createFromBox()
		e.box.Hide()
	default:
		return
	}
	e.setState(StateIdle)
}

func (e *Editor) releaseConnection(p core.Point) {
	e.preview = nil
	dragged, ok := e.scene.Point(e.active)
	if !ok {
		e.setActive(diagram.NoID)
		return
	}

	target := diagram.NoID
	if cp, ok := e.pointAt(p, dragged.ID); ok {
		target = cp.ID
	} else if c, ok := e.scene.ComponentAt(p); ok && c.ID != dragged.Owner {
		cp, err := connections.NewPoint(e.scene, c.ID, dragged.Anchor)
		if err != nil {
			e.log().Warn("create target point", "component", c.ID, "err", err)
		} else {
			cp.Size = e.pointSize
			target = cp.ID
		}
	}

	if target != diagram.NoID && !e.linked(dragged.ID, target) {
		conn, err := e.scene.Connect(dragged.ID, target)
		if err != nil {
			e.log().Warn("connect", "from", dragged.ID, "to", target, "err", err)
		} else {
			e.log().Debug("connected", "connection", conn.ID, "from", dragged.ID, "to", target)
			if err := connections.Redraw(e.scene, e.router, conn); err != nil {
				e.log().Debug("route new connection", "err", err)
			}
		}
	}

	if len(dragged.Connections) == 0 {
		e.scene.RemovePoint(dragged.ID)
	}
	e.setActive(diagram.NoID)
}

func (e *Editor) linked(a, b diagram.ID) bool {
	return lo.SomeBy(e.scene.Connections(), func(c *diagram.Connection) bool {
		return (c.A == a && c.B == b) || (c.A == b && c.B == a)
	})
}

func (e *Editor) createFromBox() {
	r := e.box.Bounds()
	if r.Size.X < operations.MinSize || r.Size.Y < operations.MinSize {
		return
	}
	if len(e.scene.Colliding(r.Vertices(), geometry.Normal)) > 0 {
		return
	}
	c := &diagram.Component{Rectangle: diagram.Rectangle{Position: r.Position, Size: r.Size, Margin: e.margin}}
	id := e.scene.Add(c)
	e.log().Debug("component created", "id", id, "bounds", r)
}

// Click ends label editing when it lands outside the edited component.
func (e *Editor) Click(p core.Point) {
	if e.state != StateEditingLabel {
		return
	}
	if c, ok := e.scene.Component(e.editing); ok && c.Bounds().Contains(p) {
		return
	}
	e.stopEditing()
}

// DoubleClick starts editing the label of the component under p.
func (e *Editor) DoubleClick(p core.Point) {
	if e.state != StateIdle && e.state != StateEditingLabel {
		return
	}
	c, ok := e.scene.ComponentAt(p)
	if !ok {
		return
	}
	e.editing = c.ID
	e.setState(StateEditingLabel)
}

// KeyPress feeds a key token to the label being edited. Single-rune tokens
// are appended; "Backspace" removes the last rune; "Enter" and "Escape"
// finish editing.
func (e *Editor) KeyPress(token string) {
	if e.state != StateEditingLabel {
		return
	}
	c, ok := e.scene.Component(e.editing)
	if !ok {
		e.stopEditing()
		return
	}

	switch {
	case token == "Enter" || token == "Escape":
		e.stopEditing()
	case token == "Backspace":
		if _, size := utf8.DecodeLastRuneInString(c.Label); size > 0 {
			c.Label = c.Label[:len(c.Label)-size]
		}
	case utf8.RuneCountInString(token) == 1:
		c.Label += token
	}
}

func (e *Editor) stopEditing() {
	e.editing = diagram.NoID
	e.setState(StateIdle)
}

// DeleteAt removes the connection point under p with its connections.
// Without one it removes the component under p and the connection whose
// path passes through p.
func (e *Editor) DeleteAt(p core.Point) {
	if e.state != StateIdle {
		return
	}
	if cp, ok := e.pointAt(p, diagram.NoID); ok {
		e.scene.RemovePoint(cp.ID)
		return
	}

	c, hasComponent := e.scene.ComponentAt(p)
	conn, hasConnection := e.scene.ConnectionAt(p, e.pointHitRadius)
	if hasComponent {
		e.scene.Remove(c.ID)
		if lo.Contains(e.selection, c.ID) {
			e.setSelection(lo.Without(e.selection, c.ID))
		}
	}
	if hasConnection {
		e.scene.Break(conn.ID)
	}
	e.highlight()
}

// ToggleMarker adds a marker at p or removes the one already there.
func (e *Editor) ToggleMarker(p core.Point) {
	id, added := e.scene.ToggleMarker(p)
	e.log().Debug("marker toggled", "id", id, "added", added)
}

// ClearSelection empties the selection. Clearing an empty selection does
// not notify.
func (e *Editor) ClearSelection() {
	e.setSelection(nil)
}

func (e *Editor) setSelection(ids []diagram.ID) {
	if slices.Equal(ids, e.selection) {
		return
	}
	e.selection = ids
	e.highlight()
	if e.onSelection != nil {
		e.onSelection(e.Selection())
	}
}

func (e *Editor) setActive(id diagram.ID) {
	if id == e.active {
		return
	}
	e.active = id
	e.highlight()
	if e.onActive != nil {
		e.onActive(id)
	}
}

func (e *Editor) setState(s State) {
	if s == e.state {
		return
	}
	e.log().Debug("state", "from", e.state, "to", s)
	e.state = s
	if s != StateIdle {
		e.hover = Hover{}
	}
}

// highlight marks the connections that touch the dragged point or a
// selected component.
func (e *Editor) highlight() {
	for _, c := range e.scene.Connections() {
		a, b, ok := e.scene.Endpoints(c)
		c.Selected = ok && (c.Touches(e.active) ||
			lo.Contains(e.selection, a.Owner) || lo.Contains(e.selection, b.Owner))
	}
}

// classify decides what the pointer is over while idle.
func (e *Editor) classify(p core.Point) Hover {
	if _, ok := e.pointAt(p, diagram.NoID); ok {
		return Hover{Kind: HoverGrab}
	}
	c, ok := e.componentAt(p)
	if !ok {
		return Hover{}
	}
	if dir := operations.EdgeAt(c.Bounds(), p, e.borderGrip); dir != core.ResizeNone {
		return Hover{Kind: HoverResize, Dir: dir}
	}
	return Hover{Kind: HoverMove}
}

// componentAt finds the front-most component under p, counting the border
// grip band on both sides of its outline.
func (e *Editor) componentAt(p core.Point) (*diagram.Component, bool) {
	return lo.Find(e.scene.Components(), func(c *diagram.Component) bool {
		return diagram.Collide(c, []core.Point{p}, geometry.Normal) ||
			operations.EdgeAt(c.Bounds(), p, e.borderGrip) != core.ResizeNone
	})
}

// pointAt finds the front-most connection point under p other than skip.
func (e *Editor) pointAt(p core.Point, skip diagram.ID) (*diagram.ConnectionPoint, bool) {
	return lo.Find(e.scene.Points(), func(cp *diagram.ConnectionPoint) bool {
		return cp.ID != skip && core.Rect{Position: cp.Anchor}.Inflate(e.pointHitRadius).Contains(p)
	})
}

func (e *Editor) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// outward returns a point just past the border of r nearest to p, so a
// point placed toward it lands on that border.
func outward(r core.Rect, p core.Point) core.Point {
	dists := []float64{p.Y - r.Top(), r.Right() - p.X, r.Bottom() - p.Y, p.X - r.Left()}
	nearest := 0
	for i, d := range dists {
		if d < dists[nearest] {
			nearest = i
		}
	}
	switch nearest {
	case 0:
		return core.Pt(p.X, math.Min(p.Y, r.Top())-1)
	case 1:
		return core.Pt(math.Max(p.X, r.Right())+1, p.Y)
	case 2:
		return core.Pt(p.X, math.Max(p.Y, r.Bottom())+1)
	default:
		return core.Pt(math.Min(p.X, r.Left())-1, p.Y)
	}
}
