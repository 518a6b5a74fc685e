package terminal

import (
	"github.com/samber/lo"

	"flowdesigner/canvas"
	"flowdesigner/connections"
	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/editor"
)

// Marks drawn for points.
const (
	markerRune      = '◆'
	pointRune       = '○'
	activePointRune = '●'
	previewRune     = '·'
)

// Render draws the editor's scene into c, one canvas unit per cell. Shapes
// are painted back to front so front shapes cover the ones behind them.
func Render(c *canvas.MatrixCanvas, e *editor.Editor) {
	scene := e.Scene()
	selected := e.Selection()

	shapes := scene.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		switch s := shapes[i].(type) {
		case *diagram.Component:
			style := canvas.SolidBox
			if lo.Contains(selected, s.ID) {
				style = canvas.HeavyBox
			}
			drawRectangle(c, s.Bounds(), s.Label, style)
		case *diagram.Rectangle:
			drawRectangle(c, s.Bounds(), s.Label, canvas.SolidBox)
		case *diagram.Marker:
			c.Put(canvas.CellOf(s.Position), markerRune)
		case *diagram.Path:
			c.DrawPath(cells(s.Points))
		case *diagram.SelectionBox:
			if s.Visible {
				r := s.Bounds()
				c.DrawBox(canvas.CellOf(r.TopLeft()), canvas.CellOf(r.BottomRight()), canvas.DashedBox)
			}
		}
	}

	for _, conn := range scene.Connections() {
		drawConnection(c, scene, conn)
	}

	for _, p := range scene.Points() {
		mark := pointRune
		if p.ID == e.ActivePoint() {
			mark = activePointRune
		}
		c.Put(canvas.CellOf(p.Anchor), mark)
	}

	if preview := e.Preview(); len(preview) > 1 {
		pts := cells(preview)
		for i := 0; i+1 < len(pts); i++ {
			c.DrawLine(pts[i], pts[i+1], previewRune)
		}
	}
}

func drawRectangle(c *canvas.MatrixCanvas, r core.Rect, label string, style canvas.BoxStyle) {
	tl, br := canvas.CellOf(r.TopLeft()), canvas.CellOf(r.BottomRight())
	for y := tl.Y + 1; y < br.Y; y++ {
		for x := tl.X + 1; x < br.X; x++ {
			c.Put(canvas.Cell{X: x, Y: y}, ' ')
		}
	}
	if err := c.DrawBox(tl, br, style); err != nil {
		return
	}

	inner := br.X - tl.X - 1
	if label == "" || inner <= 0 || br.Y-tl.Y < 2 {
		return
	}
	text := canvas.FitText(label, inner, "…")
	x := canvas.Center(tl.X+1, br.X-1, canvas.MeasureText(text))
	c.DrawText(canvas.Cell{X: x, Y: (tl.Y + br.Y) / 2}, text)
}

func drawConnection(c *canvas.MatrixCanvas, scene *diagram.Scene, conn *diagram.Connection) {
	if conn.Path.IsEmpty() {
		return
	}
	c.DrawPath(cells(conn.Path.Points))

	a, b, ok := scene.Endpoints(conn)
	if !ok {
		return
	}
	drawEnd(c, scene, a, conn.ModeA)
	drawEnd(c, scene, b, conn.ModeB)
}

// drawEnd puts an arrowhead one point-size off the anchor, pointing at the
// owner.
func drawEnd(c *canvas.MatrixCanvas, scene *diagram.Scene, p *diagram.ConnectionPoint, mode diagram.EndMode) {
	if mode != diagram.EndArrow {
		return
	}
	owner, ok := scene.Component(p.Owner)
	if !ok {
		return
	}
	c.Put(canvas.CellOf(connections.Offset(owner, p, p.Size)), arrowInto(p.Face))
}

func arrowInto(face core.Direction) rune {
	switch face {
	case core.North:
		return '▼'
	case core.East:
		return '◀'
	case core.South:
		return '▲'
	default:
		return '▶'
	}
}

func cells(points []core.Point) []canvas.Cell {
	return lo.Map(points, func(p core.Point, _ int) canvas.Cell { return canvas.CellOf(p) })
}
