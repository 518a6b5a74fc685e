package obstacles

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"flowdesigner/core"
)

// ASCII renders the map as text. Each character covers stride×stride cells:
// '#' where any covered cell is blocked, '*' on the path, 'S' and 'E' on the
// endpoints.
func (m *Map) ASCII(path []core.Point, stride int) string {
	stride = max(stride, 1)
	width := (m.Cols + stride - 1) / stride
	height := (m.Rows + stride - 1) / stride

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, z := range m.Zones {
		for y := z.MinY / stride; y <= z.MaxY/stride; y++ {
			for x := z.MinX / stride; x <= z.MaxX/stride; x++ {
				grid[y][x] = '#'
			}
		}
	}
	for _, c := range m.trace(path) {
		grid[c.Y/stride][c.X/stride] = '*'
	}
	grid[m.Start.Y/stride][m.Start.X/stride] = 'S'
	grid[m.End.Y/stride][m.End.X/stride] = 'E'

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(strings.TrimRight(string(row), " "))
		result.WriteString("\n")
	}
	return result.String()
}

// trace returns the in-bounds cells visited by the polyline.
func (m *Map) trace(path []core.Point) []Cell {
	var cells []Cell
	add := func(p core.Point) {
		if c, ok := m.CellAt(p); ok {
			cells = append(cells, c)
		}
	}
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)) / m.Resolution))
		for s := 0; s < steps; s++ {
			add(a.Add(b.Sub(a).Scale(float64(s) / float64(steps))))
		}
	}
	if len(path) > 0 {
		add(path[len(path)-1])
	}
	return cells
}

// Legend explains the ASCII symbols.
func Legend() string {
	legend := []string{
		"Obstacle map legend:",
		"  # - Obstacle (inflated shape bounds)",
		"  * - Routed path",
		"  S - Start",
		"  E - End",
	}
	return strings.Join(legend, "\n")
}

// WritePNG draws the map as a PNG image, scale pixels per canvas unit.
func (m *Map) WritePNG(w io.Writer, path []core.Point, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("invalid scale %v", scale)
	}
	width := int(math.Ceil(m.Bounds.Size.X * scale))
	height := int(math.Ceil(m.Bounds.Size.Y * scale))

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	origin := m.Bounds.Position
	toImage := func(p core.Point) (float64, float64) {
		q := p.Sub(origin).Scale(scale)
		return q.X, q.Y
	}

	dc.SetColor(color.Gray{Y: 0x60})
	for _, z := range m.Zones {
		x, y := toImage(z.Rect.Position)
		dc.DrawRectangle(x, y, z.Rect.Size.X*scale, z.Rect.Size.Y*scale)
		dc.Fill()
	}

	if len(path) > 1 {
		dc.SetColor(color.RGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff})
		dc.SetLineWidth(math.Max(1, scale/2))
		dc.MoveTo(toImage(path[0]))
		for _, p := range path[1:] {
			dc.LineTo(toImage(p))
		}
		dc.Stroke()
	}

	radius := math.Max(2, scale)
	dc.SetColor(color.RGBA{G: 0x90, A: 0xff})
	x, y := toImage(m.Point(m.Start))
	dc.DrawCircle(x, y, radius)
	dc.Fill()
	dc.SetColor(color.RGBA{B: 0xc0, A: 0xff})
	x, y = toImage(m.Point(m.End))
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	return dc.EncodePNG(w)
}

// Describe lists the map geometry and every obstacle zone.
func (m *Map) Describe() string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("# Map %dx%d cells at %v, bounds %v\n", m.Cols, m.Rows, m.Resolution, m.Bounds))
	result.WriteString(fmt.Sprintf("start=(%d,%d) end=(%d,%d)\n", m.Start.X, m.Start.Y, m.End.X, m.End.Y))
	result.WriteString("\n# Obstacle Zones\n")
	for i, z := range m.Zones {
		result.WriteString(fmt.Sprintf("Zone %d: cells=(%d,%d)-(%d,%d) rect=%v\n",
			i, z.MinX, z.MinY, z.MaxX, z.MaxY, z.Rect))
	}
	return result.String()
}
