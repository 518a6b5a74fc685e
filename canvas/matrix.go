// Package canvas provides a rune grid with box-drawing primitives. The
// terminal shell draws scenes into it before copying the cells to the screen.
package canvas

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"flowdesigner/core"
)

// Common errors
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// Cell is a character position. Origin is top-left, X grows right and Y
// grows down.
type Cell struct {
	X, Y int
}

// CellOf rounds a canvas point to the cell it falls in.
func CellOf(p core.Point) Cell {
	return Cell{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// BoxStyle names the runes used for a box outline.
type BoxStyle struct {
	TopLeft, TopRight, BottomLeft, BottomRight rune
	Horizontal, Vertical                       rune
}

// Box outline styles.
var (
	SolidBox  = BoxStyle{'┌', '┐', '└', '┘', '─', '│'}
	DashedBox = BoxStyle{'┌', '┐', '└', '┘', '╌', '╎'}
	HeavyBox  = BoxStyle{'┏', '┓', '┗', '┛', '━', '┃'}
)

// MatrixCanvas is a rune matrix. Writes through Set merge box-drawing runes
// at intersections.
//
// MatrixCanvas is NOT safe for concurrent writes.
type MatrixCanvas struct {
	matrix [][]rune
	width  int
	height int
	merger *CharacterMerger
}

// NewMatrixCanvas creates a blank canvas of the given size.
func NewMatrixCanvas(width, height int) (*MatrixCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}

	matrix := make([][]rune, height)
	for y := range matrix {
		matrix[y] = []rune(strings.Repeat(" ", width))
	}

	return &MatrixCanvas{
		matrix: matrix,
		width:  width,
		height: height,
		merger: NewCharacterMerger(),
	}, nil
}

// Size returns the width and height of the canvas.
func (c *MatrixCanvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *MatrixCanvas) inside(p Cell) bool {
	return p.X >= 0 && p.X < c.width && p.Y >= 0 && p.Y < c.height
}

// Get returns the rune at p, or a space outside the canvas. The trailing
// half of a wide rune reads as 0.
func (c *MatrixCanvas) Get(p Cell) rune {
	if !c.inside(p) {
		return ' '
	}
	return c.matrix[p.Y][p.X]
}

// Set merges char into the rune at p.
func (c *MatrixCanvas) Set(p Cell, char rune) error {
	if !c.inside(p) {
		return ErrOutOfBounds
	}
	c.matrix[p.Y][p.X] = c.merger.Merge(c.matrix[p.Y][p.X], char)
	return nil
}

// Put overwrites the rune at p, ignoring positions outside the canvas.
func (c *MatrixCanvas) Put(p Cell, char rune) {
	if c.inside(p) {
		c.matrix[p.Y][p.X] = char
	}
}

// Clear resets the canvas to spaces.
func (c *MatrixCanvas) Clear() {
	for y := range c.matrix {
		for x := range c.matrix[y] {
			c.matrix[y][x] = ' '
		}
	}
}

// String returns the canvas rows joined by newlines.
func (c *MatrixCanvas) String() string {
	var sb strings.Builder
	sb.Grow(c.height * (c.width + 1))

	for y, row := range c.matrix {
		for _, r := range row {
			if r == 0 {
				continue
			}
			sb.WriteRune(r)
		}
		if y < c.height-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// DrawBox outlines the cells from tl to br inclusive. Parts outside the
// canvas are clipped.
func (c *MatrixCanvas) DrawBox(tl, br Cell, style BoxStyle) error {
	if br.X <= tl.X || br.Y <= tl.Y {
		return fmt.Errorf("box %v-%v: %w", tl, br, ErrInvalidSize)
	}

	for x := tl.X + 1; x < br.X; x++ {
		c.Set(Cell{x, tl.Y}, style.Horizontal)
		c.Set(Cell{x, br.Y}, style.Horizontal)
	}
	for y := tl.Y + 1; y < br.Y; y++ {
		c.Set(Cell{tl.X, y}, style.Vertical)
		c.Set(Cell{br.X, y}, style.Vertical)
	}
	c.Set(tl, style.TopLeft)
	c.Set(Cell{br.X, tl.Y}, style.TopRight)
	c.Set(Cell{tl.X, br.Y}, style.BottomLeft)
	c.Set(br, style.BottomRight)
	return nil
}

// DrawHorizontalLine draws from x1 to x2 inclusive on row y.
func (c *MatrixCanvas) DrawHorizontalLine(x1, y, x2 int, char rune) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		c.Set(Cell{x, y}, char)
	}
}

// DrawVerticalLine draws from y1 to y2 inclusive on column x.
func (c *MatrixCanvas) DrawVerticalLine(x, y1, y2 int, char rune) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		c.Set(Cell{x, y}, char)
	}
}

// DrawLine draws a line between two cells using Bresenham's algorithm.
func (c *MatrixCanvas) DrawLine(p1, p2 Cell, char rune) {
	dx, dy := abs(p2.X-p1.X), -abs(p2.Y-p1.Y)
	sx, sy := 1, 1
	if p1.X > p2.X {
		sx = -1
	}
	if p1.Y > p2.Y {
		sy = -1
	}

	err := dx + dy
	for p := p1; ; {
		c.Put(p, char)
		if p == p2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

// DrawText writes text starting at p. Wide runes take two cells; the
// second reads back as 0. Text past the right edge is dropped.
func (c *MatrixCanvas) DrawText(p Cell, text string) {
	x := p.X
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.width {
			return
		}
		c.Put(Cell{x, p.Y}, r)
		if w == 2 {
			c.Put(Cell{x + 1, p.Y}, 0)
		}
		x += w
	}
}

// DrawPath draws a polyline through cells, with rounded corners at joints.
// Segments that are neither horizontal nor vertical are drawn with dots.
func (c *MatrixCanvas) DrawPath(points []Cell) {
	if len(points) == 1 {
		c.Set(points[0], '·')
		return
	}

	for i := 0; i+1 < len(points); i++ {
		p1, p2 := points[i], points[i+1]
		switch {
		case p1 == p2:
		case p1.Y == p2.Y:
			c.DrawHorizontalLine(p1.X, p1.Y, p2.X, '─')
		case p1.X == p2.X:
			c.DrawVerticalLine(p1.X, p1.Y, p2.Y, '│')
		default:
			c.DrawLine(p1, p2, '·')
		}
	}

	for i := 1; i+1 < len(points); i++ {
		if corner, ok := selectCorner(points[i-1], points[i], points[i+1]); ok {
			c.Put(points[i], corner)
		}
	}
}

// selectCorner chooses the corner rune for a turn at curr.
func selectCorner(prev, curr, next Cell) (rune, bool) {
	from, to := direction(prev, curr), direction(curr, next)
	switch {
	case from == 'E' && to == 'S', from == 'N' && to == 'W':
		return '╮', true
	case from == 'E' && to == 'N', from == 'S' && to == 'W':
		return '╯', true
	case from == 'W' && to == 'S', from == 'N' && to == 'E':
		return '╭', true
	case from == 'W' && to == 'N', from == 'S' && to == 'E':
		return '╰', true
	}
	return 0, false
}

// direction returns the compass direction from p1 to p2, or 0 when the
// step is diagonal or empty.
func direction(p1, p2 Cell) rune {
	switch {
	case p1.Y == p2.Y && p2.X > p1.X:
		return 'E'
	case p1.Y == p2.Y && p2.X < p1.X:
		return 'W'
	case p1.X == p2.X && p2.Y > p1.Y:
		return 'S'
	case p1.X == p2.X && p2.Y < p1.Y:
		return 'N'
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
