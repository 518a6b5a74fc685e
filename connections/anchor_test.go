package connections

import (
	"testing"

	"flowdesigner/core"
	"flowdesigner/diagram"
)

func component(x, y, w, h float64) *diagram.Component {
	return &diagram.Component{Rectangle: diagram.Rectangle{
		Position: core.Pt(x, y),
		Size:     core.Pt(w, h),
		Margin:   5,
	}}
}

func pointOn(c *diagram.Component) *diagram.ConnectionPoint {
	b := c.Bounds()
	p := &diagram.ConnectionPoint{Anchor: core.Pt(b.Right(), b.MidPoint().Y), Face: core.East, Size: 1}
	p.Delta = b.MidPoint().Sub(p.Anchor)
	return p
}

func TestPlaceFaces(t *testing.T) {
	tests := []struct {
		name     string
		external core.Point
		face     core.Direction
		anchor   core.Point
	}{
		{"straight above", core.Pt(50, -20), core.North, core.Pt(50, 10)},
		{"straight right", core.Pt(120, 40), core.East, core.Pt(90, 40)},
		{"straight below", core.Pt(50, 100), core.South, core.Pt(50, 70)},
		{"straight left", core.Pt(-10, 40), core.West, core.Pt(10, 40)},
		{"above, off centre", core.Pt(70, -50), core.North, core.Pt(50+20.0/3, 10)},
		{"above the left corner", core.Pt(10, -30), core.North, core.Pt(50-120.0/7, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := component(10, 10, 80, 60)
			p := pointOn(c)

			Place(c, p, tt.external)

			if p.Face != tt.face {
				t.Errorf("face = %v, want %v", p.Face, tt.face)
			}
			if !p.Anchor.Near(tt.anchor) {
				t.Errorf("anchor = %v, want %v", p.Anchor, tt.anchor)
			}
			if !c.MidPoint().Sub(p.Delta).Near(p.Anchor) {
				t.Errorf("delta %v does not reproduce the anchor", p.Delta)
			}
		})
	}
}

func TestPlaceCornerIsNudged(t *testing.T) {
	c := component(0, 0, 20, 20)
	p := pointOn(c)

	// The line from the centre to (20,0) meets the top face exactly at the corner.
	Place(c, p, core.Pt(20, 0))
	if p.Face != core.North {
		t.Fatalf("face = %v, want North", p.Face)
	}
	if !p.Anchor.Near(core.Pt(19, 0)) {
		t.Errorf("anchor = %v, want (19,0)", p.Anchor)
	}
}

func TestPlaceKeepsAnchorWhenNoFaceMatches(t *testing.T) {
	c := component(10, 10, 80, 60)
	p := pointOn(c)
	before := p.Anchor

	if Place(c, p, core.Pt(50, 40)) {
		t.Error("Place from inside the component reported a change")
	}
	if Place(c, p, core.Pt(200, 200)) {
		t.Error("Place from a diagonal region reported a change")
	}
	if p.Anchor != before {
		t.Errorf("anchor moved to %v", p.Anchor)
	}
}

func TestAnchorAlwaysOnBorder(t *testing.T) {
	sizes := []core.Point{core.Pt(2, 2), core.Pt(3, 50), core.Pt(40, 40), core.Pt(100, 7)}

	for _, size := range sizes {
		c := component(20, 20, size.X, size.Y)
		p := pointOn(c)
		for x := -10.0; x <= 160; x += 3.5 {
			for y := -10.0; y <= 100; y += 3.5 {
				Place(c, p, core.Pt(x, y))
				if !OnBorder(c.Bounds(), p.Anchor) {
					t.Fatalf("size %v, external (%v,%v): anchor %v is not strictly on the border", size, x, y, p.Anchor)
				}
			}
		}
	}
}

func TestRecomputeMoved(t *testing.T) {
	c := component(10, 10, 40, 40)
	p := pointOn(c)
	Place(c, p, core.Pt(30, -10))

	c.Position = c.Position.Add(core.Pt(7, -3))
	if !Recompute(c, p, Moved) {
		t.Fatal("Recompute reported no change after a move")
	}
	if !p.Anchor.Near(core.Pt(37, 7)) {
		t.Errorf("anchor = %v, want (37,7)", p.Anchor)
	}
	if Recompute(c, p, Moved) {
		t.Error("second Recompute should report no change")
	}
}

func TestRecomputeResized(t *testing.T) {
	tests := []struct {
		name    string
		face    core.Point
		resize  func(c *diagram.Component)
		want    core.Point
		changed bool
	}{
		{
			name:    "east face follows a widened edge",
			face:    core.Pt(100, 30),
			resize:  func(c *diagram.Component) { c.Size.X += 10 },
			want:    core.Pt(60, 30),
			changed: true,
		},
		{
			name:    "north face clamped by a shrinking width",
			face:    core.Pt(48, -100),
			resize:  func(c *diagram.Component) { c.Size.X = 4 },
			want:    core.Pt(13, 10),
			changed: true,
		},
		{
			name:    "collapsed span holds the midpoint",
			face:    core.Pt(-100, 40),
			resize:  func(c *diagram.Component) { c.Size.Y = 2 },
			want:    core.Pt(10, 11),
			changed: true,
		},
		{
			name:    "growing the opposite edge of a north anchor",
			face:    core.Pt(30, -100),
			resize:  func(c *diagram.Component) { c.Size.Y += 10 },
			want:    core.Pt(30, 10),
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := component(10, 10, 40, 40)
			p := pointOn(c)
			Place(c, p, tt.face)

			tt.resize(c)
			changed := Recompute(c, p, Resized)

			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if !p.Anchor.Near(tt.want) {
				t.Errorf("anchor = %v, want %v", p.Anchor, tt.want)
			}
			if !OnBorder(c.Bounds(), p.Anchor) {
				t.Errorf("anchor %v left the border", p.Anchor)
			}
			if !c.MidPoint().Sub(p.Delta).Near(p.Anchor) {
				t.Errorf("delta %v does not reproduce the anchor", p.Delta)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	c := component(0, 0, 20, 10)

	tests := []struct {
		name   string
		anchor core.Point
		want   core.Point
	}{
		{"north", core.Pt(5, 0), core.Pt(5, -3)},
		{"east", core.Pt(20, 4), core.Pt(23, 4)},
		{"south", core.Pt(5, 10), core.Pt(5, 13)},
		{"west", core.Pt(0, 4), core.Pt(-3, 4)},
		{"top-right corner", core.Pt(20, 0), core.Pt(23, -3)},
		{"bottom-left corner", core.Pt(0, 10), core.Pt(-3, 13)},
		{"not on the border", core.Pt(5, 5), core.Pt(5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &diagram.ConnectionPoint{Anchor: tt.anchor}
			if got := Offset(c, p, 3); !got.Near(tt.want) {
				t.Errorf("Offset() = %v, want %v", got, tt.want)
			}
		})
	}
}
