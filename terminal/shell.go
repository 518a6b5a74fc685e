// Package terminal is the tcell shell that drives an editor: it turns raw
// mouse and keyboard events into editor gestures and paints the scene as
// box-drawing characters.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"flowdesigner/canvas"
	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/editor"
)

// DoubleClickInterval is the longest gap between two clicks on the same
// cell that still counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

var statusStyle = tcell.StyleDefault.Reverse(true)

// Shell owns a screen and feeds one editor from its event loop.
type Shell struct {
	screen tcell.Screen
	editor *editor.Editor
	mods   editor.ModifierSet
	logger *slog.Logger
	now    func() time.Time

	buttons   tcell.ButtonMask
	pointer   core.Point
	downAt    core.Point
	lastClick time.Time
	clickAt   core.Point
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger key commands are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithClock replaces the clock used for double-click detection.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// New creates a shell for an initialised screen. The shell becomes the
// editor's modifier source.
func New(screen tcell.Screen, ed *editor.Editor, opts ...Option) *Shell {
	s := &Shell{
		screen: screen,
		editor: ed,
		mods:   editor.ModifierSet{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	ed.SetModifiers(s.mods)
	return s
}

// Editor returns the driven editor.
func (s *Shell) Editor() *editor.Editor { return s.editor }

// Run processes screen events until the user quits or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.screen.EnableMouse(tcell.MouseMotionEvents)
	defer s.screen.DisableMouse()

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go s.screen.ChannelEvents(events, quit)

	s.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if s.Handle(ev) {
				return nil
			}
			s.Draw()
		}
	}
}

// Handle applies one event and reports whether the shell should quit.
func (s *Shell) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
	case *tcell.EventMouse:
		s.handleMouse(ev)
	case *tcell.EventKey:
		return s.handleKey(ev)
	}
	return false
}

func (s *Shell) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := core.Pt(float64(x), float64(y))
	s.mods[editor.ModMultiSelect] = ev.Modifiers()&tcell.ModCtrl != 0

	was, now := s.buttons, ev.Buttons()
	s.buttons = now

	switch {
	case now&tcell.Button1 != 0 && was&tcell.Button1 == 0:
		s.pointer, s.downAt = p, p
		s.editor.PointerDown(p)
	case was&tcell.Button1 != 0 && now&tcell.Button1 == 0:
		s.moveTo(p)
		s.editor.PointerUp(p)
		if p == s.downAt {
			s.click(p)
		}
	case now&tcell.Button2 != 0 && was&tcell.Button2 == 0:
		s.pointer = p
		s.editor.DeleteAt(p)
	default:
		s.moveTo(p)
	}
}

func (s *Shell) moveTo(p core.Point) {
	if p == s.pointer {
		return
	}
	s.pointer = p
	s.editor.PointerMove(p)
}

func (s *Shell) click(p core.Point) {
	t := s.now()
	if p == s.clickAt && t.Sub(s.lastClick) <= DoubleClickInterval {
		s.lastClick = time.Time{}
		s.editor.DoubleClick(p)
		return
	}
	s.lastClick, s.clickAt = t, p
	s.editor.Click(p)
}

func (s *Shell) handleKey(ev *tcell.EventKey) bool {
	if s.editor.State() == editor.StateEditingLabel {
		if tok := keyToken(ev); tok != "" {
			s.editor.KeyPress(tok)
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		s.editor.ClearSelection()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		s.editor.DeleteAt(s.pointer)
	case tcell.KeyRune:
		return s.command(ev.Rune())
	}
	return false
}

// command runs a single-key command at the pointer.
func (s *Shell) command(r rune) bool {
	scene := s.editor.Scene()

	switch r {
	case 'q':
		return true
	case 's':
		s.editor.SetTool(editor.ToolSelect)
	case 'n':
		s.editor.SetTool(editor.ToolCreate)
	case 'c':
		s.mods[editor.ModConnect] = !s.mods[editor.ModConnect]
	case 'm':
		s.editor.ToggleMarker(s.pointer)
	case 'x':
		s.editor.DeleteAt(s.pointer)
	case 'a':
		if conn, ok := scene.ConnectionAt(s.pointer, 1); ok {
			if conn.ModeB == diagram.EndArrow {
				conn.ModeB = diagram.EndNone
			} else {
				conn.ModeB = diagram.EndArrow
			}
		}
	case 'f', 'b', ']', '[':
		c, ok := scene.ComponentAt(s.pointer)
		if !ok {
			return false
		}
		layer := map[rune]func(diagram.ID) bool{
			'f': scene.BringToFront,
			'b': scene.SendToBack,
			']': scene.BringForward,
			'[': scene.SendBackward,
		}[r]
		layer(c.ID)
	default:
		return false
	}
	s.logger.Debug("command", "key", string(r), "at", s.pointer)
	return false
}

// keyToken names a key the way Editor.KeyPress expects.
func keyToken(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyEscape:
		return "Escape"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "Backspace"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

// Draw paints the scene and the status line.
func (s *Shell) Draw() {
	s.screen.Clear()
	w, h := s.screen.Size()
	if w <= 0 || h <= 1 {
		s.screen.Show()
		return
	}

	c, err := canvas.NewMatrixCanvas(w, h-1)
	if err != nil {
		s.logger.Warn("draw", "err", err)
		return
	}
	Render(c, s.editor)
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			if r := c.Get(canvas.Cell{X: x, Y: y}); r != 0 {
				s.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
			}
		}
	}

	line, _ := canvas.NewMatrixCanvas(w, 1)
	line.DrawText(canvas.Cell{}, canvas.FitText(s.Status(), w, "…"))
	for x := 0; x < w; x++ {
		if r := line.Get(canvas.Cell{X: x}); r != 0 {
			s.screen.SetContent(x, h-1, r, nil, statusStyle)
		}
	}
	s.screen.Show()
}

// Status describes the editor state for the status line.
func (s *Shell) Status() string {
	e := s.editor
	connect := "off"
	if s.mods[editor.ModConnect] {
		connect = "on"
	}
	return fmt.Sprintf(" %s | tool %s | connect %s | selected %d | %s | %.0f,%.0f",
		e.State(), e.Tool(), connect, len(e.Selection()), e.Hover(), s.pointer.X, s.pointer.Y)
}
