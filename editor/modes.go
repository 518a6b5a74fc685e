package editor

import "flowdesigner/core"

// State represents the current interaction state
type State int

const (
	StateIdle               State = iota // No gesture in progress
	StateBoxSelecting                    // Dragging a selection box
	StateBoxCreating                     // Dragging the outline of a new component
	StateMovingItems                     // Dragging the selection
	StateResizing                        // Dragging a component border
	StateDraggingConnection              // Dragging a connection point
	StateEditingLabel                    // Typing into a component label
)

// String returns the state name for display
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBoxSelecting:
		return "SELECT"
	case StateBoxCreating:
		return "CREATE"
	case StateMovingItems:
		return "MOVE"
	case StateResizing:
		return "RESIZE"
	case StateDraggingConnection:
		return "CONNECT"
	case StateEditingLabel:
		return "EDIT"
	default:
		return "UNKNOWN"
	}
}

// Tool decides what a press on empty canvas or a component interior does.
type Tool int

const (
	ToolSelect Tool = iota // Box-select on empty canvas, move on interiors
	ToolCreate             // Box-create on empty canvas, new connection point on interiors
)

// String returns the tool name for display
func (t Tool) String() string {
	if t == ToolCreate {
		return "create"
	}
	return "select"
}

// Modifier names a key that changes how a gesture behaves while held.
type Modifier int

const (
	ModMultiSelect Modifier = iota // Keep the selection when a drag ends
	ModConnect                     // Route a live preview while dragging a connection
)

// Modifiers reports which modifiers are held.
type Modifiers interface {
	Held(Modifier) bool
}

// ModifierSet is a Modifiers backed by a map.
type ModifierSet map[Modifier]bool

// Held reports whether m is held.
func (s ModifierSet) Held(m Modifier) bool {
	return s[m]
}

// HoverKind classifies what the pointer is over while idle.
type HoverKind int

const (
	HoverNone   HoverKind = iota // Empty canvas
	HoverMove                    // Component interior
	HoverGrab                    // Connection point
	HoverResize                  // Component border
)

// Hover is the idle pointer classification the shell picks a cursor from.
type Hover struct {
	Kind HoverKind
	Dir  core.ResizeDirection // Set for HoverResize
}

// String returns a cursor-style name for the hover.
func (h Hover) String() string {
	switch h.Kind {
	case HoverMove:
		return "move"
	case HoverGrab:
		return "grab"
	case HoverResize:
		return "resize-" + h.Dir.String()
	default:
		return "none"
	}
}
