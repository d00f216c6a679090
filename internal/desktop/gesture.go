package desktop

import (
	"fmt"
	"sync"

	"github.com/adnanlatif/webdesk/pkg/models"
)

// Edge names a resize handle.
type Edge string

const (
	EdgeNorth     Edge = "n"
	EdgeSouth     Edge = "s"
	EdgeEast      Edge = "e"
	EdgeWest      Edge = "w"
	EdgeNorthEast Edge = "ne"
	EdgeNorthWest Edge = "nw"
	EdgeSouthEast Edge = "se"
	EdgeSouthWest Edge = "sw"
)

func validEdge(e Edge) bool {
	switch e {
	case EdgeNorth, EdgeSouth, EdgeEast, EdgeWest, EdgeNorthEast, EdgeNorthWest, EdgeSouthEast, EdgeSouthWest:
		return true
	}
	return false
}

// gestureKind is the tracker state: Idle, Dragging or Resizing.
type gestureKind int

const (
	gestureIdle gestureKind = iota
	gestureDrag
	gestureResize
)

// Tracker is the gesture state machine for direct manipulation. A gesture
// begins on pointer-down, applies continuous geometry edits on every
// pointer move, and ends on pointer-up, returning the tracker to idle.
// Only one gesture can be active at a time, mirroring a single pointer.
type Tracker struct {
	mu       sync.Mutex
	mgr      *Manager
	kind     gestureKind
	windowID string
	edge     Edge
	grab     models.Position
	start    models.Geometry
}

// NewTracker creates an idle gesture tracker over the window manager.
func NewTracker(mgr *Manager) *Tracker {
	return &Tracker{mgr: mgr}
}

// Active reports whether a gesture is in progress.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.kind != gestureIdle
}

// BeginDrag starts a title-bar drag at the given pointer position.
// Dragging is disabled while the window is maximized.
func (t *Tracker) BeginDrag(windowID string, pointer models.Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.kind != gestureIdle {
		return fmt.Errorf("gesture already in progress")
	}

	w, ok := t.mgr.Get(windowID)
	if !ok {
		return fmt.Errorf("window not found: %s", windowID)
	}
	if w.Maximized {
		return fmt.Errorf("cannot drag a maximized window")
	}

	t.kind = gestureDrag
	t.windowID = windowID
	t.grab = pointer
	t.start = models.Geometry{Position: w.Position, Size: w.Size}
	return nil
}

// BeginResize starts a resize gesture on the named edge or corner handle.
func (t *Tracker) BeginResize(windowID string, edge Edge, pointer models.Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.kind != gestureIdle {
		return fmt.Errorf("gesture already in progress")
	}
	if !validEdge(edge) {
		return fmt.Errorf("unknown resize edge: %s", edge)
	}

	w, ok := t.mgr.Get(windowID)
	if !ok {
		return fmt.Errorf("window not found: %s", windowID)
	}
	if w.Maximized {
		return fmt.Errorf("cannot resize a maximized window")
	}

	t.kind = gestureResize
	t.windowID = windowID
	t.edge = edge
	t.grab = pointer
	t.start = models.Geometry{Position: w.Position, Size: w.Size}
	return nil
}

// Move applies a pointer movement to the active gesture. Position tracks
// the pointer minus the initial grab offset; resize updates are clamped
// so width and height never fall below the floors, and west/north handles
// move the origin only as far as the floor allows.
func (t *Tracker) Move(pointer models.Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.kind == gestureIdle {
		return fmt.Errorf("no gesture in progress")
	}

	dx := pointer.X - t.grab.X
	dy := pointer.Y - t.grab.Y

	geom := t.start
	switch t.kind {
	case gestureDrag:
		geom.Position.X = t.start.Position.X + dx
		geom.Position.Y = t.start.Position.Y + dy

	case gestureResize:
		switch t.edge {
		case EdgeEast, EdgeNorthEast, EdgeSouthEast:
			geom.Size.Width = t.start.Size.Width + dx
		case EdgeWest, EdgeNorthWest, EdgeSouthWest:
			geom.Size.Width = t.start.Size.Width - dx
		}
		switch t.edge {
		case EdgeSouth, EdgeSouthEast, EdgeSouthWest:
			geom.Size.Height = t.start.Size.Height + dy
		case EdgeNorth, EdgeNorthEast, EdgeNorthWest:
			geom.Size.Height = t.start.Size.Height - dy
		}

		geom.Size = clampSize(geom.Size)

		// West/north handles move the origin by however much the size
		// actually changed, so the opposite edge stays pinned even when
		// the floor kicks in.
		switch t.edge {
		case EdgeWest, EdgeNorthWest, EdgeSouthWest:
			geom.Position.X = t.start.Position.X + (t.start.Size.Width - geom.Size.Width)
		}
		switch t.edge {
		case EdgeNorth, EdgeNorthEast, EdgeNorthWest:
			geom.Position.Y = t.start.Position.Y + (t.start.Size.Height - geom.Size.Height)
		}
	}

	return t.mgr.applyGeometry(t.windowID, geom)
}

// End finishes the active gesture and returns the tracker to idle. Ending
// with no gesture active is a no-op, matching a stray pointer-up.
func (t *Tracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.kind = gestureIdle
	t.windowID = ""
	t.edge = ""
}
