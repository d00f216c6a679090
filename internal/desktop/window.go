// Package desktop models the open-window set and the shell controller
// that drives it. The manager enforces the two structural invariants —
// at most one active window, z-order implied by activation order — and
// direct manipulation (drag/resize) runs through an explicit gesture
// state machine rather than discrete move commands.
package desktop

import (
	"github.com/adnanlatif/webdesk/pkg/models"
)

// Default window geometry and floors.
const (
	DefaultWidth  = 640
	DefaultHeight = 480

	// MinWidth and MinHeight are hard floors; no resize may shrink a
	// window below them.
	MinWidth  = 200
	MinHeight = 150

	// cascadeStep offsets each newly opened window from the previous one.
	cascadeStep = 24
)

// maximize snapshots the window's geometry and fills the viewport minus
// the reserved taskbar strip. Maximizing an already-maximized window is a
// no-op.
func maximize(w *models.Window, viewport models.Size, taskbarHeight int) {
	if w.Maximized {
		return
	}
	w.PreMaximize = &models.Geometry{Position: w.Position, Size: w.Size}
	w.Position = models.Position{X: 0, Y: 0}
	w.Size = models.Size{Width: viewport.Width, Height: viewport.Height - taskbarHeight}
	w.Maximized = true
}

// restore reapplies the pre-maximize snapshot. Restoring a window that is
// not maximized is a no-op.
func restore(w *models.Window) {
	if !w.Maximized {
		return
	}
	if w.PreMaximize != nil {
		w.Position = w.PreMaximize.Position
		w.Size = w.PreMaximize.Size
	}
	w.PreMaximize = nil
	w.Maximized = false
}

// clampSize applies the minimum size floors.
func clampSize(s models.Size) models.Size {
	if s.Width < MinWidth {
		s.Width = MinWidth
	}
	if s.Height < MinHeight {
		s.Height = MinHeight
	}
	return s
}
