package models

// Position is a window origin in desktop coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window extent in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry bundles position and size, used for the pre-maximize snapshot.
type Geometry struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Window represents one open application surface. Z-order is implied by
// the manager's collection order; the entity itself only tracks its own
// flags and geometry.
type Window struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Icon      string   `json:"icon,omitempty"`
	Position  Position `json:"position"`
	Size      Size     `json:"size"`
	Minimized bool     `json:"minimized"`
	Maximized bool     `json:"maximized"`
	Active    bool     `json:"active"`

	// PreMaximize holds the geometry saved when the window was maximized.
	// Only meaningful while Maximized is true.
	PreMaximize *Geometry `json:"preMaximize,omitempty"`

	// FrameID links a program window to its embedded guest frame, empty
	// for system surfaces that embed nothing.
	FrameID string `json:"frameId,omitempty"`
}

// TaskbarEntry is the taskbar representation of an open window. Minimized
// windows stay on the taskbar until closed.
type TaskbarEntry struct {
	WindowID  string `json:"windowId"`
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	Active    bool   `json:"active"`
	Minimized bool   `json:"minimized"`
}
