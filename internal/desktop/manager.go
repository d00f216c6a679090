package desktop

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/adnanlatif/webdesk/pkg/models"
)

// Manager owns the ordered collection of open windows. The slice order is
// the z-order: last element renders on top. Activation moves a window to
// the top and deactivates all siblings.
type Manager struct {
	mu            sync.Mutex
	windows       []*models.Window
	openOrder     map[string]int
	opened        int
	viewport      models.Size
	taskbarHeight int
}

// NewManager creates a window manager for the given viewport. The taskbar
// strip is reserved: maximized windows never cover it.
func NewManager(viewport models.Size, taskbarHeight int) *Manager {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = models.Size{Width: 1280, Height: 800}
	}
	if taskbarHeight <= 0 {
		taskbarHeight = 30
	}
	return &Manager{
		openOrder:     make(map[string]int),
		viewport:      viewport,
		taskbarHeight: taskbarHeight,
	}
}

// OpenOptions describes a window to open. Zero geometry selects the
// default size at the next cascade position.
type OpenOptions struct {
	Title    string
	Content  string
	Icon     string
	FrameID  string
	Position *models.Position
	Size     *models.Size
}

// Open appends a new window, marks it active and all others inactive, and
// returns its fresh id. Titles are not required to be unique.
func (m *Manager) Open(opts OpenOptions) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := &models.Window{
		ID:      uuid.New().String(),
		Title:   opts.Title,
		Content: opts.Content,
		Icon:    opts.Icon,
		FrameID: opts.FrameID,
		Size:    models.Size{Width: DefaultWidth, Height: DefaultHeight},
	}

	offset := (m.opened % 10) * cascadeStep
	w.Position = models.Position{X: 60 + offset, Y: 40 + offset}
	if opts.Position != nil {
		w.Position = *opts.Position
	}
	if opts.Size != nil {
		w.Size = clampSize(*opts.Size)
	}

	for _, other := range m.windows {
		other.Active = false
	}
	w.Active = true

	m.windows = append(m.windows, w)
	m.openOrder[w.ID] = m.opened
	m.opened++

	return w.ID
}

// Close removes the window. Closing the active window does not promote
// another window to active; that is a caller policy, not a manager
// invariant.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, w := range m.windows {
		if w.ID == id {
			m.windows = append(m.windows[:i], m.windows[i+1:]...)
			delete(m.openOrder, id)
			return nil
		}
	}
	return fmt.Errorf("window not found: %s", id)
}

// Minimize hides the window from rendering but keeps it in the collection
// and on the taskbar until closed.
func (m *Manager) Minimize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.find(id)
	if err != nil {
		return err
	}
	w.Minimized = true
	w.Active = false
	return nil
}

// Focus activates the target, deactivates every other window, and moves
// the target to the top of the z-order. A minimized target is restored to
// view: after Focus at most one window is active and it is never
// minimized.
func (m *Manager) Focus(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, w := range m.windows {
		if w.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("window not found: %s", id)
	}

	target := m.windows[idx]
	m.windows = append(m.windows[:idx], m.windows[idx+1:]...)
	m.windows = append(m.windows, target)

	for _, w := range m.windows {
		w.Active = false
	}
	target.Active = true
	target.Minimized = false
	return nil
}

// Maximize snapshots the window geometry and expands it to the viewport
// minus the taskbar strip. No-op when already maximized.
func (m *Manager) Maximize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.find(id)
	if err != nil {
		return err
	}
	maximize(w, m.viewport, m.taskbarHeight)
	return nil
}

// Restore reapplies the pre-maximize geometry. No-op when not maximized.
func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.find(id)
	if err != nil {
		return err
	}
	restore(w)
	return nil
}

// Get returns a copy of one window.
func (m *Manager) Get(id string) (models.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.find(id)
	if err != nil {
		return models.Window{}, false
	}
	return *w, true
}

// List returns copies of all windows in z-order, bottom to top.
func (m *Manager) List() []models.Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, *w)
	}
	return out
}

// ActiveID returns the active window's id, if any.
func (m *Manager) ActiveID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.windows {
		if w.Active {
			return w.ID, true
		}
	}
	return "", false
}

// TopMost returns the id of the highest non-minimized window, letting a
// caller implement promotion-after-close if its UI policy wants it.
func (m *Manager) TopMost() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.windows) - 1; i >= 0; i-- {
		if !m.windows[i].Minimized {
			return m.windows[i].ID, true
		}
	}
	return "", false
}

// Taskbar lists all open windows, minimized included, in the order they
// were opened.
func (m *Manager) Taskbar() []models.TaskbarEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]models.TaskbarEntry, 0, len(m.windows))
	for _, w := range m.windows {
		entries = append(entries, models.TaskbarEntry{
			WindowID:  w.ID,
			Title:     w.Title,
			Icon:      w.Icon,
			Active:    w.Active,
			Minimized: w.Minimized,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return m.openOrder[entries[i].WindowID] < m.openOrder[entries[j].WindowID]
	})
	return entries
}

// CloseAll removes every window, used on logout.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = nil
	m.openOrder = make(map[string]int)
}

// applyGeometry writes a geometry update from an active gesture, with the
// size floors enforced here as the last line of defense.
func (m *Manager) applyGeometry(id string, geom models.Geometry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.find(id)
	if err != nil {
		return err
	}
	w.Position = geom.Position
	w.Size = clampSize(geom.Size)
	return nil
}

// find locates a window by id. Callers hold the lock.
func (m *Manager) find(id string) (*models.Window, error) {
	for _, w := range m.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("window not found: %s", id)
}
