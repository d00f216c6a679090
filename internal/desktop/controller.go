package desktop

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/adnanlatif/webdesk/internal/auth"
	"github.com/adnanlatif/webdesk/internal/relay"
	"github.com/adnanlatif/webdesk/internal/session"
	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrLocked             = fmt.Errorf("no session: desktop is locked")
	ErrTooManyWindows     = fmt.Errorf("too many open program windows")
)

// Controller is the top-level shell orchestration: it owns the window
// manager, the session store, the desktop icon layout and start-menu
// state, and wires user intents to window-manager and relay operations.
// Its one cross-cutting policy: while no session exists, windows are
// suppressed and the login surface shows instead.
type Controller struct {
	mu       sync.Mutex
	windows  *Manager
	gestures *Tracker
	sessions *session.Store
	auth     *auth.Service
	relay    *relay.Hub
	store    *store.Store

	// programSlots caps concurrently open program windows; system
	// surfaces (notepad, admin editors) do not count against it.
	programSlots *semaphore.Weighted
	programWins  map[string]bool

	startMenuOpen bool
}

// NewController wires the shell together. maxPrograms <= 0 selects a
// default cap of 10.
func NewController(windows *Manager, sessions *session.Store, authSvc *auth.Service, hub *relay.Hub, recs *store.Store, maxPrograms int64) *Controller {
	if maxPrograms <= 0 {
		maxPrograms = 10
	}
	return &Controller{
		windows:      windows,
		gestures:     NewTracker(windows),
		sessions:     sessions,
		auth:         authSvc,
		relay:        hub,
		store:        recs,
		programSlots: semaphore.NewWeighted(maxPrograms),
		programWins:  make(map[string]bool),
	}
}

// Windows exposes the window manager for handlers.
func (c *Controller) Windows() *Manager { return c.windows }

// Gestures exposes the gesture tracker for handlers.
func (c *Controller) Gestures() *Tracker { return c.gestures }

// Locked reports whether the desktop is behind the login surface.
func (c *Controller) Locked() bool {
	_, ok := c.sessions.Projection()
	return !ok
}

// Login validates credentials, issues an auth token, and establishes the
// session. Bad credentials return ErrInvalidCredentials for the UI to
// show inline.
func (c *Controller) Login(username, password string) (models.SessionProjection, error) {
	result, err := c.auth.ValidateCredentials(username, password)
	if err != nil {
		return models.SessionProjection{}, err
	}
	if !result.Valid {
		return models.SessionProjection{}, ErrInvalidCredentials
	}

	token, err := c.auth.GenerateToken(username, result.IsAdmin)
	if err != nil {
		// The session is still usable without a token; token issuance is
		// best-effort, like the rest of the credential plumbing.
		log.Printf("Login: token generation failed for %s: %v", username, err)
		token = ""
	}

	c.sessions.SaveSession(username, result.APIKey, result.IsAdmin, token)
	log.Printf("User %s logged in (admin=%v)", username, result.IsAdmin)

	return models.SessionProjection{Username: username, IsAdmin: result.IsAdmin}, nil
}

// Logout revokes the token, closes every window, clears the session and
// key cache, and signals all guests to drop their credentials.
func (c *Controller) Logout() {
	if token := c.sessions.GetAuthToken(); token != "" {
		if err := c.auth.RevokeToken(token); err != nil {
			log.Printf("Logout: token revoke failed: %v", err)
		}
	}

	c.windows.CloseAll()

	c.mu.Lock()
	for id := range c.programWins {
		delete(c.programWins, id)
		c.programSlots.Release(1)
	}
	c.startMenuOpen = false
	c.mu.Unlock()

	c.sessions.ClearSession()
	c.relay.BroadcastClear()
	log.Println("Session cleared, guests signalled")
}

// OpenResult describes what the shell should do after an icon launch.
type OpenResult struct {
	WindowID string `json:"windowId,omitempty"`
	FrameID  string `json:"frameId,omitempty"`
	// NewTabURL is set instead of a window for new-tab icons.
	NewTabURL string `json:"newTabUrl,omitempty"`
}

// OpenIcon launches a desktop icon. Program icons open a new window
// holding a sandboxed embedded document; the frame is registered with the
// relay before navigation happens so the first push opportunity is never
// missed.
func (c *Controller) OpenIcon(iconID string) (OpenResult, error) {
	if c.Locked() {
		return OpenResult{}, ErrLocked
	}

	rec, ok := c.store.Get(store.TableIcons, iconID)
	if !ok {
		return OpenResult{}, fmt.Errorf("icon not found: %s", iconID)
	}
	icon := iconFromRecord(rec)

	if icon.Behavior == models.OpenInNewTab {
		return OpenResult{NewTabURL: icon.TargetURL}, nil
	}

	if !c.programSlots.TryAcquire(1) {
		return OpenResult{}, ErrTooManyWindows
	}

	frameID := uuid.New().String()
	c.relay.ExpectFrame(frameID)

	windowID := c.windows.Open(OpenOptions{
		Title:   icon.Name,
		Content: icon.TargetURL,
		Icon:    icon.Glyph,
		FrameID: frameID,
	})

	c.mu.Lock()
	c.programWins[windowID] = true
	c.mu.Unlock()

	return OpenResult{WindowID: windowID, FrameID: frameID}, nil
}

// OpenSystemWindow opens a shell-owned surface (notepad, admin editors)
// that embeds no guest frame and does not count against the program cap.
func (c *Controller) OpenSystemWindow(title, content, icon string) (string, error) {
	if c.Locked() {
		return "", ErrLocked
	}
	return c.windows.Open(OpenOptions{Title: title, Content: content, Icon: icon}), nil
}

// CloseWindow removes a window and releases its program slot when it held
// one. Per the original behavior, no other window is promoted to active.
func (c *Controller) CloseWindow(id string) error {
	if err := c.windows.Close(id); err != nil {
		return err
	}

	c.mu.Lock()
	if c.programWins[id] {
		delete(c.programWins, id)
		c.programSlots.Release(1)
	}
	c.mu.Unlock()
	return nil
}

// ToggleStartMenu flips the start menu and returns the new state.
func (c *Controller) ToggleStartMenu() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startMenuOpen = !c.startMenuOpen
	return c.startMenuOpen
}

// TaskbarClick implements the taskbar contract: clicking the active
// window minimizes it, clicking anything else focuses (and restores) it.
func (c *Controller) TaskbarClick(windowID string) error {
	if c.Locked() {
		return ErrLocked
	}

	w, ok := c.windows.Get(windowID)
	if !ok {
		return fmt.Errorf("window not found: %s", windowID)
	}
	if w.Active && !w.Minimized {
		return c.windows.Minimize(windowID)
	}
	return c.windows.Focus(windowID)
}

// DesktopState is the full render model for the shell.
type DesktopState struct {
	Locked        bool                      `json:"locked"`
	Session       *models.SessionProjection `json:"session,omitempty"`
	Icons         []models.DesktopIcon      `json:"icons"`
	Windows       []models.Window           `json:"windows"`
	Taskbar       []models.TaskbarEntry     `json:"taskbar"`
	StartMenuOpen bool                      `json:"startMenuOpen"`
}

// Desktop returns the current render model. While locked, windows and the
// taskbar are suppressed entirely; icons are still sent so the desktop
// shows through the locked treatment behind the login surface.
func (c *Controller) Desktop() DesktopState {
	c.mu.Lock()
	startMenu := c.startMenuOpen
	c.mu.Unlock()

	state := DesktopState{
		Icons:         c.Icons(),
		StartMenuOpen: startMenu,
	}

	proj, ok := c.sessions.Projection()
	if !ok {
		state.Locked = true
		return state
	}

	state.Session = &proj
	state.Windows = c.windows.List()
	state.Taskbar = c.windows.Taskbar()
	return state
}

// Icons returns the persisted icon layout sorted by sort order.
func (c *Controller) Icons() []models.DesktopIcon {
	recs := c.store.Query(store.TableIcons, nil)

	icons := make([]models.DesktopIcon, 0, len(recs))
	for _, r := range recs {
		icons = append(icons, iconFromRecord(r))
	}
	sort.Slice(icons, func(i, j int) bool {
		return icons[i].SortOrder < icons[j].SortOrder
	})
	return icons
}

// SeedIcons inserts the configured icon layout when the table is empty.
func (c *Controller) SeedIcons(icons []models.DesktopIcon) {
	if c.store.Count(store.TableIcons) > 0 {
		return
	}
	for _, icon := range icons {
		if _, err := c.store.Insert(store.TableIcons, IconRecord(icon)); err != nil {
			log.Printf("Failed to seed icon %q: %v", icon.Name, err)
		}
	}
	log.Printf("Seeded %d desktop icons", len(icons))
}

// IconRecord converts a desktop icon to its stored record shape.
func IconRecord(icon models.DesktopIcon) store.Record {
	rec := store.Record{
		"name":      icon.Name,
		"glyph":     icon.Glyph,
		"targetUrl": icon.TargetURL,
		"behavior":  string(icon.Behavior),
		"x":         icon.Position.X,
		"y":         icon.Position.Y,
		"sortOrder": icon.SortOrder,
	}
	if icon.ID != "" {
		rec["id"] = icon.ID
	}
	return rec
}

func iconFromRecord(rec store.Record) models.DesktopIcon {
	return models.DesktopIcon{
		ID:        rec.ID(),
		Name:      rec.String("name"),
		Glyph:     rec.String("glyph"),
		TargetURL: rec.String("targetUrl"),
		Behavior:  models.OpenBehavior(rec.String("behavior")),
		Position:  models.Position{X: recInt(rec, "x"), Y: recInt(rec, "y")},
		SortOrder: recInt(rec, "sortOrder"),
	}
}

// recInt reads a numeric field that may have round-tripped through JSON
// as float64.
func recInt(rec store.Record, field string) int {
	switch v := rec[field].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
