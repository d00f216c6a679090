package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adnanlatif/webdesk/internal/auth"
	"github.com/adnanlatif/webdesk/internal/desktop"
	"github.com/adnanlatif/webdesk/internal/notepad"
	"github.com/adnanlatif/webdesk/internal/relay"
	"github.com/adnanlatif/webdesk/internal/session"
	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	ctrl     *desktop.Controller
	auth     *auth.Service
	sessions *session.Store
	notes    *notepad.Service
	relay    *relay.Hub
	recs     *store.Store
}

// NewHandler creates a new API handler.
func NewHandler(ctrl *desktop.Controller, authSvc *auth.Service, sessions *session.Store, notes *notepad.Service, hub *relay.Hub, recs *store.Store) *Handler {
	return &Handler{
		ctrl:     ctrl,
		auth:     authSvc,
		sessions: sessions,
		notes:    notes,
		relay:    hub,
		recs:     recs,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body. Errors are always shown inline by
// the shell, never as a page navigation.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Login validates credentials and establishes the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proj, err := h.ctrl.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, desktop.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":   proj,
		"authToken": h.sessions.GetAuthToken(),
	})
}

// Logout tears the session down and signals guests to drop credentials.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the current session projection, if any.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	proj, ok := h.sessions.Projection()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"session":       proj,
	})
}

// ValidateToken checks an opaque auth token and returns its identity.
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info := h.auth.ValidateToken(req.Token)
	if info == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired auth token")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ChangePassword verifies the current password and replaces it.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string `json:"username"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.ChangePassword(req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDesktop returns the full shell render model.
func (h *Handler) GetDesktop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Desktop())
}

// ToggleStartMenu flips the start menu.
func (h *Handler) ToggleStartMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"open": h.ctrl.ToggleStartMenu()})
}

// OpenIcon launches a desktop icon.
func (h *Handler) OpenIcon(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.ctrl.OpenIcon(id)
	if err != nil {
		switch {
		case errors.Is(err, desktop.ErrLocked):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, desktop.ErrTooManyWindows):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusNotFound, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// OpenSystemWindow opens a shell-owned surface like the notepad or the
// admin editors. These never embed a guest frame.
func (h *Handler) OpenSystemWindow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Icon    string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	id, err := h.ctrl.OpenSystemWindow(req.Title, req.Content, req.Icon)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"windowId": id})
}

// CloseWindow removes a window.
func (h *Handler) CloseWindow(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.CloseWindow(mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FocusWindow raises a window to the top and makes it active.
func (h *Handler) FocusWindow(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, h.ctrl.Windows().Focus)
}

// MinimizeWindow hides a window, leaving its taskbar entry.
func (h *Handler) MinimizeWindow(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, h.ctrl.Windows().Minimize)
}

// MaximizeWindow grows a window to the working area.
func (h *Handler) MaximizeWindow(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, h.ctrl.Windows().Maximize)
}

// RestoreWindow returns a maximized window to its saved geometry.
func (h *Handler) RestoreWindow(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, h.ctrl.Windows().Restore)
}

// TaskbarClick minimizes the active window or focuses any other.
func (h *Handler) TaskbarClick(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, h.ctrl.TaskbarClick)
}

// windowOp runs a by-id window operation and returns the updated window.
func (h *Handler) windowOp(w http.ResponseWriter, r *http.Request, op func(string) error) {
	id := mux.Vars(r)["id"]

	if err := op(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	win, ok := h.ctrl.Windows().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "window not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, win)
}

// Gesture drives a drag or resize interaction. The shell streams pointer
// positions; the server owns the geometry math.
func (h *Handler) Gesture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action   string          `json:"action"`
		WindowID string          `json:"windowId"`
		Edge     string          `json:"edge"`
		Pointer  models.Position `json:"pointer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gestures := h.ctrl.Gestures()

	var err error
	switch req.Action {
	case "drag-start":
		err = gestures.BeginDrag(req.WindowID, req.Pointer)
	case "resize-start":
		err = gestures.BeginResize(req.WindowID, desktop.Edge(req.Edge), req.Pointer)
	case "move":
		err = gestures.Move(req.Pointer)
	case "end":
		gestures.End()
	default:
		writeError(w, http.StatusBadRequest, "unknown gesture action: "+req.Action)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"windows": h.ctrl.Windows().List(),
	})
}

// UnlockNotepad checks the shared password and returns the note.
func (h *Handler) UnlockNotepad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.notes.Get(req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNotepad replaces the note content; the store write is debounced.
func (h *Handler) UpdateNotepad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.notes.Update(req.Password, req.Content); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
