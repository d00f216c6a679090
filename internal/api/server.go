package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adnanlatif/webdesk/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes.
func (h *Handler) SetupRoutes(loginLimiter *ratelimit.Limiter, assetsDir string) *mux.Router {
	r := mux.NewRouter()

	// API v1 routes
	api := r.PathPrefix("/v1").Subrouter()

	// Authentication
	api.Handle("/login", LoginRateLimitMiddleware(loginLimiter)(http.HandlerFunc(h.Login))).Methods("POST")
	api.HandleFunc("/logout", h.Logout).Methods("POST")
	api.HandleFunc("/session", h.GetSession).Methods("GET")
	api.HandleFunc("/tokens/validate", h.ValidateToken).Methods("POST")
	api.HandleFunc("/password", h.ChangePassword).Methods("POST")

	// Desktop and windows (session gated)
	gated := func(fn http.HandlerFunc) http.Handler { return h.RequireSession(fn) }
	api.Handle("/desktop", gated(h.GetDesktop)).Methods("GET")
	api.Handle("/desktop/start-menu", gated(h.ToggleStartMenu)).Methods("POST")
	api.Handle("/desktop/icons/{id}/open", gated(h.OpenIcon)).Methods("POST")
	api.Handle("/desktop/system-windows", gated(h.OpenSystemWindow)).Methods("POST")
	api.Handle("/windows/{id}", gated(h.CloseWindow)).Methods("DELETE")
	api.Handle("/windows/{id}/focus", gated(h.FocusWindow)).Methods("POST")
	api.Handle("/windows/{id}/minimize", gated(h.MinimizeWindow)).Methods("POST")
	api.Handle("/windows/{id}/maximize", gated(h.MaximizeWindow)).Methods("POST")
	api.Handle("/windows/{id}/restore", gated(h.RestoreWindow)).Methods("POST")
	api.Handle("/windows/{id}/taskbar-click", gated(h.TaskbarClick)).Methods("POST")
	api.Handle("/gesture", gated(h.Gesture)).Methods("POST")

	// Credential relay endpoint for embedded guest frames. Deliberately
	// outside the session gate: a guest frame carries no auth header and
	// the relay answers with whatever is cached (possibly nothing).
	api.HandleFunc("/relay/ws", func(w http.ResponseWriter, r *http.Request) {
		h.relay.HandleGuest(w, r, r.URL.Query().Get("frame"))
	}).Methods("GET")

	// Notepad (shared-password gated, not session gated)
	api.HandleFunc("/notepad/unlock", h.UnlockNotepad).Methods("POST")
	api.HandleFunc("/notepad", h.UpdateNotepad).Methods("PUT")

	// Admin editors (admin token gated)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.RequireAdmin)
	admin.HandleFunc("/users", h.ListUsers).Methods("GET")
	admin.HandleFunc("/users", h.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", h.UpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/secrets", h.ListSecrets).Methods("GET")
	admin.HandleFunc("/secrets", h.CreateSecret).Methods("POST")
	admin.HandleFunc("/secrets/{id}", h.UpdateSecret).Methods("PUT")
	admin.HandleFunc("/secrets/{id}", h.DeleteSecret).Methods("DELETE")
	admin.HandleFunc("/icons", h.ListIcons).Methods("GET")
	admin.HandleFunc("/icons", h.CreateIcon).Methods("POST")
	admin.HandleFunc("/icons/{id}", h.UpdateIcon).Methods("PUT")
	admin.HandleFunc("/icons/{id}", h.DeleteIcon).Methods("DELETE")

	// Static shell assets
	if assetsDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(assetsDir)))
	}

	// CORS middleware
	r.Use(corsMiddleware)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
