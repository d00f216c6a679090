// Package session holds the authenticated identity and the denormalized
// provider key cache. Both persist to disk so a shell reload does not
// force re-authentication, and both follow one contract: reads never
// fail (they degrade to safe defaults) and failed writes are logged
// no-ops. Nothing in this package returns an error.
package session

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/adnanlatif/webdesk/pkg/models"
)

// state is the on-disk shape of the session file.
type state struct {
	Session *models.Session `json:"session,omitempty"`
	// StandaloneToken holds a token saved before any session existed, for
	// later association.
	StandaloneToken string `json:"standaloneToken,omitempty"`
}

// Store is the single source of truth for "who is logged in and with what
// credentials".
type Store struct {
	mu    sync.Mutex
	path  string
	cache *KeyCache
}

// NewStore creates a session store persisting under dir, coupled to the
// key cache so ClearSession can wipe both as one logical operation.
func NewStore(dir string, cache *KeyCache) *Store {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Session store: failed to create %s: %v", dir, err)
	}
	return &Store{path: filepath.Join(dir, "session.json"), cache: cache}
}

// SaveSession replaces the current session wholesale. There are no merge
// semantics: callers pass a complete picture. The provider key cache is
// updated in the same call so the two stores never disagree past the
// current operation.
func (s *Store) SaveSession(username, providerKey string, isAdmin bool, authToken string) {
	s.mu.Lock()
	st := s.read()
	st.Session = &models.Session{
		Username:  username,
		APIKey:    providerKey,
		IsAdmin:   isAdmin,
		AuthToken: authToken,
	}
	s.write(st)
	s.mu.Unlock()

	patch := Patch{Username: &username, IsAdmin: &isAdmin, AuthToken: &authToken}
	if providerKey != "" {
		patch.OpenAIKey = &providerKey
	}
	s.cache.SaveAll(patch)
}

// GetSession returns the current session, or nil when none exists or the
// stored state cannot be read.
func (s *Store) GetSession() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().Session
}

// Projection returns the read-only view UI components are allowed to hold.
func (s *Store) Projection() (models.SessionProjection, bool) {
	sess := s.GetSession()
	if sess == nil {
		return models.SessionProjection{}, false
	}
	return models.SessionProjection{Username: sess.Username, IsAdmin: sess.IsAdmin}, true
}

// ClearSession removes the session, any standalone token, and the provider
// key cache as a single logical operation. Used on explicit logout.
func (s *Store) ClearSession() {
	s.mu.Lock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("Session store: failed to clear: %v", err)
	}
	s.mu.Unlock()

	s.cache.Clear()
}

// SaveAuthToken updates the token on the existing session without
// disturbing other fields. When no session exists yet the token is kept
// standalone for later association.
func (s *Store) SaveAuthToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.read()
	if st.Session != nil {
		st.Session.AuthToken = token
	} else {
		st.StandaloneToken = token
	}
	s.write(st)
}

// GetAuthToken prefers the token embedded in the session and falls back to
// a standalone stored token. Returns "" when neither exists.
func (s *Store) GetAuthToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.read()
	if st.Session != nil && st.Session.AuthToken != "" {
		return st.Session.AuthToken
	}
	return st.StandaloneToken
}

// read loads the state file, degrading to an empty state on any failure.
// Callers hold the lock.
func (s *Store) read() state {
	var st state

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Session store: read failed, treating as no session: %v", err)
		}
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("Session store: corrupt state, treating as no session: %v", err)
		return state{}
	}
	return st
}

// write persists the state file. Failures are logged and swallowed; the
// in-flight operation becomes a no-op. Callers hold the lock.
func (s *Store) write(st state) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Printf("Session store: encode failed: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		log.Printf("Session store: write failed: %v", err)
	}
}
