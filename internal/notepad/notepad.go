// Package notepad backs the shared notepad: a single document gated by
// one shared plaintext password distinct from user accounts. Rapid edits
// are coalesced server-side into one store write after a quiet period;
// an in-flight save never blocks further edits, so the last write wins
// by arrival order.
package notepad

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// noteID is the fixed id of the single shared document.
const noteID = "shared"

// DefaultQuietPeriod is the debounce window for autosave.
const DefaultQuietPeriod = 2 * time.Second

// ErrBadPassword is returned for a wrong or empty notepad password.
var ErrBadPassword = fmt.Errorf("incorrect notepad password")

// Service owns the shared note and its debounced writer.
type Service struct {
	store    *store.Store
	password string
	quiet    time.Duration

	mu      sync.Mutex
	pending string
	dirty   bool
	timer   *time.Timer
}

// NewService creates the notepad service. quiet <= 0 selects the default
// two-second window.
func NewService(recs *store.Store, password string, quiet time.Duration) *Service {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Service{store: recs, password: password, quiet: quiet}
}

// Get returns the shared note content after checking the password.
func (s *Service) Get(password string) (models.Note, error) {
	if password != s.password {
		return models.Note{}, ErrBadPassword
	}

	// Unflushed edits are the freshest content.
	s.mu.Lock()
	if s.dirty {
		note := models.Note{ID: noteID, Content: s.pending, UpdatedAt: time.Now()}
		s.mu.Unlock()
		return note, nil
	}
	s.mu.Unlock()

	rec, ok := s.store.Get(store.TableNotepad, noteID)
	if !ok {
		return models.Note{ID: noteID}, nil
	}

	updatedAt, _ := time.Parse(time.RFC3339Nano, rec.String("updatedAt"))
	return models.Note{ID: noteID, Content: rec.String("content"), UpdatedAt: updatedAt}, nil
}

// Update replaces the note content. The write to the record store fires
// after the quiet period elapses without another update.
func (s *Service) Update(password, content string) error {
	if password != s.password {
		return ErrBadPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = content
	s.dirty = true

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.flush)
	return nil
}

// flush writes the pending content. Failures are logged; the content
// stays dirty so the next edit retries the write.
func (s *Service) flush() {
	s.mu.Lock()
	content := s.pending
	s.mu.Unlock()

	_, err := s.store.Insert(store.TableNotepad, store.Record{
		"id":        noteID,
		"content":   content,
		"updatedAt": time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("Notepad: failed to save note: %v", err)
		return
	}

	s.mu.Lock()
	if s.pending == content {
		s.dirty = false
	}
	s.mu.Unlock()
}

// Flush forces any pending content to disk, used at shutdown.
func (s *Service) Flush() {
	s.mu.Lock()
	dirty := s.dirty
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	if dirty {
		s.flush()
	}
}
