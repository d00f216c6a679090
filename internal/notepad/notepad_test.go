package notepad

import (
	"errors"
	"testing"
	"time"

	"github.com/adnanlatif/webdesk/internal/store"
)

func newService(t *testing.T, quiet time.Duration) (*Service, *store.Store) {
	t.Helper()
	recs, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	return NewService(recs, "letmein", quiet), recs
}

func TestPasswordGate(t *testing.T) {
	s, _ := newService(t, time.Minute)

	if _, err := s.Get("wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("Get() error = %v, want ErrBadPassword", err)
	}
	if err := s.Update("", "content"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("Update() error = %v, want ErrBadPassword", err)
	}
}

func TestGetEmptyNote(t *testing.T) {
	s, _ := newService(t, time.Minute)

	note, err := s.Get("letmein")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if note.Content != "" {
		t.Errorf("Content = %q, want empty", note.Content)
	}
}

func TestUpdateVisibleBeforeFlush(t *testing.T) {
	s, _ := newService(t, time.Minute)

	if err := s.Update("letmein", "draft"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	note, _ := s.Get("letmein")
	if note.Content != "draft" {
		t.Errorf("Content = %q, want pending draft", note.Content)
	}
}

func TestBurstCoalescesToOneWrite(t *testing.T) {
	s, recs := newService(t, 30*time.Millisecond)

	// A fast typist: several edits inside the quiet period.
	for _, content := range []string{"h", "he", "hel", "hell", "hello"} {
		if err := s.Update("letmein", content); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	// Nothing is persisted until the quiet period passes.
	if _, ok := recs.Get(store.TableNotepad, "shared"); ok {
		t.Fatal("note persisted before the quiet period elapsed")
	}

	time.Sleep(100 * time.Millisecond)

	rec, ok := recs.Get(store.TableNotepad, "shared")
	if !ok {
		t.Fatal("note not persisted after the quiet period")
	}
	if rec.String("content") != "hello" {
		t.Errorf("persisted content = %q, want %q", rec.String("content"), "hello")
	}
}

func TestFlushForcesPendingWrite(t *testing.T) {
	s, recs := newService(t, time.Minute)

	_ = s.Update("letmein", "unsaved")
	s.Flush()

	rec, ok := recs.Get(store.TableNotepad, "shared")
	if !ok {
		t.Fatal("Flush() did not persist the note")
	}
	if rec.String("content") != "unsaved" {
		t.Errorf("persisted content = %q, want %q", rec.String("content"), "unsaved")
	}
}

func TestGetAfterFlushReadsStore(t *testing.T) {
	s, _ := newService(t, 10*time.Millisecond)

	_ = s.Update("letmein", "final")
	time.Sleep(50 * time.Millisecond)

	note, err := s.Get("letmein")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if note.Content != "final" {
		t.Errorf("Content = %q, want %q", note.Content, "final")
	}
	if note.UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero after persisted write")
	}
}
