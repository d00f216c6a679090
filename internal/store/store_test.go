package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInsertAndGet(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	id, err := s.Insert(TableUsers, Record{"username": "alice", "isAdmin": true})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id == "" {
		t.Fatal("Insert() returned empty id")
	}

	rec, ok := s.Get(TableUsers, id)
	if !ok {
		t.Fatal("Get() did not find inserted record")
	}
	if rec.String("username") != "alice" {
		t.Errorf("username = %q, want %q", rec.String("username"), "alice")
	}
	if !rec.Bool("isAdmin") {
		t.Error("isAdmin = false, want true")
	}
}

func TestInsertKeepsProvidedID(t *testing.T) {
	s, _ := Open(t.TempDir())

	id, err := s.Insert(TableTokens, Record{"id": "tok-1", "username": "bob"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id != "tok-1" {
		t.Errorf("id = %q, want %q", id, "tok-1")
	}
}

func TestQueryFilter(t *testing.T) {
	s, _ := Open(t.TempDir())

	_, _ = s.Insert(TableUsers, Record{"username": "alice"})
	_, _ = s.Insert(TableUsers, Record{"username": "bob"})

	got := s.Query(TableUsers, func(r Record) bool {
		return r.String("username") == "bob"
	})
	if len(got) != 1 {
		t.Fatalf("Query() returned %d records, want 1", len(got))
	}
	if got[0].String("username") != "bob" {
		t.Errorf("username = %q, want %q", got[0].String("username"), "bob")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s, _ := Open(t.TempDir())

	id, _ := s.Insert(TableUsers, Record{"username": "alice", "password": "old"})
	if err := s.Update(TableUsers, id, Record{"password": "new"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	rec, _ := s.Get(TableUsers, id)
	if rec.String("password") != "new" {
		t.Errorf("password = %q, want %q", rec.String("password"), "new")
	}
	if rec.String("username") != "alice" {
		t.Errorf("username = %q, want %q (unrelated field disturbed)", rec.String("username"), "alice")
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	s, _ := Open(t.TempDir())

	if err := s.Update(TableUsers, "nope", Record{"x": 1}); err == nil {
		t.Fatal("Update() expected error for missing record")
	}
}

func TestDelete(t *testing.T) {
	s, _ := Open(t.TempDir())

	id, _ := s.Insert(TableSecrets, Record{"keyName": "OPENAI"})
	if err := s.Delete(TableSecrets, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(TableSecrets, id); ok {
		t.Fatal("Get() found record after Delete()")
	}
	if err := s.Delete(TableSecrets, id); err == nil {
		t.Fatal("Delete() expected error for missing record")
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, _ := Open(dir)
	id, _ := s.Insert(TableIcons, Record{"name": "Notepad"})

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() after snapshot error = %v", err)
	}
	rec, ok := s2.Get(TableIcons, id)
	if !ok {
		t.Fatal("record missing after reopen")
	}
	if rec.String("name") != "Notepad" {
		t.Errorf("name = %q, want %q", rec.String("name"), "Notepad")
	}
}

func TestOpenCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "records.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(dir); err == nil {
		t.Fatal("Open() expected error for corrupt snapshot")
	}
}
