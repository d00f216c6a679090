// Package store implements the generic record store backing the user,
// secret-key, auth-token, notepad and desktop-icon tables. Records are
// schemaless JSON objects grouped into named tables and snapshotted to
// disk after every mutation, so a restart replays the same state.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Table names used across the application.
const (
	TableUsers   = "users"
	TableSecrets = "secret_api_keys"
	TableTokens  = "auth_tokens"
	TableNotepad = "notepad"
	TableIcons   = "desktop_icons"
)

// Record is a single schemaless row. Every stored record carries an "id"
// field; Insert assigns one when the caller does not.
type Record map[string]interface{}

// ID returns the record's id field, or "" if unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns the named field as a string, or "" if absent or not a
// string.
func (r Record) String(field string) string {
	v, _ := r[field].(string)
	return v
}

// Bool returns the named field as a bool, defaulting to false.
func (r Record) Bool(field string) bool {
	v, _ := r[field].(bool)
	return v
}

// Store holds all tables in memory and persists a JSON snapshot under the
// store path after each mutation.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]Record
	path   string
}

// Open loads the snapshot at dir/records.json, creating the directory if
// needed. A missing snapshot yields an empty store; a corrupt snapshot is
// an error so bad state is never silently discarded.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &Store{
		tables: make(map[string]map[string]Record),
		path:   filepath.Join(dir, "records.json"),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.tables); err != nil {
		return nil, fmt.Errorf("failed to parse store snapshot: %w", err)
	}

	return s, nil
}

// Insert adds a record to the table, assigning a fresh id when the record
// has none, and returns the id. An existing record with the same id is
// overwritten.
func (s *Store) Insert(table string, rec Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.ID()
	if id == "" {
		id = uuid.New().String()
	}

	stored := cloneRecord(rec)
	stored["id"] = id

	if s.tables[table] == nil {
		s.tables[table] = make(map[string]Record)
	}
	s.tables[table][id] = stored

	return id, s.persist()
}

// Get retrieves a single record by id.
func (s *Store) Get(table, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tables[table][id]
	if !ok {
		return nil, false
	}
	return cloneRecord(rec), true
}

// Query returns all records in the table matching the filter. A nil
// filter matches everything.
func (s *Store) Query(table string, filter func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Record
	for _, rec := range s.tables[table] {
		if filter == nil || filter(rec) {
			result = append(result, cloneRecord(rec))
		}
	}
	return result
}

// Update merges the given fields into an existing record.
func (s *Store) Update(table, id string, fields Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tables[table][id]
	if !ok {
		return fmt.Errorf("record not found: %s/%s", table, id)
	}

	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}

	return s.persist()
}

// Delete removes a record. Deleting a missing record is an error so admin
// screens can report it.
func (s *Store) Delete(table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table][id]; !ok {
		return fmt.Errorf("record not found: %s/%s", table, id)
	}
	delete(s.tables[table], id)

	return s.persist()
}

// Count returns the number of records in a table.
func (s *Store) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// persist writes the snapshot via a temp file and rename. Callers hold
// the write lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.tables, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write store snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store snapshot: %w", err)
	}
	return nil
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
