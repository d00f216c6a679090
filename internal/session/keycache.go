package session

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/adnanlatif/webdesk/pkg/models"
)

// KeyCache is the fast synchronous read path for provider keys and
// connection parameters, independent of the session store's shape, so
// the credential relay can answer a guest without an async fetch when
// values are already known.
type KeyCache struct {
	mu   sync.Mutex
	path string
}

// NewKeyCache creates a key cache persisting under dir.
func NewKeyCache(dir string) *KeyCache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Key cache: failed to create %s: %v", dir, err)
	}
	return &KeyCache{path: filepath.Join(dir, "keycache.json")}
}

// Patch is a partial key cache update. Nil fields are preserved.
type Patch struct {
	OpenAIKey       *string
	ClaudeKey       *string
	GeminiKey       *string
	ReplicateKey    *string
	SupabaseURL     *string
	SupabaseAnonKey *string
	Username        *string
	IsAdmin         *bool
	AuthToken       *string
}

// SaveAll merges the patch into the existing cached record. Unspecified
// fields keep their stored values.
func (c *KeyCache) SaveAll(patch Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.read()
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&rec.OpenAIKey, patch.OpenAIKey)
	apply(&rec.ClaudeKey, patch.ClaudeKey)
	apply(&rec.GeminiKey, patch.GeminiKey)
	apply(&rec.ReplicateKey, patch.ReplicateKey)
	apply(&rec.SupabaseURL, patch.SupabaseURL)
	apply(&rec.SupabaseAnonKey, patch.SupabaseAnonKey)
	apply(&rec.Username, patch.Username)
	apply(&rec.AuthToken, patch.AuthToken)
	if patch.IsAdmin != nil {
		rec.IsAdmin = *patch.IsAdmin
	}

	c.write(rec)
}

// GetAll returns the full cached record. It never fails: on any storage or
// parse error the result is a structurally complete record with empty
// fields, so callers can use it unconditionally.
func (c *KeyCache) GetAll() models.KeyCacheRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Clear removes every cached field, including any legacy duplicate keys a
// backward-compatible consumer may have written into the file.
func (c *KeyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		log.Printf("Key cache: failed to clear: %v", err)
	}
}

func (c *KeyCache) read() models.KeyCacheRecord {
	var rec models.KeyCacheRecord

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Key cache: read failed, returning defaults: %v", err)
		}
		return rec
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("Key cache: corrupt record, returning defaults: %v", err)
		return models.KeyCacheRecord{}
	}
	return rec
}

func (c *KeyCache) write(rec models.KeyCacheRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("Key cache: encode failed: %v", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		log.Printf("Key cache: write failed: %v", err)
	}
}
