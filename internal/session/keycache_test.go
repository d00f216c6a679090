package session

import (
	"os"
	"path/filepath"
	"testing"
)

func str(s string) *string { return &s }

func TestSaveAllMergePreservesUnspecified(t *testing.T) {
	c := NewKeyCache(t.TempDir())

	c.SaveAll(Patch{OpenAIKey: str("sk-open"), GeminiKey: str("gm-1")})
	c.SaveAll(Patch{ClaudeKey: str("sk-claude")})

	rec := c.GetAll()
	if rec.OpenAIKey != "sk-open" {
		t.Errorf("OpenAIKey = %q, want %q", rec.OpenAIKey, "sk-open")
	}
	if rec.ClaudeKey != "sk-claude" {
		t.Errorf("ClaudeKey = %q, want %q", rec.ClaudeKey, "sk-claude")
	}
	if rec.GeminiKey != "gm-1" {
		t.Errorf("GeminiKey = %q, want %q", rec.GeminiKey, "gm-1")
	}
}

func TestSaveAllExplicitEmptyOverwrites(t *testing.T) {
	c := NewKeyCache(t.TempDir())

	c.SaveAll(Patch{OpenAIKey: str("sk-open")})
	c.SaveAll(Patch{OpenAIKey: str("")})

	if rec := c.GetAll(); rec.OpenAIKey != "" {
		t.Errorf("OpenAIKey = %q, want empty after explicit clear", rec.OpenAIKey)
	}
}

func TestGetAllDefaultsOnFreshCache(t *testing.T) {
	c := NewKeyCache(t.TempDir())

	rec := c.GetAll()
	if rec.HasProviderKey() {
		t.Errorf("fresh cache has provider keys: %+v", rec)
	}
	if rec.IsAdmin {
		t.Error("fresh cache IsAdmin = true")
	}
}

func TestGetAllDefaultsOnCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	c := NewKeyCache(dir)

	if err := os.WriteFile(filepath.Join(dir, "keycache.json"), []byte("not json at all"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := c.GetAll()
	if rec.OpenAIKey != "" || rec.ClaudeKey != "" || rec.GeminiKey != "" || rec.ReplicateKey != "" {
		t.Errorf("corrupt cache returned non-empty keys: %+v", rec)
	}
	if rec.IsAdmin {
		t.Error("corrupt cache IsAdmin = true, want false")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	c := NewKeyCache(t.TempDir())

	admin := true
	c.SaveAll(Patch{
		OpenAIKey:    str("sk-open"),
		ReplicateKey: str("r8-tok"),
		Username:     str("alice"),
		IsAdmin:      &admin,
	})
	c.Clear()

	rec := c.GetAll()
	if rec.HasProviderKey() {
		t.Errorf("keys survived Clear(): %+v", rec)
	}
	if rec.Username != "" || rec.IsAdmin {
		t.Errorf("identity survived Clear(): %+v", rec)
	}
}

func TestHasProviderKey(t *testing.T) {
	c := NewKeyCache(t.TempDir())

	if c.GetAll().HasProviderKey() {
		t.Fatal("HasProviderKey() = true on empty cache")
	}

	c.SaveAll(Patch{ReplicateKey: str("r8-tok")})
	if !c.GetAll().HasProviderKey() {
		t.Fatal("HasProviderKey() = false with a replicate key")
	}
}
