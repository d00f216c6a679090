package models

// Session is the authenticated identity for the current user. It is owned
// exclusively by the session store; other components hold only the
// read-only projection they need (username, isAdmin).
type Session struct {
	Username  string `json:"username"`
	APIKey    string `json:"apiKey"`
	IsAdmin   bool   `json:"isAdmin"`
	AuthToken string `json:"authToken,omitempty"`
}

// SessionProjection is the read-only view handed to UI-facing components.
type SessionProjection struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// KeyCacheRecord is the denormalized provider-key mirror kept for fast
// synchronous reads and for replay to newly created guest frames. Readers
// may rely on the record always being structurally complete: every field
// is present, defaulting to its zero value.
type KeyCacheRecord struct {
	OpenAIKey    string `json:"openaiKey"`
	ClaudeKey    string `json:"claudeKey"`
	GeminiKey    string `json:"geminiKey"`
	ReplicateKey string `json:"replicateKey"`

	// Connection parameters forwarded alongside the provider keys so a
	// guest can reach the backing store without its own configuration.
	SupabaseURL     string `json:"supabaseUrl"`
	SupabaseAnonKey string `json:"supabaseAnonKey"`

	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	AuthToken string `json:"authToken"`
}

// HasProviderKey reports whether at least one provider slot is populated.
func (r KeyCacheRecord) HasProviderKey() bool {
	return r.OpenAIKey != "" || r.ClaudeKey != "" || r.GeminiKey != "" || r.ReplicateKey != ""
}
