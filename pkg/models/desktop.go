package models

import "time"

// OpenBehavior controls how a desktop icon's target is launched.
type OpenBehavior string

const (
	OpenInWindow      OpenBehavior = "window"
	OpenInNewTab      OpenBehavior = "new-tab"
	OpenEmbeddedPlain OpenBehavior = "embedded-plain"
)

// DesktopIcon is a persisted, admin-editable launch descriptor. The shell
// controller treats it as opaque: name, glyph and target are passed
// through to the window it opens.
type DesktopIcon struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Glyph     string       `json:"glyph"`
	TargetURL string       `json:"targetUrl"`
	Behavior  OpenBehavior `json:"behavior"`
	Position  Position     `json:"position"`
	SortOrder int          `json:"sortOrder"`
}

// User is a row in the credential table. Passwords are stored and compared
// in plaintext; this mirrors the backing table and is an explicit
// non-goal to harden.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// SecretKey is a row in the secret API key table.
type SecretKey struct {
	ID       string `json:"id"`
	KeyName  string `json:"keyName"`
	KeyValue string `json:"keyValue"`
}

// AuthToken is a row in the auth token table.
type AuthToken struct {
	Token      string    `json:"token"`
	Username   string    `json:"username"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// Note is the single shared notepad document.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}
