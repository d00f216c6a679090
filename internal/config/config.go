// Package config loads webdesk configuration.
// Source priority (highest to lowest):
// 1. Environment variables (WEBDESK_ADDR, WEBDESK_DATA_DIR, ...)
// 2. Config file path passed to Load (YAML)
// 3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/adnanlatif/webdesk/pkg/models"
)

// Config holds server settings and the seeded desktop layout.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// DataDir is the root for the record store and session state files.
	DataDir string `yaml:"data_dir"`
	// AssetsDir holds the static shell assets served at /.
	AssetsDir string `yaml:"assets_dir"`

	// NotepadPassword is the single shared notepad password, separate
	// from any user account.
	NotepadPassword string `yaml:"notepad_password"`

	// DefaultAdminUser/Password seed the user table when it is empty.
	DefaultAdminUser     string `yaml:"default_admin_user"`
	DefaultAdminPassword string `yaml:"default_admin_password"`

	Viewport      models.Size `yaml:"viewport"`
	TaskbarHeight int         `yaml:"taskbar_height"`
	MaxPrograms   int64       `yaml:"max_programs"`

	// Icons is the desktop layout seeded on first run; afterwards the
	// admin icon editor owns it.
	Icons []IconConfig `yaml:"icons"`
}

// IconConfig is the YAML shape of a seeded desktop icon.
type IconConfig struct {
	Name      string `yaml:"name"`
	Glyph     string `yaml:"glyph"`
	TargetURL string `yaml:"target_url"`
	Behavior  string `yaml:"behavior"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	SortOrder int    `yaml:"sort_order"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:                 ":8080",
		DataDir:              "./storage",
		AssetsDir:            "./web",
		NotepadPassword:      "notepad",
		DefaultAdminUser:     "admin",
		DefaultAdminPassword: "admin",
		Viewport:             models.Size{Width: 1280, Height: 800},
		TaskbarHeight:        30,
		MaxPrograms:          10,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides. A missing file is fine; a malformed one is an
// error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = Defaults().Viewport
	}
	if cfg.TaskbarHeight <= 0 {
		cfg.TaskbarHeight = Defaults().TaskbarHeight
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WEBDESK_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("WEBDESK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WEBDESK_ASSETS_DIR"); v != "" {
		cfg.AssetsDir = v
	}
	if v := os.Getenv("WEBDESK_NOTEPAD_PASSWORD"); v != "" {
		cfg.NotepadPassword = v
	}
	if v := os.Getenv("WEBDESK_ADMIN_USER"); v != "" {
		cfg.DefaultAdminUser = v
	}
	if v := os.Getenv("WEBDESK_ADMIN_PASSWORD"); v != "" {
		cfg.DefaultAdminPassword = v
	}
	if v := os.Getenv("WEBDESK_MAX_PROGRAMS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxPrograms = n
		}
	}
}

// SeedIcons converts the configured layout into desktop icon models.
func (c Config) SeedIcons() []models.DesktopIcon {
	icons := make([]models.DesktopIcon, 0, len(c.Icons))
	for _, ic := range c.Icons {
		behavior := models.OpenBehavior(ic.Behavior)
		if behavior == "" {
			behavior = models.OpenInWindow
		}
		icons = append(icons, models.DesktopIcon{
			Name:      ic.Name,
			Glyph:     ic.Glyph,
			TargetURL: ic.TargetURL,
			Behavior:  behavior,
			Position:  models.Position{X: ic.X, Y: ic.Y},
			SortOrder: ic.SortOrder,
		})
	}
	return icons
}
