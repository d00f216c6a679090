package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adnanlatif/webdesk/pkg/models"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.Viewport != (models.Size{Width: 1280, Height: 800}) {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9090"
notepad_password: "s3cret"
icons:
  - name: Paint
    target_url: https://example.com/paint
    behavior: window
    sort_order: 1
  - name: Docs
    target_url: https://example.com/docs
    behavior: new-tab
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.NotepadPassword != "s3cret" {
		t.Errorf("NotepadPassword = %q", cfg.NotepadPassword)
	}

	icons := cfg.SeedIcons()
	if len(icons) != 2 {
		t.Fatalf("SeedIcons() length = %d, want 2", len(icons))
	}
	if icons[0].Behavior != models.OpenInWindow {
		t.Errorf("Behavior = %q, want %q", icons[0].Behavior, models.OpenInWindow)
	}
	if icons[1].Behavior != models.OpenInNewTab {
		t.Errorf("Behavior = %q, want %q", icons[1].Behavior, models.OpenInNewTab)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- nope"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEBDESK_ADDR", ":7070")
	t.Setenv("WEBDESK_NOTEPAD_PASSWORD", "env-pw")
	t.Setenv("WEBDESK_MAX_PROGRAMS", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("Addr = %q, want env override", cfg.Addr)
	}
	if cfg.NotepadPassword != "env-pw" {
		t.Errorf("NotepadPassword = %q, want env override", cfg.NotepadPassword)
	}
	if cfg.MaxPrograms != 3 {
		t.Errorf("MaxPrograms = %d, want 3", cfg.MaxPrograms)
	}
}

func TestSeedIconsDefaultBehavior(t *testing.T) {
	cfg := Config{Icons: []IconConfig{{Name: "Thing", TargetURL: "https://x"}}}

	icons := cfg.SeedIcons()
	if icons[0].Behavior != models.OpenInWindow {
		t.Errorf("Behavior = %q, want default %q", icons[0].Behavior, models.OpenInWindow)
	}
}
