package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VIBER_TOKEN", "vtok")
	t.Setenv("NOTION_TOKEN", "ntok")
	t.Setenv("NOTION_DATABASE_ID", "db1")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.WebhookPath != "/webhook" {
		t.Errorf("WebhookPath = %q", cfg.WebhookPath)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.BroadcastInterval != 0 {
		t.Errorf("BroadcastInterval = %s, want disabled", cfg.BroadcastInterval)
	}
	if len(cfg.AuthorizedUserIDs) != 0 {
		t.Errorf("AuthorizedUserIDs = %v, want empty", cfg.AuthorizedUserIDs)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("VIBER_TOKEN", "vtok")
	// t.Setenv registers the restore; the unset makes the variable missing
	// for the duration of this test only.
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("NOTION_DATABASE_ID", "")
	os.Unsetenv("NOTION_TOKEN")
	os.Unsetenv("NOTION_DATABASE_ID")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without Notion credentials")
	}
}

func TestLoad_AllowListSeparator(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTHORIZED_USER_IDS", "U1,U2,U3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AuthorizedUserIDs) != 3 || cfg.AuthorizedUserIDs[1] != "U2" {
		t.Errorf("AuthorizedUserIDs = %v", cfg.AuthorizedUserIDs)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Port: 5000, WebhookPath: "/webhook"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"path without slash", func(c *Config) { c.WebhookPath = "webhook" }, true},
		{"negative interval", func(c *Config) { c.BroadcastInterval = -time.Second }, true},
		{"interval too short", func(c *Config) { c.BroadcastInterval = time.Second }, true},
		{"interval ok", func(c *Config) { c.BroadcastInterval = 30 * time.Second }, false},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestMenuSpec_Defaults(t *testing.T) {
	spec := DefaultMenuSpec()
	if _, ok := spec.Menus[RootMenu]; !ok {
		t.Fatal("defaults must define the root menu")
	}
	seen := map[string]bool{}
	for id, menu := range spec.Menus {
		for _, btn := range menu.Buttons {
			if btn.Action == "" {
				t.Errorf("menu %s has a button without an action token", id)
			}
			seen[btn.Action] = true
		}
	}
	for _, required := range []string{"quick_report", "full_report", "back_to_main", "check_notion"} {
		if !seen[required] {
			t.Errorf("default menus are missing action %q", required)
		}
	}
}

func TestLoadMenuSpec_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	overlay := `
welcome: "hi there"
phrases:
  ping: "pong"
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadMenuSpec(path)
	if err != nil {
		t.Fatalf("LoadMenuSpec: %v", err)
	}
	if spec.Welcome != "hi there" {
		t.Errorf("Welcome = %q", spec.Welcome)
	}
	if spec.Phrases["ping"] != "pong" {
		t.Errorf("Phrases = %v, want overlay to replace the table", spec.Phrases)
	}
	if _, ok := spec.Phrases["hello"]; ok {
		t.Error("overlay phrase table should replace, not merge")
	}
	// Sections absent from the overlay keep their defaults.
	if _, ok := spec.Menus[RootMenu]; !ok {
		t.Error("menus should fall back to defaults")
	}
	if spec.Properties["currentProfit"] == "" {
		t.Error("properties should fall back to defaults")
	}
}

func TestLoadMenuSpec_MenusWithoutRootRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	overlay := `
menus:
  crypto_menu:
    title: "only menu"
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMenuSpec(path); err == nil {
		t.Fatal("an overlay dropping the root menu must be rejected")
	}
}

func TestLoadMenuSpec_NoFile(t *testing.T) {
	spec, err := LoadMenuSpec("")
	if err != nil {
		t.Fatalf("LoadMenuSpec(\"\"): %v", err)
	}
	if spec.Welcome == "" {
		t.Error("empty path should yield defaults")
	}
}
