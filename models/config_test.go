package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AI.Cooldown != 20*time.Second {
		t.Errorf("cooldown = %v, want 20s", cfg.AI.Cooldown)
	}
	if cfg.AI.BatteryThreshold != 0.25 {
		t.Errorf("battery threshold = %v, want 0.25", cfg.AI.BatteryThreshold)
	}
	if cfg.Storage.MaxFocusEvents != 500 || cfg.Storage.MaxActionHistory != 50 {
		t.Errorf("caps = %d/%d, want 500/50", cfg.Storage.MaxFocusEvents, cfg.Storage.MaxActionHistory)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: /tmp/test.db
ai:
  cooldown: 45s
  battery_threshold: 0.5
  timeouts:
    generateOneLiner: 5s
cleanup:
  max_bytes: 1024
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("db_path = %q", cfg.DBPath)
	}
	if cfg.AI.Cooldown != 45*time.Second {
		t.Errorf("cooldown = %v, want 45s", cfg.AI.Cooldown)
	}
	if cfg.AI.BatteryThreshold != 0.5 {
		t.Errorf("battery threshold = %v", cfg.AI.BatteryThreshold)
	}
	if cfg.AI.Timeouts[LabelOneLiner] != 5*time.Second {
		t.Errorf("one-liner timeout = %v, want 5s", cfg.AI.Timeouts[LabelOneLiner])
	}
	if cfg.AI.Timeouts[LabelFocusCoach] != 60*time.Second {
		t.Errorf("coach timeout should keep default, got %v", cfg.AI.Timeouts[LabelFocusCoach])
	}
	if cfg.Cleanup.MaxBytes != 1024 {
		t.Errorf("max_bytes = %d", cfg.Cleanup.MaxBytes)
	}
	// Untouched sections keep defaults.
	if cfg.Focus.MaxSession != 30*time.Minute {
		t.Errorf("max session = %v", cfg.Focus.MaxSession)
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"shopping", CategoryShopping},
		{"  Learning ", CategoryLearning},
		{"NEWS", CategoryNews},
		{"cooking", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashText(t *testing.T) {
	if HashText("") != "" {
		t.Error("empty text should hash to empty string")
	}
	// "a" = 97 -> 0x61
	if got := HashText("a"); got != "61" {
		t.Errorf("HashText(a) = %q, want 61", got)
	}
	// "ab" = 97*31 + 98 = 3105 -> 0xc21
	if got := HashText("ab"); got != "c21" {
		t.Errorf("HashText(ab) = %q, want c21", got)
	}
	if HashText("hello world") == HashText("hello world!") {
		t.Error("different text should hash differently")
	}
}
