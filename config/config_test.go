package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Pin the variables the assertions depend on, the ambient environment
	// may have them set.
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("STRATEGY", "routed")
	t.Setenv("PORT", "8000")
	t.Setenv("CHAT_RATE_LIMIT_PER_HOUR", "50")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Strategy != "routed" {
		t.Errorf("strategy = %q", s.Strategy)
	}
	if s.Port != 8000 {
		t.Errorf("port = %d", s.Port)
	}
	if s.ChatRateLimitPerHour != 50 {
		t.Errorf("chat_rate_limit_per_hour = %d", s.ChatRateLimitPerHour)
	}
	if s.AuthEnabled() || s.ChatEnabled() || s.UseAzure() {
		t.Error("nothing should be enabled with an empty environment")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("STRATEGY", "iterative")
	t.Setenv("PORT", "9000")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.ChatEnabled() {
		t.Error("chat should be enabled")
	}
	if s.Strategy != "iterative" {
		t.Errorf("strategy = %q", s.Strategy)
	}
	if s.Port != 9000 {
		t.Errorf("port = %d", s.Port)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("STRATEGY", "parallel")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestLoadProvidersDefault(t *testing.T) {
	p, err := LoadProviders("")
	if err != nil {
		t.Fatalf("LoadProviders failed: %v", err)
	}
	if len(p.Enabled) != 4 {
		t.Errorf("enabled = %v", p.Enabled)
	}
}

func TestLoadProvidersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte("enabled_providers:\n  - snl\n  - wikipedia\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProviders(path)
	if err != nil {
		t.Fatalf("LoadProviders failed: %v", err)
	}
	if len(p.Enabled) != 2 || p.Enabled[0] != "snl" {
		t.Errorf("enabled = %v", p.Enabled)
	}
}

func TestLoadProvidersMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-providers.yaml")

	p, err := LoadProviders(path)
	if err != nil {
		t.Fatalf("LoadProviders failed: %v", err)
	}
	if len(p.Enabled) != 4 {
		t.Errorf("enabled = %v", p.Enabled)
	}
}
