package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Runner.MaxRetries != 3 {
		t.Errorf("expected default max_retries 3, got %d", cfg.Runner.MaxRetries)
	}

	if cfg.Runner.BreakerThreshold != 3 {
		t.Errorf("expected default breaker_threshold 3, got %d", cfg.Runner.BreakerThreshold)
	}

	if cfg.Runner.StaleAfter != 2*time.Hour {
		t.Errorf("expected default stale_after 2h, got %v", cfg.Runner.StaleAfter)
	}

	if cfg.Runner.AgentCommand != "claude" {
		t.Errorf("expected default agent_command 'claude', got %q", cfg.Runner.AgentCommand)
	}

	if cfg.Runner.UseDirectAPI {
		t.Error("expected use_direct_api to default to false")
	}

	if cfg.TUI.RefreshRate != 250*time.Millisecond {
		t.Errorf("expected refresh rate 250ms, got %v", cfg.TUI.RefreshRate)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
runner:
  max_retries: 4
  breaker_threshold: 2
  stale_after: 1h
  model: claude-opus-4-5
  agent_command: claude
  use_direct_api: true
tui:
  refresh_rate: 200ms
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}

	if cfg.Runner.MaxRetries != 4 {
		t.Errorf("expected max_retries 4, got %d", cfg.Runner.MaxRetries)
	}

	if cfg.Runner.BreakerThreshold != 2 {
		t.Errorf("expected breaker_threshold 2, got %d", cfg.Runner.BreakerThreshold)
	}

	if cfg.Runner.StaleAfter != time.Hour {
		t.Errorf("expected stale_after 1h, got %v", cfg.Runner.StaleAfter)
	}

	if cfg.Runner.Model != "claude-opus-4-5" {
		t.Errorf("expected model 'claude-opus-4-5', got %q", cfg.Runner.Model)
	}

	if !cfg.Runner.UseDirectAPI {
		t.Error("expected use_direct_api to be true")
	}

	if cfg.TUI.RefreshRate != 200*time.Millisecond {
		t.Errorf("expected refresh rate 200ms, got %v", cfg.TUI.RefreshRate)
	}
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/forgeloop"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".forgeloop.yaml"), []byte("runner:\n  max_retries: 7\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(origWd)

	if err := os.Chdir(sub); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	got := findProjectConfig()
	want := filepath.Join(tmpDir, ".forgeloop.yaml")
	if got != want {
		t.Errorf("findProjectConfig() = %q, want %q", got, want)
	}
}
