// Package config handles configuration loading and management for
// forgeloop. It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for forgeloop.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// RunnerConfig holds the Session Runner's tunables, per spec.md §4.5/§9's
// named constants (MAX_RETRIES, BREAKER_THRESHOLD). BATCH_SIZE is fixed at
// 3 by design (see internal/batcher) and is not user-configurable.
type RunnerConfig struct {
	// MaxRetries is the retry budget before a feature auto-fails.
	MaxRetries int `mapstructure:"max_retries"`
	// BreakerThreshold is the number of consecutive failed iterations
	// before the outer loop stops.
	BreakerThreshold int `mapstructure:"breaker_threshold"`
	// StaleAfter is how long an in_progress feature may sit untouched
	// before Recovery resets it even without a detected crash.
	StaleAfter time.Duration `mapstructure:"stale_after"`
	// Model is the model identifier passed to the agent.
	Model string `mapstructure:"model"`
	// AgentCommand is the subprocess binary name for the default
	// SubprocessInvoker backend.
	AgentCommand string `mapstructure:"agent_command"`
	// UseDirectAPI selects internal/agentapi over internal/agent's
	// subprocess backend.
	UseDirectAPI bool `mapstructure:"use_direct_api"`
}

// TUIConfig holds dashboard display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.forgeloop.yaml in current directory or a parent)
// 3. User config (~/.config/forgeloop/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", path, err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("runner.max_retries", cfg.Runner.MaxRetries)
	v.Set("runner.breaker_threshold", cfg.Runner.BreakerThreshold)
	v.Set("runner.stale_after", cfg.Runner.StaleAfter.String())
	v.Set("runner.model", cfg.Runner.Model)
	v.Set("runner.agent_command", cfg.Runner.AgentCommand)
	v.Set("runner.use_direct_api", cfg.Runner.UseDirectAPI)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file, if any.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("runner.max_retries", 3)
	v.SetDefault("runner.breaker_threshold", 3)
	v.SetDefault("runner.stale_after", "2h")
	v.SetDefault("runner.model", "")
	v.SetDefault("runner.agent_command", "claude")
	v.SetDefault("runner.use_direct_api", false)

	v.SetDefault("tui.refresh_rate", "250ms")
}

// getUserConfigDir returns the XDG config directory for forgeloop.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "forgeloop")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "forgeloop")
	}
	return filepath.Join(home, ".config", "forgeloop")
}

// findProjectConfig searches for .forgeloop.yaml in the current directory
// and its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".forgeloop.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return ""
}

func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with built-in default values.
func Default() *Config {
	return &Config{
		Runner: RunnerConfig{
			MaxRetries:       3,
			BreakerThreshold: 3,
			StaleAfter:       2 * time.Hour,
			AgentCommand:     "claude",
		},
		TUI: TUIConfig{
			RefreshRate: 250 * time.Millisecond,
		},
	}
}
