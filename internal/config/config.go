// Package config provides configuration types, defaults, and persistence for riptide.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all configuration options for riptide.
type Config struct {
	// StateDir is where session snapshots are written.
	// Default: ~/.riptide/state
	StateDir string `mapstructure:"state_dir"`

	// BatchSize is the number of bookmarks fetched and reviewed per batch.
	BatchSize int `mapstructure:"batch_size"`

	// DryRun previews decisions without executing any mutation.
	DryRun bool `mapstructure:"dry_run"`

	// MilestoneInterval emits a progress notification every N processed
	// bookmarks. 0 disables milestones.
	MilestoneInterval int `mapstructure:"milestone_interval"`

	// CheckpointPerRecord commits state after every record instead of once
	// per batch. Slower, but survives crashes mid-batch.
	CheckpointPerRecord bool `mapstructure:"checkpoint_per_record"`

	// RetainState keeps the session file after a collection is exhausted.
	RetainState bool `mapstructure:"retain_state"`

	// ArchiveCollection is the collection ARCHIVE decisions move bookmarks to.
	ArchiveCollection string `mapstructure:"archive_collection"`

	Raindrop RaindropConfig `mapstructure:"raindrop"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	UI       UIConfig       `mapstructure:"ui"`
}

// RaindropConfig holds raindrop.io API settings.
type RaindropConfig struct {
	// Token is the raindrop.io API token. Usually supplied via the
	// RAINDROP_TOKEN environment variable rather than the config file.
	Token string `mapstructure:"token"`

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `mapstructure:"base_url"`

	// PageSize is the per-request page size when fetching bookmarks.
	PageSize int `mapstructure:"page_size"`
}

// AdvisorConfig holds advisory service settings.
type AdvisorConfig struct {
	// APIKey is the Anthropic API key. Usually supplied via the
	// ANTHROPIC_API_KEY environment variable.
	APIKey string `mapstructure:"api_key"`

	// Model names the model used for suggestions.
	Model string `mapstructure:"model"`

	// MaxTokens caps the response size per batch request.
	MaxTokens int `mapstructure:"max_tokens"`

	// RequestInterval is the minimum delay between advisory requests,
	// in milliseconds.
	RequestInterval int `mapstructure:"request_interval_ms"`

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `mapstructure:"base_url"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowReasonings bool `mapstructure:"show_reasonings"` // Show advisory reasoning under each row
	ShowStatusBar  bool `mapstructure:"show_status_bar"`
	VimMode        bool `mapstructure:"vim_mode"` // Enable vim keybindings in the review list
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		StateDir:          DefaultStateDir(),
		BatchSize:         10,
		MilestoneInterval: 50,
		ArchiveCollection: "Archive",
		Raindrop: RaindropConfig{
			BaseURL:  "https://api.raindrop.io/rest/v1",
			PageSize: 50,
		},
		Advisor: AdvisorConfig{
			Model:           "claude-3-5-haiku-latest",
			MaxTokens:       2048,
			RequestInterval: 1000,
			BaseURL:         "https://api.anthropic.com/v1",
		},
		UI: UIConfig{
			ShowReasonings: true,
			ShowStatusBar:  true,
		},
	}
}

// Validate checks that the configuration is usable for a cleanup run.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	}
	if c.MilestoneInterval < 0 {
		return fmt.Errorf("milestone_interval must not be negative, got %d", c.MilestoneInterval)
	}
	if c.Raindrop.PageSize < 1 {
		return fmt.Errorf("raindrop.page_size must be at least 1, got %d", c.Raindrop.PageSize)
	}
	if c.Raindrop.PageSize < c.BatchSize {
		return fmt.Errorf("raindrop.page_size %d is smaller than batch_size %d", c.Raindrop.PageSize, c.BatchSize)
	}
	if c.Advisor.MaxTokens < 1 {
		return fmt.Errorf("advisor.max_tokens must be at least 1, got %d", c.Advisor.MaxTokens)
	}
	if c.Advisor.RequestInterval < 0 {
		return fmt.Errorf("advisor.request_interval_ms must not be negative, got %d", c.Advisor.RequestInterval)
	}
	if c.ArchiveCollection == "" {
		return fmt.Errorf("archive_collection must not be empty")
	}
	return nil
}

// DefaultStateDir returns ~/.riptide/state, or a relative fallback if the
// home directory is unavailable.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".riptide/state"
	}
	return filepath.Join(home, ".riptide", "state")
}

// DefaultConfigPath returns ~/.config/riptide/config.yaml or empty string if
// home dir unavailable.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "riptide", "config.yaml")
}

// DefaultLogPath returns the debug log location next to the state directory.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "riptide-debug.log"
	}
	return filepath.Join(home, ".riptide", "debug.log")
}
