package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlConfig mirrors Config with yaml tags. Config itself carries mapstructure
// tags for viper, so marshaling goes through this shadow type.
type yamlConfig struct {
	StateDir            string `yaml:"state_dir"`
	BatchSize           int    `yaml:"batch_size"`
	DryRun              bool   `yaml:"dry_run"`
	MilestoneInterval   int    `yaml:"milestone_interval"`
	CheckpointPerRecord bool   `yaml:"checkpoint_per_record"`
	RetainState         bool   `yaml:"retain_state"`
	ArchiveCollection   string `yaml:"archive_collection"`
	Raindrop            struct {
		BaseURL  string `yaml:"base_url"`
		PageSize int    `yaml:"page_size"`
	} `yaml:"raindrop"`
	Advisor struct {
		Model           string `yaml:"model"`
		MaxTokens       int    `yaml:"max_tokens"`
		RequestInterval int    `yaml:"request_interval_ms"`
		BaseURL         string `yaml:"base_url"`
	} `yaml:"advisor"`
	UI struct {
		ShowReasonings bool `yaml:"show_reasonings"`
		ShowStatusBar  bool `yaml:"show_status_bar"`
		VimMode        bool `yaml:"vim_mode"`
	} `yaml:"ui"`
}

// Save writes the configuration to configPath atomically (write to temp,
// then rename). API credentials are never written to the file; they stay in
// the environment.
func Save(configPath string, cfg Config) error {
	var yc yamlConfig
	yc.StateDir = cfg.StateDir
	yc.BatchSize = cfg.BatchSize
	yc.DryRun = cfg.DryRun
	yc.MilestoneInterval = cfg.MilestoneInterval
	yc.CheckpointPerRecord = cfg.CheckpointPerRecord
	yc.RetainState = cfg.RetainState
	yc.ArchiveCollection = cfg.ArchiveCollection
	yc.Raindrop.BaseURL = cfg.Raindrop.BaseURL
	yc.Raindrop.PageSize = cfg.Raindrop.PageSize
	yc.Advisor.Model = cfg.Advisor.Model
	yc.Advisor.MaxTokens = cfg.Advisor.MaxTokens
	yc.Advisor.RequestInterval = cfg.Advisor.RequestInterval
	yc.Advisor.BaseURL = cfg.Advisor.BaseURL
	yc.UI.ShowReasonings = cfg.UI.ShowReasonings
	yc.UI.ShowStatusBar = cfg.UI.ShowStatusBar
	yc.UI.VimMode = cfg.UI.VimMode

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(yc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// WriteDefault writes the default configuration to configPath. It refuses to
// overwrite an existing file.
func WriteDefault(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config file: %w", err)
	}
	return Save(configPath, Default())
}

// writeAtomic writes data to path via a temp file in the same directory and a
// rename, so a crash never leaves a half-written config behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".riptide.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
