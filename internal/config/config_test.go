package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, 10, cfg.BatchSize)
	require.Equal(t, 50, cfg.MilestoneInterval)
	require.Equal(t, "Archive", cfg.ArchiveCollection)
	require.Equal(t, 50, cfg.Raindrop.PageSize)
	require.NotEmpty(t, cfg.Advisor.Model)
	require.False(t, cfg.DryRun)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"negative milestone interval", func(c *Config) { c.MilestoneInterval = -1 }, "milestone_interval"},
		{"zero page size", func(c *Config) { c.Raindrop.PageSize = 0 }, "page_size"},
		{"page size below batch size", func(c *Config) { c.Raindrop.PageSize = 5; c.BatchSize = 10 }, "smaller than batch_size"},
		{"zero max tokens", func(c *Config) { c.Advisor.MaxTokens = 0 }, "max_tokens"},
		{"negative request interval", func(c *Config) { c.Advisor.RequestInterval = -1 }, "request_interval_ms"},
		{"empty archive collection", func(c *Config) { c.ArchiveCollection = "" }, "archive_collection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave_RoundtripsThroughYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.BatchSize = 25
	cfg.DryRun = true
	cfg.UI.VimMode = true

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded yamlConfig
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	require.Equal(t, 25, loaded.BatchSize)
	require.True(t, loaded.DryRun)
	require.True(t, loaded.UI.VimMode)
	require.Equal(t, cfg.Advisor.Model, loaded.Advisor.Model)
}

func TestSave_NeverWritesCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Raindrop.Token = "rd-secret-token"
	cfg.Advisor.APIKey = "sk-ant-secret"

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "rd-secret-token")
	require.NotContains(t, string(data), "sk-ant-secret")
}

func TestSave_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "config.yaml")

	require.NoError(t, Save(path, Default()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, Save(path, Default()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "."), "leftover temp file %s", e.Name())
	}
}

func TestWriteDefault_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_dir: /custom"), 0644))

	err := WriteDefault(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	// Existing content untouched
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, "state_dir: /custom", string(data))
}

func TestWriteDefault_WritesFreshFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "batch_size: 10")
	require.Contains(t, string(data), "archive_collection: Archive")
}
