package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"riptide/internal/config"
	"riptide/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "riptide",
	Short:   "Resumable raindrop.io bookmark cleanup with advisory suggestions",
	Long: `Riptide walks a raindrop.io collection in small batches, asks an advisory
service what to do with each bookmark, and leaves the final call to you.
Progress is checkpointed after every batch, so a session can be interrupted
and resumed at any time.`,
	Version: version,
	RunE:    runClean,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/riptide/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs")
	defaults := config.Default()
	rootCmd.Flags().IntP("batch-size", "b", defaults.BatchSize,
		"bookmarks per review batch")
	rootCmd.Flags().Bool("dry-run", false,
		"preview decisions without deleting or moving anything")
	rootCmd.Flags().String("archive-name", defaults.ArchiveCollection,
		"collection ARCHIVE decisions move bookmarks to")
	rootCmd.Flags().String("state-dir", defaults.StateDir,
		"directory for session checkpoints")
	rootCmd.Flags().Bool("checkpoint-per-record", false,
		"checkpoint after every record instead of every batch")
	rootCmd.Flags().Bool("retain-state", false,
		"keep the session file after a collection is finished")

	_ = viper.BindPFlag("batch_size", rootCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("archive_collection", rootCmd.Flags().Lookup("archive-name"))
	_ = viper.BindPFlag("state_dir", rootCmd.Flags().Lookup("state-dir"))
	_ = viper.BindPFlag("checkpoint_per_record", rootCmd.Flags().Lookup("checkpoint-per-record"))
	_ = viper.BindPFlag("retain_state", rootCmd.Flags().Lookup("retain-state"))

	// Credentials come from the environment, never from flags.
	_ = viper.BindEnv("raindrop.token", "RAINDROP_TOKEN")
	_ = viper.BindEnv("advisor.api_key", "ANTHROPIC_API_KEY")
}

func initConfig() {
	defaults := config.Default()
	viper.SetDefault("state_dir", defaults.StateDir)
	viper.SetDefault("batch_size", defaults.BatchSize)
	viper.SetDefault("milestone_interval", defaults.MilestoneInterval)
	viper.SetDefault("archive_collection", defaults.ArchiveCollection)
	viper.SetDefault("raindrop.base_url", defaults.Raindrop.BaseURL)
	viper.SetDefault("raindrop.page_size", defaults.Raindrop.PageSize)
	viper.SetDefault("advisor.model", defaults.Advisor.Model)
	viper.SetDefault("advisor.max_tokens", defaults.Advisor.MaxTokens)
	viper.SetDefault("advisor.request_interval_ms", defaults.Advisor.RequestInterval)
	viper.SetDefault("advisor.base_url", defaults.Advisor.BaseURL)
	viper.SetDefault("ui.show_reasonings", defaults.UI.ShowReasonings)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .riptide/config.yaml (current directory)
		// 2. ~/.config/riptide/config.yaml (user config)
		if _, err := os.Stat(".riptide/config.yaml"); err == nil {
			viper.SetConfigFile(".riptide/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "riptide"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: could not read config: %v\n", err)
		}
		// Missing config file is fine, defaults apply.
	}

	_ = viper.Unmarshal(&cfg)
}

// initLogging enables debug logging when requested via flag or environment.
// The returned cleanup is a no-op when logging stays disabled.
func initLogging(prefix string) (func(), error) {
	if !debugFlag && os.Getenv("RIPTIDE_DEBUG") == "" {
		return func() {}, nil
	}
	logPath := os.Getenv("RIPTIDE_LOG")
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "riptide starting", "version", version, "logPath", logPath)
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
