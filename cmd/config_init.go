package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"riptide/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the riptide config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default config file. Refuses to overwrite an existing
one. Credentials are never written to the config file; supply them via the
RAINDROP_TOKEN and ANTHROPIC_API_KEY environment variables.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine config path, pass --config")
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
