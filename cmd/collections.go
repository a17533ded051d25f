package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"riptide/internal/raindrop"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List raindrop.io collections",
	RunE:  runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	client, err := raindrop.NewClient(cfg.Raindrop.Token,
		raindrop.WithBaseURL(cfg.Raindrop.BaseURL),
	)
	if err != nil {
		return err
	}

	collections, err := client.Collections(context.Background())
	if err != nil {
		return fmt.Errorf("fetching collections: %w", err)
	}

	for _, col := range collections {
		fmt.Fprintf(cmd.OutOrStdout(), "%8d  %s (%d)\n", col.ID, col.Title, col.Count)
	}
	return nil
}
