package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"riptide/internal/state"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved session checkpoints",
	RunE:  runSessions,
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm [collection-id]",
	Short: "Delete saved sessions",
	Long:  `Delete the saved session for one collection, or every saved session with --all.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsRm,
}

var rmAll bool

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	sessionsRmCmd.Flags().BoolVar(&rmAll, "all", false, "delete every saved session, corrupt files included")
}

func runSessions(cmd *cobra.Command, _ []string) error {
	store := state.NewStore(cfg.StateDir)
	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("reading state directory: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved sessions")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintln(cmd.OutOrStdout(), formatSessionEntry(e))
	}
	return nil
}

// formatSessionEntry renders one List entry for the sessions command.
func formatSessionEntry(e state.Entry) string {
	if e.Err != nil {
		return fmt.Sprintf("%s  [corrupt: %v]", e.Path, e.Err)
	}
	s := e.Session
	return fmt.Sprintf("%-8d %-24s page %d, %d processed, %d errors, saved %s",
		s.CollectionID, s.CollectionName, s.Cursor+1, s.Stats.Processed, s.Stats.Errors,
		s.LastSavedAt.Format("2006-01-02 15:04"))
}

func runSessionsRm(cmd *cobra.Command, args []string) error {
	store := state.NewStore(cfg.StateDir)

	if rmAll {
		entries, err := store.List()
		if err != nil {
			return fmt.Errorf("reading state directory: %w", err)
		}
		for _, e := range entries {
			if err := store.Delete(e.Path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", e.Path)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("pass a collection id or --all")
	}
	var collectionID int64
	if _, err := fmt.Sscanf(args[0], "%d", &collectionID); err != nil {
		return fmt.Errorf("invalid collection id %q", args[0])
	}

	path, err := store.Find(collectionID)
	if err != nil {
		return fmt.Errorf("no session for collection %d", collectionID)
	}
	if err := store.Delete(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", path)
	return nil
}
