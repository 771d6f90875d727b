// ABOUTME: Cleanup command for manually sweeping the cache database
// ABOUTME: Removes stale entries and feed rows no recipe references anymore

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/feedmill/internal/recipe"
	"github.com/harper/feedmill/internal/timeutil"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Sweep stale and orphaned cache entries",
	Long: `Delete cache entries that are older than the retention window, plus
feed entries whose URL no longer appears in any recipe.

Entries with recorded fetch failures are kept regardless of age; their
failure counts are the backoff state for future runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		retention, _ := cmd.Flags().GetDuration("retention")
		orphans, _ := cmd.Flags().GetBool("orphans")

		var known []string
		if orphans {
			set, err := recipe.Load(recipesPath)
			if err != nil {
				return err
			}
			known = set.AllURLs()
		}

		deleted, err := store.Cleanup(cmd.Context(), retention, known)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}

		fmt.Printf("Removed %d cache entr(ies)\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().Duration("retention", timeutil.CutoffWindow, "drop entries older than this")
	cleanupCmd.Flags().Bool("orphans", true, "also drop feeds missing from the recipe file")
}
