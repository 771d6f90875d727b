// ABOUTME: Failing command listing cache entries with repeated fetch failures
// ABOUTME: Renders a colored table or JSON for feeds and pages that keep erroring

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var failingCmd = &cobra.Command{
	Use:   "failing",
	Short: "List persistently failing feeds and pages",
	Long: `List cache entries whose consecutive fetch failure count has reached
the threshold. These are candidates for removal from the recipe file;
the cache never expires them on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		minCount, _ := cmd.Flags().GetInt("min-count")
		asJSON, _ := cmd.Flags().GetBool("json")

		entries, err := store.ListFailing(cmd.Context(), minCount)
		if err != nil {
			return fmt.Errorf("failed to list failing entries: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Printf("No entries with %d or more consecutive failures\n", minCount)
			return nil
		}

		red := color.New(color.FgRed).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		for _, e := range entries {
			fmt.Printf("%s %s %s\n", red(fmt.Sprintf("%4d", e.FailCount)), e.Key, faint(e.Namespace))
			if e.ErrorReason != "" {
				fmt.Printf("     %s\n", faint(e.ErrorReason))
			}
			fmt.Printf("     %s\n", faint("last attempt "+e.UpdatedAt.Format("02 Jan 06 15:04 MST")))
		}

		fmt.Println()
		fmt.Printf("%d failing entr(ies)\n", len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(failingCmd)
	failingCmd.Flags().Int("min-count", 30, "minimum consecutive failures to report")
	failingCmd.Flags().Bool("json", false, "emit JSON instead of a table")
}
