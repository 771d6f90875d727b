// ABOUTME: Preview command for viewing a generated feed document in the terminal
// ABOUTME: Renders items with markdown formatting, metadata lines, and a limit

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedmill/internal/content"
	"github.com/harper/feedmill/internal/models"
	"github.com/harper/feedmill/internal/output"
)

var previewCmd = &cobra.Command{
	Use:   "preview <recipe>",
	Short: "Preview a generated feed document",
	Long:  "Render the items of a previously generated feed document in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		limit, _ := cmd.Flags().GetInt("limit")

		path := filepath.Join(outputDir, output.Filename(name))
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("no output for recipe %q (run 'feedmill run' first): %w", name, err)
		}

		var doc models.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("%s %s\n", bold(doc.Title), faint(fmt.Sprintf("(%d items)", len(doc.Items))))

		items := doc.Items
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}

		for _, item := range items {
			fmt.Println(strings.Repeat("─", 60))

			title := item.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Printf("%s\n", bold(title))

			if !item.DatePublished.IsZero() {
				fmt.Printf("%s %s\n", faint("Published:"), item.DatePublished.Format("Mon, 02 Jan 2006 15:04 MST"))
			}
			if len(item.Authors) > 0 {
				fmt.Printf("%s %s\n", faint("Author:"), item.Authors[0].Name)
			}
			if item.URL != "" {
				fmt.Printf("%s %s\n", faint("Link:"), cyan(item.URL))
			}

			body := itemBody(item)
			if body == "" {
				fmt.Println("\n(No content available)")
				continue
			}

			rendered, err := glamour.Render(body, "dark")
			if err != nil {
				// Fall back to plain markdown if rendering fails
				fmt.Printf("\n%s\n", body)
				continue
			}
			fmt.Print(rendered)
		}

		return nil
	},
}

// itemBody picks the richest content an item carries, as markdown
func itemBody(item *models.Item) string {
	if item.ContentHTML != "" {
		return content.ToMarkdown(item.ContentHTML)
	}
	if item.ContentText != "" {
		return item.ContentText
	}
	return item.Summary
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntP("limit", "n", 10, "max items to render")
}
