// ABOUTME: Discover command for locating feeds on a site
// ABOUTME: Prints a ready-to-paste recipe stanza for the discovered feed

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedmill/internal/discover"
	"github.com/harper/feedmill/internal/fetch"
	"github.com/harper/feedmill/internal/recipe"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <url>",
	Short: "Find the feed behind a page URL",
	Long: `Locate the Atom/RSS feed for a site. The URL is tried as a feed
directly, then its HTML is scanned for alternate links, and finally
well-known feed paths are probed.

Prints a recipe stanza ready to paste into the recipe file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := fetch.New(fetch.Options{
			MaxConcurrent: maxConcurrent,
			Timeout:       fetchTimeout,
			UserAgent:     "feedmill/" + Version,
		})
		defer fetcher.Close()

		feed, err := discover.Discover(cmd.Context(), fetcher, args[0])
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		name := feed.Title
		if name == "" {
			name = "Discovered"
		}

		fmt.Printf("%s %s\n\n", green("Found feed:"), feed.URL)

		set := &recipe.Set{Recipes: map[string]*recipe.Recipe{
			name: {Name: name, URLs: []string{feed.URL}},
		}}
		stanza, err := set.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(stanza))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
