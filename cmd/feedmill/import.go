// ABOUTME: Import command converting OPML subscription lists into recipes
// ABOUTME: Prints recipe YAML to stdout or merges it into the recipe file

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/feedmill/internal/opml"
	"github.com/harper/feedmill/internal/recipe"
)

var importCmd = &cobra.Command{
	Use:   "import <opml-file>",
	Short: "Convert an OPML subscription list into recipes",
	Long: `Convert the feeds of an OPML file into recipe YAML so existing reader
subscriptions can seed a recipe file.

By default the YAML is printed to stdout. With --write it is merged into
the recipe file instead; existing recipes are kept, and a name collision
is an error. With --by-folder each OPML folder becomes its own recipe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		byFolder, _ := cmd.Flags().GetBool("by-folder")
		write, _ := cmd.Flags().GetBool("write")

		doc, err := opml.ParseFile(args[0])
		if err != nil {
			return err
		}

		if name == "" {
			name = doc.Title
		}
		if name == "" {
			name = "Imported"
		}

		recipes := recipesFromOPML(doc, name, byFolder)
		if len(recipes) == 0 {
			return fmt.Errorf("no feeds found in %s", args[0])
		}

		set := &recipe.Set{Recipes: recipes}

		if !write {
			data, err := set.Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}

		if existing, err := recipe.Load(recipesPath); err == nil {
			for rname, rec := range recipes {
				if _, ok := existing.Get(rname); ok {
					return fmt.Errorf("recipe %q already exists in %s", rname, recipesPath)
				}
				existing.Recipes[rname] = rec
			}
			set = existing
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}

		data, err := set.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(recipesPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", recipesPath, err)
		}

		fmt.Printf("Added %d recipe(s) to %s\n", len(recipes), recipesPath)
		return nil
	},
}

// recipesFromOPML groups subscriptions into recipes, one per folder or all
// under a single name. Only absolute http(s) URLs survive the conversion;
// anything else would fail recipe validation on the next load.
func recipesFromOPML(doc *opml.Document, defaultName string, byFolder bool) map[string]*recipe.Recipe {
	recipes := make(map[string]*recipe.Recipe)

	add := func(rname, feedURL string) {
		if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
			return
		}
		rec, ok := recipes[rname]
		if !ok {
			rec = &recipe.Recipe{Name: rname}
			recipes[rname] = rec
		}
		for _, existing := range rec.URLs {
			if existing == feedURL {
				return
			}
		}
		rec.URLs = append(rec.URLs, feedURL)
	}

	for _, feed := range doc.AllFeeds() {
		rname := defaultName
		if byFolder && feed.Folder != "" {
			rname = feed.Folder
		}
		add(rname, feed.URL)
	}

	return recipes
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("name", "", "recipe name for imported feeds (default: OPML title)")
	importCmd.Flags().Bool("by-folder", false, "create one recipe per OPML folder")
	importCmd.Flags().Bool("write", false, "merge into the recipe file instead of printing")
}
