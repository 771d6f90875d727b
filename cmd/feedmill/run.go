// ABOUTME: Run command executing the full acquisition pipeline for recipes
// ABOUTME: Sweeps the cache, acquires and fulfills each recipe, writes JSON Feed documents

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedmill/internal/fetch"
	"github.com/harper/feedmill/internal/models"
	"github.com/harper/feedmill/internal/output"
	"github.com/harper/feedmill/internal/pipeline"
	"github.com/harper/feedmill/internal/recipe"
	"github.com/harper/feedmill/internal/timeutil"
)

var runCmd = &cobra.Command{
	Use:   "run [recipe...]",
	Short: "Fetch recipes and write their feed documents",
	Long: `Fetch every configured recipe (or just the named ones), reusing cached
feed payloads that are still fresh, and write one JSON Feed document per
recipe into the output directory.

Source failures are recorded in the cache and skipped; they never abort
the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("base-url")
		retention, _ := cmd.Flags().GetDuration("retention")

		set, err := recipe.Load(recipesPath)
		if err != nil {
			return err
		}

		names := set.Names()
		if len(args) > 0 {
			for _, name := range args {
				if _, ok := set.Get(name); !ok {
					return fmt.Errorf("unknown recipe: %s", name)
				}
			}
			names = args
		}

		ctx := cmd.Context()

		// Sweep stale rows and feeds no recipe references anymore
		deleted, err := store.Cleanup(ctx, retention, set.AllURLs())
		if err != nil {
			logger.Warn("cache cleanup failed", "err", err)
		} else if deleted > 0 {
			logger.Debug("cache cleanup", "deleted", deleted)
		}

		fetcher := fetch.New(fetch.Options{
			MaxConcurrent: maxConcurrent,
			Timeout:       fetchTimeout,
			UserAgent:     "feedmill/" + Version,
		})
		defer fetcher.Close()

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		bold := color.New(color.Bold).SprintFunc()

		fetcher.OnProgress = func(done, total int, url string) {
			fmt.Printf("%s\n", faint(fmt.Sprintf("  (%d/%d) %s", done, total, url)))
		}

		pipe := pipeline.New(store, fetcher, logger)
		cutoff := timeutil.DefaultCutoff(time.Now())

		totalItems := 0
		totalSkipped := 0

		for _, name := range names {
			rec, _ := set.Get(name)
			fmt.Printf("%s\n", bold(name))

			items, outcomes := pipe.Acquire(ctx, rec, cacheTTL, cutoff)
			for _, o := range outcomes {
				switch {
				case o.Skipped != "":
					fmt.Printf("  %s %s %s\n", red("x"), o.URL, o.Skipped)
					totalSkipped++
				case o.FromCache:
					fmt.Printf("  %s %s %d item(s) %s\n", green("v"), o.URL, o.Items, faint("(cached)"))
				default:
					fmt.Printf("  %s %s %d item(s)\n", green("v"), o.URL, o.Items)
				}
			}

			if rec.Fulfill {
				fulfilled := pipe.Fulfill(ctx, rec, items, cacheTTL)
				if len(fulfilled) > 0 {
					merged, cachedHits, failed := summarizeFulfillment(fulfilled)
					line := fmt.Sprintf("%d page(s) merged, %d from cache", merged, cachedHits)
					if failed > 0 {
						line += ", " + red(fmt.Sprintf("%d failed", failed))
					}
					fmt.Printf("  fulfill: %s\n", line)
					totalSkipped += failed
				}
			}

			doc := models.BuildDocument(name, items, baseURL)
			path, err := output.Write(outputDir, name, doc)
			if err != nil {
				return fmt.Errorf("failed to write output for %q: %w", name, err)
			}
			fmt.Printf("  wrote %s %s\n", path, faint(fmt.Sprintf("(%d items)", len(items))))
			totalItems += len(items)
		}

		fmt.Println()
		fmt.Printf("Summary: %d recipe(s), %d item(s)\n", len(names), totalItems)
		if totalSkipped > 0 {
			fmt.Printf("  %s %d fetch(es) skipped\n", red("x"), totalSkipped)
		}

		return nil
	},
}

// summarizeFulfillment tallies fulfillment outcomes for the per-recipe summary line
func summarizeFulfillment(outcomes []pipeline.ItemOutcome) (merged, cached, failed int) {
	for _, o := range outcomes {
		switch {
		case o.Skipped != "":
			failed++
		case o.Merged:
			merged++
			if o.FromCache {
				cached++
			}
		}
	}
	return merged, cached, failed
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("base-url", "", "public base URL used for the documents' self links")
	runCmd.Flags().Duration("retention", timeutil.CutoffWindow, "drop cache entries older than this before fetching")
}
