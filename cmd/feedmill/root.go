// ABOUTME: Root Cobra command and global flags
// ABOUTME: Sets up CLI structure, logging, and the cache store

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/feedmill/internal/cache"
)

var (
	recipesPath   string
	cachePath     string
	outputDir     string
	cacheTTL      time.Duration
	maxConcurrent int
	fetchTimeout  time.Duration
	logLevel      string

	store  *cache.Store
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "feedmill",
	Short: "Cache-aware feed aggregator",
	Long: `
███████╗███████╗███████╗██████╗ ███╗   ███╗██╗██╗     ██╗
██╔════╝██╔════╝██╔════╝██╔══██╗████╗ ████║██║██║     ██║
█████╗  █████╗  █████╗  ██║  ██║██╔████╔██║██║██║     ██║
██╔══╝  ██╔══╝  ██╔══╝  ██║  ██║██║╚██╔╝██║██║██║     ██║
██║     ███████╗███████╗██████╔╝██║ ╚═╝ ██║██║███████╗███████╗
╚═╝     ╚══════╝╚══════╝╚═════╝ ╚═╝     ╚═╝╚═╝╚══════╝╚══════╝

Pulls Atom/RSS recipes, caches every fetch in SQLite, optionally
fills thin entries with extracted article content, and writes one
JSON Feed document per recipe.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: level})

		if cachePath == "" {
			cachePath = defaultCachePath()
		}

		store, err = cache.Open(cachePath)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close cache: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&recipesPath, "recipes", "recipes.yaml", "recipe file path")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "cache database path (default: ~/.local/share/feedmill/cache.db)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "outputs", "directory for generated feed documents")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "ttl", 30*time.Minute, "how long cached fetches stay fresh")
	rootCmd.PersistentFlags().IntVar(&maxConcurrent, "max-concurrent", 5, "maximum concurrent HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "timeout", 15*time.Second, "per-request HTTP timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// getDataDir returns the base data directory following XDG conventions
func getDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// defaultCachePath returns the default cache database location
func defaultCachePath() string {
	return filepath.Join(getDataDir(), "feedmill", "cache.db")
}
