// ABOUTME: Tests for CLI commands
// ABOUTME: Tests command structure, flags, and subcommands

package main

import (
	"testing"
)

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "feedmill" {
		t.Errorf("expected Use to be 'feedmill', got %q", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("expected root command to have a short description")
	}
}

func TestRootPersistentFlags(t *testing.T) {
	expectedFlags := []string{
		"recipes",
		"cache",
		"output",
		"ttl",
		"max-concurrent",
		"timeout",
		"log-level",
	}

	for _, name := range expectedFlags {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestRunCommand(t *testing.T) {
	if runCmd.Use != "run [recipe...]" {
		t.Errorf("expected Use to be 'run [recipe...]', got %q", runCmd.Use)
	}

	// Check flags exist
	if runCmd.Flags().Lookup("base-url") == nil {
		t.Error("expected --base-url flag to exist")
	}
	if runCmd.Flags().Lookup("retention") == nil {
		t.Error("expected --retention flag to exist")
	}
}

func TestCleanupCommand(t *testing.T) {
	if cleanupCmd.Use != "cleanup" {
		t.Errorf("expected Use to be 'cleanup', got %q", cleanupCmd.Use)
	}

	if cleanupCmd.Flags().Lookup("retention") == nil {
		t.Error("expected --retention flag to exist")
	}
	if cleanupCmd.Flags().Lookup("orphans") == nil {
		t.Error("expected --orphans flag to exist")
	}
}

func TestFailingCommand(t *testing.T) {
	if failingCmd.Use != "failing" {
		t.Errorf("expected Use to be 'failing', got %q", failingCmd.Use)
	}

	if failingCmd.Flags().Lookup("min-count") == nil {
		t.Error("expected --min-count flag to exist")
	}
	if failingCmd.Flags().Lookup("json") == nil {
		t.Error("expected --json flag to exist")
	}
}

func TestPreviewCommand(t *testing.T) {
	if previewCmd.Use != "preview <recipe>" {
		t.Errorf("expected Use to be 'preview <recipe>', got %q", previewCmd.Use)
	}

	if previewCmd.Flags().Lookup("limit") == nil {
		t.Error("expected --limit flag to exist")
	}
}

func TestDiscoverCommand(t *testing.T) {
	if discoverCmd.Use != "discover <url>" {
		t.Errorf("expected Use to be 'discover <url>', got %q", discoverCmd.Use)
	}
}

func TestImportCommand(t *testing.T) {
	if importCmd.Use != "import <opml-file>" {
		t.Errorf("expected Use to be 'import <opml-file>', got %q", importCmd.Use)
	}

	if importCmd.Flags().Lookup("name") == nil {
		t.Error("expected --name flag to exist")
	}
	if importCmd.Flags().Lookup("by-folder") == nil {
		t.Error("expected --by-folder flag to exist")
	}
	if importCmd.Flags().Lookup("write") == nil {
		t.Error("expected --write flag to exist")
	}
}

func TestCommandRegistration(t *testing.T) {
	// Check that subcommands are registered
	commands := rootCmd.Commands()

	commandNames := make(map[string]bool)
	for _, cmd := range commands {
		commandNames[cmd.Name()] = true
	}

	expectedCommands := []string{
		"run",
		"cleanup",
		"failing",
		"preview",
		"import",
		"discover",
		"version",
	}

	for _, expected := range expectedCommands {
		if !commandNames[expected] {
			t.Errorf("expected command %q to be registered", expected)
		}
	}
}
