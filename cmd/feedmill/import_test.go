// ABOUTME: Tests for import command helper functions
// ABOUTME: Verifies OPML to recipe conversion and folder grouping

package main

import (
	"testing"

	"github.com/harper/feedmill/internal/opml"
)

func importDoc() *opml.Document {
	return &opml.Document{
		Title: "Reader Export",
		Outlines: []opml.Outline{
			{
				Text: "Tech",
				Children: []opml.Outline{
					{Text: "Hacker News", Type: "rss", XMLURL: "https://hnrss.org/frontpage"},
					{Text: "Lobsters", Type: "rss", XMLURL: "https://lobste.rs/rss"},
				},
			},
			{Text: "Root Feed", Type: "rss", XMLURL: "https://example.com/feed"},
			{Text: "Duplicate", Type: "rss", XMLURL: "https://example.com/feed"},
			{Text: "Local", Type: "rss", XMLURL: "file:///etc/passwd"},
		},
	}
}

func TestRecipesFromOPML_SingleRecipe(t *testing.T) {
	recipes := recipesFromOPML(importDoc(), "Imported", false)

	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}

	rec, ok := recipes["Imported"]
	if !ok {
		t.Fatal("expected recipe named 'Imported'")
	}

	// Duplicate and non-http URLs are dropped
	if len(rec.URLs) != 3 {
		t.Fatalf("expected 3 urls, got %d: %v", len(rec.URLs), rec.URLs)
	}
	for _, u := range rec.URLs {
		if u == "file:///etc/passwd" {
			t.Error("expected non-http URL to be dropped")
		}
	}
}

func TestRecipesFromOPML_ByFolder(t *testing.T) {
	recipes := recipesFromOPML(importDoc(), "Imported", true)

	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}

	tech, ok := recipes["Tech"]
	if !ok {
		t.Fatal("expected recipe named 'Tech'")
	}
	if len(tech.URLs) != 2 {
		t.Errorf("expected 2 urls in 'Tech', got %d", len(tech.URLs))
	}

	// Feeds without a folder land in the default recipe
	root, ok := recipes["Imported"]
	if !ok {
		t.Fatal("expected recipe named 'Imported' for root feeds")
	}
	if len(root.URLs) != 1 || root.URLs[0] != "https://example.com/feed" {
		t.Errorf("unexpected root recipe urls: %v", root.URLs)
	}
}

func TestRecipesFromOPML_Empty(t *testing.T) {
	doc := &opml.Document{Title: "Empty"}
	recipes := recipesFromOPML(doc, "Imported", false)
	if len(recipes) != 0 {
		t.Errorf("expected no recipes, got %d", len(recipes))
	}
}
