// ABOUTME: Tests for JSON Feed document assembly
// ABOUTME: Covers item ordering, stable ties, and feed URL construction

package models

import (
	"testing"
	"time"
)

func TestBuildDocument_SortsNewestFirst(t *testing.T) {
	old := &Item{ID: "old", Title: "Old", DatePublished: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	mid := &Item{ID: "mid", Title: "Mid", DatePublished: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)}
	new_ := &Item{ID: "new", Title: "New", DatePublished: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	doc := BuildDocument("Test", []*Item{old, new_, mid}, "https://feeds.example.com")

	got := []string{doc.Items[0].ID, doc.Items[1].ID, doc.Items[2].ID}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}
}

func TestBuildDocument_StableOnTies(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := &Item{ID: "a", DatePublished: at}
	b := &Item{ID: "b", DatePublished: at}
	c := &Item{ID: "c", DatePublished: at}

	doc := BuildDocument("Test", []*Item{a, b, c}, "https://feeds.example.com")

	if doc.Items[0].ID != "a" || doc.Items[1].ID != "b" || doc.Items[2].ID != "c" {
		t.Errorf("ties must keep acquisition order, got %s %s %s",
			doc.Items[0].ID, doc.Items[1].ID, doc.Items[2].ID)
	}
}

func TestBuildDocument_DoesNotMutateInput(t *testing.T) {
	old := &Item{ID: "old", DatePublished: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	new_ := &Item{ID: "new", DatePublished: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	input := []*Item{old, new_}

	BuildDocument("Test", input, "https://feeds.example.com")

	if input[0].ID != "old" || input[1].ID != "new" {
		t.Error("input slice order must not change")
	}
}

func TestBuildDocument_Metadata(t *testing.T) {
	doc := BuildDocument("Rust News", nil, "https://feeds.example.com")

	if doc.Version != Version {
		t.Errorf("version: got %q", doc.Version)
	}
	if doc.Title != "Rust News" {
		t.Errorf("title: got %q", doc.Title)
	}
	if doc.Description != "Aggregated feed for Rust News" {
		t.Errorf("description: got %q", doc.Description)
	}
	if doc.FeedURL != "https://feeds.example.com/Rust%20News.json" {
		t.Errorf("feed URL: got %q", doc.FeedURL)
	}
	if doc.Language != "en" {
		t.Errorf("language: got %q", doc.Language)
	}
}
