// ABOUTME: Output document model in JSON Feed 1.1 format
// ABOUTME: Builds one document per recipe with items sorted newest-first

package models

import (
	"net/url"
	"sort"
)

// Version is the JSON Feed version every output document declares.
const Version = "https://jsonfeed.org/version/1.1"

// Document is the JSON Feed 1.1 output produced for one recipe.
type Document struct {
	Version     string   `json:"version"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	HomePageURL string   `json:"home_page_url,omitempty"`
	FeedURL     string   `json:"feed_url,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
	Authors     []Author `json:"authors,omitempty"`
	Language    string   `json:"language,omitempty"`
	UserComment string   `json:"user_comment,omitempty"`
	Items       []*Item  `json:"items"`
}

// BuildDocument assembles the output document for a recipe. Items are sorted
// by publish date, newest first; the sort is stable so items sharing a
// timestamp keep their acquisition order. baseURL, when set, is used to
// derive the document's self and home links.
func BuildDocument(name string, items []*Item, baseURL string) *Document {
	sorted := make([]*Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DatePublished.After(sorted[j].DatePublished)
	})

	doc := &Document{
		Version:     Version,
		Title:       name,
		Description: "Aggregated feed for " + name,
		Language:    "en",
		UserComment: "Generated by feedmill",
		Items:       sorted,
	}
	if baseURL != "" {
		doc.HomePageURL = baseURL
		doc.FeedURL = baseURL + "/" + url.PathEscape(name) + ".json"
	}
	return doc
}
