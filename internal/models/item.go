// ABOUTME: Item model representing a single aggregated feed entry
// ABOUTME: Serializes to a JSON Feed 1.1 item with omitempty optional fields

package models

import "time"

// Author identifies who wrote an item (or a whole feed).
type Author struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Item is a single entry collected from a source feed, normalized to the
// JSON Feed 1.1 item shape. ContentHTML and ContentText are both optional;
// fulfillment may replace them in place when it finds richer content.
type Item struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	ContentHTML   string    `json:"content_html,omitempty"`
	ContentText   string    `json:"content_text,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Image         string    `json:"image,omitempty"`
	BannerImage   string    `json:"banner_image,omitempty"`
	ExternalURL   string    `json:"external_url,omitempty"`
	DatePublished time.Time `json:"date_published"`
	Authors       []Author  `json:"authors,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Language      string    `json:"language,omitempty"`
}
