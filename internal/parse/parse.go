// ABOUTME: RSS/Atom feed parsing using gofeed library
// ABOUTME: Converts feed entries into normalized items with date, filter, and content routing

package parse

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/language"

	"github.com/harper/feedmill/internal/content"
	"github.com/harper/feedmill/internal/models"
	"github.com/harper/feedmill/internal/timeutil"
)

// Feed parses RSS or Atom content into normalized items. Entries are dropped
// when they carry no parseable date, were published before cutoff, have no
// link, or are rejected by include. include may be nil to accept everything.
func Feed(data string, cutoff time.Time, include func(title string) bool) ([]*models.Item, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseString(data)
	if err != nil {
		return nil, err
	}

	lang := normalizeLanguage(feed.Language)

	items := make([]*models.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		published, ok := entryTime(entry)
		if !ok {
			continue
		}
		if published.Before(cutoff) {
			continue
		}
		if entry.Link == "" {
			continue
		}
		if include != nil && !include(entry.Title) {
			continue
		}
		items = append(items, itemFromEntry(entry, feed, lang, published))
	}

	return items, nil
}

// Sniff reports whether data parses as a syndication feed, and the feed's
// own title when it does. Used by discovery to verify candidates without
// the filtering Feed applies.
func Sniff(data string) (string, bool) {
	feed, err := gofeed.NewParser().ParseString(data)
	if err != nil {
		return "", false
	}
	return feed.Title, true
}

// entryTime resolves an entry's publication time. A published date wins when
// present, even if unparseable; updated is only a fallback for feeds that
// never set published.
func entryTime(entry *gofeed.Item) (time.Time, bool) {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC(), true
	}
	if entry.Published != "" {
		return timeutil.ParseFeedTime(entry.Published)
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC(), true
	}
	return timeutil.ParseFeedTime(entry.Updated)
}

// itemFromEntry maps one feed entry onto the output item shape.
func itemFromEntry(entry *gofeed.Item, feed *gofeed.Feed, lang string, published time.Time) *models.Item {
	htmlBody, textBody := routeContent(entry)

	return &models.Item{
		ID:            entry.Link,
		URL:           entry.Link,
		Title:         entry.Title,
		ContentHTML:   htmlBody,
		ContentText:   textBody,
		DatePublished: published,
		Authors:       itemAuthors(entry, feed),
		Tags:          entry.Categories,
		Language:      lang,
		Image:         itemImage(entry),
	}
}

// routeContent picks the entry body and sorts it into the HTML or plain-text
// slot. Content beats description; a body that looks like markup goes to
// HTML.
func routeContent(entry *gofeed.Item) (htmlBody, textBody string) {
	body := entry.Content
	if body == "" {
		body = entry.Description
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ""
	}
	if content.IsHTML(body) {
		return body, ""
	}
	return "", body
}

// itemAuthors collects entry authors, falling back to the feed's authors
// when the entry names none.
func itemAuthors(entry *gofeed.Item, feed *gofeed.Feed) []models.Author {
	candidates := entry.Authors
	if len(candidates) == 0 && entry.Author != nil {
		candidates = []*gofeed.Person{entry.Author}
	}
	if len(candidates) == 0 {
		candidates = feed.Authors
	}
	if len(candidates) == 0 && feed.Author != nil {
		candidates = []*gofeed.Person{feed.Author}
	}

	var authors []models.Author
	for _, person := range candidates {
		if person == nil || person.Name == "" {
			continue
		}
		authors = append(authors, models.Author{Name: person.Name})
	}
	return authors
}

// itemImage prefers a media:content image, then the entry's own image.
func itemImage(entry *gofeed.Item) string {
	if media, ok := entry.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if ext.Attrs["medium"] == "image" && ext.Attrs["url"] != "" {
				return ext.Attrs["url"]
			}
		}
	}
	if entry.Image != nil {
		return entry.Image.URL
	}
	return ""
}

// normalizeLanguage reduces a feed language code to its base ("en-US" to
// "en"). Unrecognized codes are dropped rather than passed through.
func normalizeLanguage(raw string) string {
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
