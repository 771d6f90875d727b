// ABOUTME: Test suite for RSS/Atom feed parsing functionality
// ABOUTME: Validates item mapping, date cutoffs, filters, and content routing with inline XML

package parse

import (
	"strings"
	"testing"
	"time"
)

const rss20XML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Test RSS Feed</title>
    <link>https://example.com</link>
    <description>A test RSS feed</description>
    <language>en-US</language>
    <item>
      <guid>post-1-guid</guid>
      <title>First Post</title>
      <link>https://example.com/post/1</link>
      <pubDate>Sat, 01 Jun 2024 10:00:00 GMT</pubDate>
      <description>First post description</description>
      <category>tech</category>
      <category>golang</category>
      <media:content url="https://example.com/thumb.jpg" medium="image"/>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/post/2</link>
      <pubDate>Sat, 01 Jun 2024 11:00:00 GMT</pubDate>
      <description>&lt;p&gt;Second post with markup&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`

const atomXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <author><name>Feed Author</name></author>
  <updated>2024-06-01T15:04:05Z</updated>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.com/atom/1"/>
    <id>atom-entry-1</id>
    <author><name>Entry Author</name></author>
    <published>2024-06-01T12:00:00Z</published>
    <updated>2024-06-01T13:00:00Z</updated>
    <content type="html">&lt;p&gt;Full HTML body&lt;/p&gt;</content>
  </entry>
  <entry>
    <title>Updated Only</title>
    <link href="https://example.com/atom/2"/>
    <id>atom-entry-2</id>
    <updated>2024-06-01T09:00:00Z</updated>
    <content type="text">plain body</content>
  </entry>
</feed>`

var testCutoff = time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)

func TestFeed_RSS(t *testing.T) {
	items, err := Feed(rss20XML, testCutoff, nil)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "https://example.com/post/1" {
		t.Errorf("ID: got %q, want link", first.ID)
	}
	if first.URL != "https://example.com/post/1" {
		t.Errorf("URL: got %q", first.URL)
	}
	if first.Title != "First Post" {
		t.Errorf("Title: got %q", first.Title)
	}
	if first.ContentText != "First post description" {
		t.Errorf("ContentText: got %q", first.ContentText)
	}
	if first.ContentHTML != "" {
		t.Errorf("plain description should not land in ContentHTML: %q", first.ContentHTML)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "tech" || first.Tags[1] != "golang" {
		t.Errorf("Tags: got %v", first.Tags)
	}
	if first.Language != "en" {
		t.Errorf("Language: got %q, want base code", first.Language)
	}
	if first.Image != "https://example.com/thumb.jpg" {
		t.Errorf("Image: got %q", first.Image)
	}
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	if !first.DatePublished.Equal(want) {
		t.Errorf("DatePublished: got %v, want %v", first.DatePublished, want)
	}

	second := items[1]
	if second.ContentHTML == "" || !strings.Contains(second.ContentHTML, "<p>") {
		t.Errorf("markup description should land in ContentHTML: %q", second.ContentHTML)
	}
	if second.ContentText != "" {
		t.Errorf("ContentText should be empty for HTML body: %q", second.ContentText)
	}
}

func TestFeed_Atom(t *testing.T) {
	items, err := Feed(atomXML, testCutoff, nil)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	entry := items[0]
	if entry.ContentHTML != "<p>Full HTML body</p>" {
		t.Errorf("ContentHTML: got %q", entry.ContentHTML)
	}
	if len(entry.Authors) == 0 || entry.Authors[0].Name != "Entry Author" {
		t.Errorf("Authors: got %v, want entry author", entry.Authors)
	}
	// Published wins over updated.
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !entry.DatePublished.Equal(want) {
		t.Errorf("DatePublished: got %v, want published time", entry.DatePublished)
	}

	// Second entry has no published element; updated is the fallback.
	updatedOnly := items[1]
	wantUpdated := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	if !updatedOnly.DatePublished.Equal(wantUpdated) {
		t.Errorf("DatePublished: got %v, want updated time", updatedOnly.DatePublished)
	}
	if updatedOnly.ContentText != "plain body" {
		t.Errorf("ContentText: got %q", updatedOnly.ContentText)
	}
	// No entry author: feed author applies.
	if len(updatedOnly.Authors) == 0 || updatedOnly.Authors[0].Name != "Feed Author" {
		t.Errorf("Authors: got %v, want feed author fallback", updatedOnly.Authors)
	}
}

func TestFeed_CutoffDropsOldEntries(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
  <item>
    <title>Recent</title>
    <link>https://example.com/recent</link>
    <pubDate>Sat, 01 Jun 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Ancient</title>
    <link>https://example.com/ancient</link>
    <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
  </item>
</channel></rss>`

	items, err := Feed(xml, testCutoff, nil)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Recent" {
		t.Errorf("wrong survivor: %q", items[0].Title)
	}
}

func TestFeed_DropsUndatedEntries(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
  <item>
    <title>No Date</title>
    <link>https://example.com/undated</link>
  </item>
</channel></rss>`

	items, err := Feed(xml, testCutoff, nil)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected undated entry to be dropped, got %d items", len(items))
	}
}

func TestFeed_DropsUnparseableDates(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
  <item>
    <title>Bad Date</title>
    <link>https://example.com/bad</link>
    <pubDate>sometime last week</pubDate>
  </item>
</channel></rss>`

	items, err := Feed(xml, testCutoff, nil)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected unparseable date to drop entry, got %d items", len(items))
	}
}

func TestFeed_DropsLinklessEntries(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
  <item>
    <title>No Link</title>
    <pubDate>Sat, 01 Jun 2024 10:00:00 GMT</pubDate>
  </item>
</channel></rss>`

	items, err := Feed(xml, testCutoff, nil)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected linkless entry to be dropped, got %d items", len(items))
	}
}

func TestFeed_AppliesFilter(t *testing.T) {
	include := func(title string) bool {
		return !strings.Contains(strings.ToLower(title), "second")
	}

	items, err := Feed(rss20XML, testCutoff, include)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after filter, got %d", len(items))
	}
	if items[0].Title != "First Post" {
		t.Errorf("wrong survivor: %q", items[0].Title)
	}
}

func TestFeed_InvalidInput(t *testing.T) {
	if _, err := Feed("not a feed at all", testCutoff, nil); err == nil {
		t.Error("expected error for non-feed input")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en-US", "en"},
		{"en", "en"},
		{"zh-CN", "zh"},
		{"", ""},
		{"not a language code", ""},
	}
	for _, tt := range tests {
		if got := normalizeLanguage(tt.in); got != tt.want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
