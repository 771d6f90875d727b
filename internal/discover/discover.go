// ABOUTME: Feed discovery for finding RSS/Atom feeds from page URLs
// ABOUTME: Tries the URL directly, then HTML alternate links, then common path probing

package discover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harper/feedmill/internal/fetch"
	"github.com/harper/feedmill/internal/parse"
)

// Common feed paths to probe when other discovery methods fail
var commonFeedPaths = []string{
	"/feed.xml",
	"/feed",
	"/rss.xml",
	"/rss",
	"/atom.xml",
	"/atom",
	"/index.xml",
	"/feed/rss",
	"/feed/atom",
	"/feeds/posts/default",
}

// Errors returned by discovery
var (
	ErrNoFeedFound = errors.New("no RSS/Atom feed found at URL")
	ErrInvalidURL  = errors.New("invalid URL")
)

// Feed is a feed located during discovery.
type Feed struct {
	URL   string
	Title string
}

// Discover locates an Atom/RSS feed starting from inputURL. The URL is
// tried as a feed directly, then as an HTML page carrying alternate feed
// links, and finally well-known feed paths on the same host are probed.
// Every candidate is fetched and verified before it is returned.
func Discover(ctx context.Context, fetcher *fetch.Fetcher, inputURL string) (*Feed, error) {
	parsedURL, err := url.Parse(inputURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	res := fetcher.FetchOne(ctx, inputURL)
	if !res.OK() {
		return nil, fmt.Errorf("failed to fetch %s: %s", inputURL, res.Err)
	}

	if title, ok := parse.Sniff(*res.Content); ok {
		return &Feed{URL: inputURL, Title: title}, nil
	}

	for _, candidate := range feedLinks(*res.Content, parsedURL) {
		probe := fetcher.FetchOne(ctx, candidate.URL)
		if !probe.OK() {
			continue
		}
		title, ok := parse.Sniff(*probe.Content)
		if !ok {
			continue
		}
		// The page's link title fills in for feeds that omit their own
		if title == "" {
			title = candidate.Title
		}
		return &Feed{URL: candidate.URL, Title: title}, nil
	}

	if feed := probeCommonPaths(ctx, fetcher, parsedURL); feed != nil {
		return feed, nil
	}

	return nil, ErrNoFeedFound
}

// feedLinks extracts alternate feed links from an HTML page, resolved
// against the page URL.
func feedLinks(htmlBody string, base *url.URL) []Feed {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}

	var feeds []Feed
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, s *goquery.Selection) {
		linkType, _ := s.Attr("type")
		href, _ := s.Attr("href")
		if href == "" || !isFeedContentType(linkType) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		title, _ := s.Attr("title")
		feeds = append(feeds, Feed{
			URL:   base.ResolveReference(ref).String(),
			Title: title,
		})
	})

	return feeds
}

// probeCommonPaths tries well-known feed locations on the host root.
func probeCommonPaths(ctx context.Context, fetcher *fetch.Fetcher, base *url.URL) *Feed {
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	for _, path := range commonFeedPaths {
		probeURL := root.String() + path
		res := fetcher.FetchOne(ctx, probeURL)
		if !res.OK() {
			continue
		}
		if title, ok := parse.Sniff(*res.Content); ok {
			return &Feed{URL: probeURL, Title: title}
		}
	}

	return nil
}

// isFeedContentType checks if the content type indicates a feed
func isFeedContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml")
}
