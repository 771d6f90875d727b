// ABOUTME: Orchestrates cache, fetcher, and extractor into the feed acquisition flow
// ABOUTME: Handles cached/fresh merging, content fulfillment, and per-URL failure isolation

package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/feedmill/internal/cache"
	"github.com/harper/feedmill/internal/extract"
	"github.com/harper/feedmill/internal/fetch"
	"github.com/harper/feedmill/internal/models"
	"github.com/harper/feedmill/internal/parse"
	"github.com/harper/feedmill/internal/recipe"
)

// Content size thresholds for the fulfillment pass. HTML gets a higher bar
// because markup inflates length without adding substance.
const (
	substantialHTMLBytes = 300
	substantialTextBytes = 200
)

// shortTitleLimit is the length under which a title is considered truncated
// and eligible for replacement by an extracted one.
const shortTitleLimit = 20

// SourceOutcome reports what happened to one feed URL during acquisition.
// Skipped is empty when the feed contributed items normally.
type SourceOutcome struct {
	URL       string
	Items     int
	FromCache bool
	Skipped   string
}

// ItemOutcome reports what fulfillment did for one item URL.
type ItemOutcome struct {
	URL       string
	FromCache bool
	Merged    bool
	Skipped   string
}

// Pipeline wires the cache store and fetcher together. Per-URL failures are
// isolated: they surface as outcomes and log lines, never as errors that
// abort a run.
type Pipeline struct {
	store   *cache.Store
	fetcher *fetch.Fetcher
	log     *log.Logger
}

// New creates a Pipeline over the given store and fetcher.
func New(store *cache.Store, fetcher *fetch.Fetcher, logger *log.Logger) *Pipeline {
	return &Pipeline{store: store, fetcher: fetcher, log: logger}
}

// Acquire turns a recipe's feed URLs into parsed items. Valid cached feeds
// are parsed directly; the rest are fetched concurrently, recorded in the
// cache before any parsing, and parsed on success. Entries older than cutoff
// are dropped. Item order is cached feeds first (recipe URL order), then
// fetched feeds in completion order.
func (p *Pipeline) Acquire(ctx context.Context, rec *recipe.Recipe, ttl time.Duration, cutoff time.Time) ([]*models.Item, []SourceOutcome) {
	outcomes := make([]SourceOutcome, 0, len(rec.URLs))
	var items []*models.Item

	cached, err := p.store.BatchGet(ctx, cache.NamespaceFeeds, rec.URLs, ttl)
	if err != nil {
		p.log.Error("cache lookup failed, fetching all feeds", "recipe", rec.Name, "err", err)
		cached = nil
	}

	var toFetch []string
	for _, u := range rec.URLs {
		body := cached[u]
		if body == nil {
			toFetch = append(toFetch, u)
			continue
		}
		parsed, perr := parse.Feed(*body, cutoff, rec.Include)
		if perr != nil {
			p.log.Warn("cached feed failed to parse", "recipe", rec.Name, "url", u, "err", perr)
			outcomes = append(outcomes, SourceOutcome{URL: u, FromCache: true, Skipped: "parse: " + perr.Error()})
			continue
		}
		items = append(items, parsed...)
		outcomes = append(outcomes, SourceOutcome{URL: u, Items: len(parsed), FromCache: true})
	}

	if len(toFetch) == 0 {
		p.log.Info("all feeds cached", "recipe", rec.Name, "feeds", len(rec.URLs))
		return items, outcomes
	}
	p.log.Info("fetching uncached feeds", "recipe", rec.Name, "fetching", len(toFetch), "total", len(rec.URLs))

	for _, res := range p.fetcher.FetchMany(ctx, toFetch) {
		// Record the fetch outcome before parsing; a parse failure must
		// never lose a completed fetch.
		if serr := p.store.Set(ctx, cache.NamespaceFeeds, res.URL, res.Content, res.OK(), res.Err); serr != nil {
			p.log.Error("cache write failed", "url", res.URL, "err", serr)
		}
		if !res.OK() {
			p.log.Warn("feed fetch failed", "recipe", rec.Name, "url", res.URL, "reason", res.Err)
			outcomes = append(outcomes, SourceOutcome{URL: res.URL, Skipped: res.Err})
			continue
		}
		parsed, perr := parse.Feed(*res.Content, cutoff, rec.Include)
		if perr != nil {
			p.log.Warn("fetched feed failed to parse", "recipe", rec.Name, "url", res.URL, "err", perr)
			outcomes = append(outcomes, SourceOutcome{URL: res.URL, Skipped: "parse: " + perr.Error()})
			continue
		}
		items = append(items, parsed...)
		outcomes = append(outcomes, SourceOutcome{URL: res.URL, Items: len(parsed)})
	}

	return items, outcomes
}

// Fulfill upgrades thin items with extracted article content. Items already
// carrying substantial content pass through untouched. The rest are resolved
// through the item cache, then fetched, extracted, cached, and merged. Items
// mutate in place; outcomes are per page URL.
func (p *Pipeline) Fulfill(ctx context.Context, rec *recipe.Recipe, items []*models.Item, ttl time.Duration) []ItemOutcome {
	if len(items) == 0 {
		return nil
	}

	// Group thin items by URL; several entries can point at the same page.
	needingByURL := make(map[string][]*models.Item)
	var urls []string
	for _, item := range items {
		if hasSubstantialContent(item) {
			continue
		}
		if item.URL == "" {
			p.log.Debug("item has no URL, cannot fulfill", "recipe", rec.Name, "title", item.Title)
			continue
		}
		if _, ok := needingByURL[item.URL]; !ok {
			urls = append(urls, item.URL)
		}
		needingByURL[item.URL] = append(needingByURL[item.URL], item)
	}
	if len(urls) == 0 {
		p.log.Info("all items have substantial content", "recipe", rec.Name, "items", len(items))
		return nil
	}
	p.log.Info("fulfilling item content", "recipe", rec.Name, "thin", len(urls), "items", len(items))

	cached, err := p.store.BatchGet(ctx, cache.NamespaceItems, urls, ttl)
	if err != nil {
		p.log.Error("item cache lookup failed, fetching all", "recipe", rec.Name, "err", err)
		cached = nil
	}

	var outcomes []ItemOutcome
	var toFetch []string
	for _, u := range urls {
		body := cached[u]
		if body == nil {
			toFetch = append(toFetch, u)
			continue
		}
		var res extract.Result
		if uerr := json.Unmarshal([]byte(*body), &res); uerr != nil || isEmptyExtraction(res) {
			// Undecodable or empty cached extractions count as misses.
			toFetch = append(toFetch, u)
			continue
		}
		for _, item := range needingByURL[u] {
			mergeContent(item, res)
		}
		outcomes = append(outcomes, ItemOutcome{URL: u, FromCache: true, Merged: true})
	}

	if len(toFetch) == 0 {
		return outcomes
	}
	p.log.Info("fetching item content", "recipe", rec.Name, "urls", len(toFetch))

	for _, res := range p.fetcher.FetchMany(ctx, toFetch) {
		if !res.OK() {
			if serr := p.store.Set(ctx, cache.NamespaceItems, res.URL, nil, false, res.Err); serr != nil {
				p.log.Error("cache write failed", "url", res.URL, "err", serr)
			}
			p.log.Warn("item fetch failed", "recipe", rec.Name, "url", res.URL, "reason", res.Err)
			outcomes = append(outcomes, ItemOutcome{URL: res.URL, Skipped: res.Err})
			continue
		}

		extracted := extract.Extract(*res.Content)
		if serialized, merr := json.Marshal(extracted); merr == nil {
			s := string(serialized)
			if serr := p.store.Set(ctx, cache.NamespaceItems, res.URL, &s, true, ""); serr != nil {
				p.log.Error("cache write failed", "url", res.URL, "err", serr)
			}
		}

		if isEmptyExtraction(extracted) {
			p.log.Warn("no content extracted", "recipe", rec.Name, "url", res.URL)
			outcomes = append(outcomes, ItemOutcome{URL: res.URL, Skipped: "extract: no content found"})
			continue
		}
		for _, item := range needingByURL[res.URL] {
			mergeContent(item, extracted)
		}
		outcomes = append(outcomes, ItemOutcome{URL: res.URL, Merged: true})
	}

	return outcomes
}

// hasSubstantialContent reports whether an item already carries enough
// content to skip fulfillment.
func hasSubstantialContent(item *models.Item) bool {
	return len(item.ContentHTML) > substantialHTMLBytes || len(item.ContentText) > substantialTextBytes
}

func isEmptyExtraction(res extract.Result) bool {
	return res.ContentHTML == "" && res.ContentText == ""
}

// mergeContent folds extracted content into an item. Content fields are
// overwritten only by non-empty candidates. The title is replaced only when
// the existing one looks truncated and the candidate is strictly longer.
func mergeContent(item *models.Item, res extract.Result) {
	if res.ContentHTML != "" {
		item.ContentHTML = res.ContentHTML
	}
	if res.ContentText != "" {
		item.ContentText = res.ContentText
	}
	if res.Title != "" && len(item.Title) < shortTitleLimit && len(res.Title) > len(item.Title) {
		item.Title = res.Title
	}
}
