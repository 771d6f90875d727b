// ABOUTME: Bounded-concurrency HTTP fetcher with per-request timeouts and redirect limits.
// ABOUTME: Always returns per-URL results; transport failures become short error strings with SSRF and DoS protection.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// Defaults applied by New for zero-valued options.
const (
	DefaultMaxConcurrent = 5
	DefaultTimeout       = 15 * time.Second
	DefaultMaxRedirects  = 3
	DefaultUserAgent     = "feedmill/1.0 (feed aggregator)"
)

// ErrTooManyRedirects aborts a request once the redirect ceiling is hit.
var ErrTooManyRedirects = errors.New("too many redirects")

// ErrPrivateAddress aborts a request whose target resolves into a private or
// link-local range, including redirect hops.
var ErrPrivateAddress = errors.New("access to private address ranges blocked")

// Result is the outcome of fetching one URL. Content is nil when the fetch
// failed; Err then holds a short machine-readable reason suitable for
// storing as a cache failure.
type Result struct {
	URL     string
	Content *string
	Err     string
}

// OK reports whether the fetch produced content.
func (r Result) OK() bool {
	return r.Content != nil
}

// Options configures a Fetcher. Zero values take the package defaults.
type Options struct {
	MaxConcurrent int
	Timeout       time.Duration
	MaxRedirects  int
	UserAgent     string
}

// Fetcher performs HTTP GETs with a shared client and a concurrency ceiling.
// OnProgress, when set, is invoked once per completed URL during FetchMany;
// invocations are serialized, so done counts increase monotonically.
type Fetcher struct {
	client        *http.Client
	maxConcurrent int
	timeout       time.Duration
	userAgent     string

	OnProgress func(done, total int, url string)
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return ErrTooManyRedirects
			}
			// A public host may redirect into private space; every hop
			// gets the same address check as the initial URL.
			if hostIsPrivate(req.URL.Hostname()) {
				return ErrPrivateAddress
			}
			return nil
		},
	}

	return &Fetcher{
		client:        client,
		maxConcurrent: opts.MaxConcurrent,
		timeout:       opts.Timeout,
		userAgent:     opts.UserAgent,
	}
}

// isPrivateIP reports whether ip is in a private or link-local range.
// Loopback is exempt; feeds served from localhost are reachable.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// hostIsPrivate resolves host and reports whether any of its addresses is
// private. Unresolvable hosts pass; the request itself will fail with the
// real DNS error.
func hostIsPrivate(host string) bool {
	ips, err := net.LookupIP(host)
	if err != nil {
		return false
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return true
		}
	}
	return false
}

// FetchOne retrieves a single URL. It never returns an error; every failure
// mode lands in Result.Err as an error-kind prefix plus a short message.
func (f *Fetcher) FetchOne(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		res.Err = "request: invalid URL"
		return res
	}

	if hostIsPrivate(parsed.Hostname()) {
		res.Err = "request: " + ErrPrivateAddress.Error()
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Err = "request: " + err.Error()
		return res
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		res.Err = transportError(err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Err = fmt.Sprintf("http %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return res
	}

	// Read response body with DoS protection (10MB limit)
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			res.Err = "timeout: deadline exceeded"
		} else {
			res.Err = "read: " + err.Error()
		}
		return res
	}
	if int64(len(body)) > MaxResponseSize {
		res.Err = fmt.Sprintf("read: response exceeds %d bytes", MaxResponseSize)
		return res
	}

	content := string(body)
	res.Content = &content
	return res
}

// FetchMany retrieves all URLs with at most MaxConcurrent requests in
// flight. Results arrive in completion order, not submission order; callers
// correlate by Result.URL. Individual failures never abort the batch.
func (f *Fetcher) FetchMany(ctx context.Context, urls []string) []Result {
	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(urls))
	)

	total := len(urls)
	g := new(errgroup.Group)
	g.SetLimit(f.maxConcurrent)

	for _, u := range urls {
		g.Go(func() error {
			res := f.FetchOne(ctx, u)
			mu.Lock()
			results = append(results, res)
			done := len(results)
			if f.OnProgress != nil {
				f.OnProgress(done, total, u)
			}
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only serves as the join point.
	_ = g.Wait()
	return results
}

// Close releases idle connections held by the shared client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// transportError renders a client.Do failure as a short prefixed string.
func transportError(err error) string {
	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return "redirect: " + ErrTooManyRedirects.Error()
	case errors.Is(err, ErrPrivateAddress):
		return "request: " + ErrPrivateAddress.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout: deadline exceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout: " + netErr.Error()
	}

	// url.Error repeats the URL, which the result already carries.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return "request: " + uerr.Err.Error()
	}
	return "request: " + err.Error()
}
