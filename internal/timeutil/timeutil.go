// ABOUTME: Time helpers for feed entry dates
// ABOUTME: Parses loosely-formatted date strings and computes the ignore-before cutoff

package timeutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// CutoffWindow is how far back entries are accepted during acquisition.
// Anything published earlier is dropped before filtering.
const CutoffWindow = 7 * 24 * time.Hour

// DefaultCutoff returns the ignore-before time for a run starting at now.
func DefaultCutoff(now time.Time) time.Time {
	return now.Add(-CutoffWindow).UTC()
}

// ParseFeedTime parses a date string as found in the wild in RSS/Atom feeds
// (RFC 1123, RFC 3339, and the many almost-right variants). The result is
// normalized to UTC. Returns false for empty or unparseable input.
func ParseFeedTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t.UTC(), true
}
