// ABOUTME: Persistent URL-keyed content cache backed by SQLite
// ABOUTME: Tracks freshness, consecutive fetch failures, and stale-row cleanup

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Namespaces partition the cache keyspace. Feed documents and extracted
// item content share one table but never collide.
const (
	NamespaceFeeds = "feeds"
	NamespaceItems = "items"
)

// batchSize caps keys per statement to stay well under SQLite's
// bound-parameter limit.
const batchSize = 500

// errorReasonLimit caps stored error strings so one oversized response
// cannot bloat the cache.
const errorReasonLimit = 200

// Store is a persistent cache of fetched content keyed by (namespace, key).
// A row either holds content (fail_count zero, no error) or records a
// failure (content NULL, fail_count counting consecutive misses). Set
// maintains that split atomically.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the cache database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return store, nil
}

// initSchema creates the cache table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			content TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			fail_count INTEGER NOT NULL DEFAULT 0,
			error_reason TEXT,
			PRIMARY KEY (namespace, key)
		);

		CREATE INDEX IF NOT EXISTS idx_entries_updated_at ON entries(updated_at);
		CREATE INDEX IF NOT EXISTS idx_entries_fail_count ON entries(fail_count);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns cached content for key if the entry is valid: it exists, holds
// non-NULL content, and was updated within ttl. Rows recording failures are
// never valid regardless of age.
func (s *Store) Get(ctx context.Context, namespace, key string, ttl time.Duration) (string, bool, error) {
	cutoff := s.now().Add(-ttl).Unix()
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM entries
		WHERE namespace = ? AND key = ? AND content IS NOT NULL AND updated_at > ?
	`, namespace, key, cutoff).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query cache entry: %w", err)
	}
	return content, true, nil
}

// BatchGet looks up many keys at once. The result has one entry per
// requested key; keys with no valid cached content map to nil. Lookups are
// chunked so large key sets never exceed the parameter limit.
func (s *Store) BatchGet(ctx context.Context, namespace string, keys []string, ttl time.Duration) (map[string]*string, error) {
	result := make(map[string]*string, len(keys))
	for _, k := range keys {
		result[k] = nil
	}
	if len(keys) == 0 {
		return result, nil
	}

	cutoff := s.now().Add(-ttl).Unix()
	for start := 0; start < len(keys); start += batchSize {
		end := start + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		query := fmt.Sprintf(`
			SELECT key, content FROM entries
			WHERE namespace = ? AND content IS NOT NULL AND updated_at > ?
			AND key IN (%s)
		`, placeholders(len(chunk)))

		args := make([]any, 0, len(chunk)+2)
		args = append(args, namespace, cutoff)
		for _, k := range chunk {
			args = append(args, k)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query cache entries: %w", err)
		}
		if err := scanContentRows(rows, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scanContentRows drains rows of (key, content) pairs into result.
func scanContentRows(rows *sql.Rows, result map[string]*string) error {
	defer rows.Close()
	for rows.Next() {
		var key, content string
		if err := rows.Scan(&key, &content); err != nil {
			return fmt.Errorf("scan cache entry: %w", err)
		}
		c := content
		result[key] = &c
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cache entries: %w", err)
	}
	return nil
}

// Set records a fetch outcome in one atomic upsert. On success the content
// is stored (nil clears it) and failure tracking resets. On failure the
// content is forced NULL, fail_count increments, and reason is kept for
// diagnostics. updated_at advances either way.
func (s *Store) Set(ctx context.Context, namespace, key string, content *string, success bool, reason string) error {
	now := s.now().Unix()

	if success {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO entries (namespace, key, content, created_at, updated_at, fail_count, error_reason)
			VALUES (?, ?, ?, ?, ?, 0, NULL)
			ON CONFLICT(namespace, key) DO UPDATE SET
				content = excluded.content,
				updated_at = excluded.updated_at,
				fail_count = 0,
				error_reason = NULL
		`, namespace, key, content, now, now)
		if err != nil {
			return fmt.Errorf("store cache entry: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (namespace, key, content, created_at, updated_at, fail_count, error_reason)
		VALUES (?, ?, NULL, ?, ?, 1, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			content = NULL,
			updated_at = excluded.updated_at,
			fail_count = entries.fail_count + 1,
			error_reason = excluded.error_reason
	`, namespace, key, now, now, truncateReason(reason))
	if err != nil {
		return fmt.Errorf("store cache failure: %w", err)
	}
	return nil
}

// FailingEntry describes a cache row with consecutive fetch failures.
type FailingEntry struct {
	Namespace   string    `json:"namespace"`
	Key         string    `json:"key"`
	FailCount   int       `json:"fail_count"`
	ErrorReason string    `json:"error_reason,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListFailing returns rows whose consecutive failure count is at least min,
// worst first.
func (s *Store) ListFailing(ctx context.Context, min int) ([]FailingEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT namespace, key, fail_count, COALESCE(error_reason, ''), updated_at
		FROM entries
		WHERE fail_count >= ?
		ORDER BY fail_count DESC, namespace, key
	`, min)
	if err != nil {
		return nil, fmt.Errorf("query failing entries: %w", err)
	}
	defer rows.Close()

	var entries []FailingEntry
	for rows.Next() {
		var e FailingEntry
		var updated int64
		if err := rows.Scan(&e.Namespace, &e.Key, &e.FailCount, &e.ErrorReason, &updated); err != nil {
			return nil, fmt.Errorf("scan failing entry: %w", err)
		}
		e.UpdatedAt = time.Unix(updated, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failing entries: %w", err)
	}
	return entries, nil
}

// Cleanup removes stale rows and returns how many were deleted. Rows older
// than retention with no recorded failures are dropped in every namespace;
// failing rows stay so their history survives until a fetch succeeds. When
// known is non-nil, feed rows whose key is absent from known are dropped as
// orphans. Passing nil skips orphan deletion entirely, so partial runs
// cannot wipe the cache. Item rows are never orphan-deleted; recipes do not
// enumerate item URLs, so those expire by time alone.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration, known []string) (int64, error) {
	cutoff := s.now().Add(-retention).Unix()
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM entries WHERE updated_at < ? AND fail_count = 0
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired entries: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if known == nil {
		return deleted, nil
	}

	orphans, err := s.orphanedFeedKeys(ctx, known)
	if err != nil {
		return deleted, err
	}

	for start := 0; start < len(orphans); start += batchSize {
		end := start + batchSize
		if end > len(orphans) {
			end = len(orphans)
		}
		chunk := orphans[start:end]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, NamespaceFeeds)
		for _, k := range chunk {
			args = append(args, k)
		}

		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM entries WHERE namespace = ? AND key IN (%s)`, placeholders(len(chunk))),
			args...)
		if err != nil {
			return deleted, fmt.Errorf("delete orphaned entries: %w", err)
		}
		n, _ := res.RowsAffected()
		deleted += n
	}
	return deleted, nil
}

// orphanedFeedKeys returns feed-namespace keys that are not in known.
func (s *Store) orphanedFeedKeys(ctx context.Context, known []string) ([]string, error) {
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM entries WHERE namespace = ?`, NamespaceFeeds)
	if err != nil {
		return nil, fmt.Errorf("query feed keys: %w", err)
	}
	defer rows.Close()

	var orphans []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan feed key: %w", err)
		}
		if !knownSet[key] {
			orphans = append(orphans, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed keys: %w", err)
	}
	return orphans, nil
}

// placeholders returns n comma-joined SQL parameter markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// truncateReason caps an error reason at errorReasonLimit runes.
func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= errorReasonLimit {
		return reason
	}
	return string(runes[:errorReasonLimit])
}
