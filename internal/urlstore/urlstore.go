// Package urlstore keeps a durable record of processed pages in SQLite so
// repeated runs can report on and skip recently captured URLs.
package urlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url         TEXT PRIMARY KEY,
	site        TEXT NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	captured_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_site ON pages(site);

CREATE TABLE IF NOT EXISTS sites (
	site       TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	crawled_at TIMESTAMP NOT NULL
);
`

// Store wraps the SQLite handle. One writer at a time; WAL keeps readers
// unblocked while workers record pages.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open url store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply url store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordPage upserts one page outcome.
func (s *Store) RecordPage(ctx context.Context, site, url string, status crawler.Status, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (url, site, status, reason, captured_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			site = excluded.site,
			status = excluded.status,
			reason = excluded.reason,
			captured_at = excluded.captured_at`,
		url, site, string(status), reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record page %s: %w", url, err)
	}
	return nil
}

// RecordSite upserts one site outcome.
func (s *Store) RecordSite(ctx context.Context, site string, status crawler.Status, pages int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (site, status, pages, crawled_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(site) DO UPDATE SET
			status = excluded.status,
			pages = excluded.pages,
			crawled_at = excluded.crawled_at`,
		site, string(status), pages, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record site %s: %w", site, err)
	}
	return nil
}

// CapturedSince reports whether url was successfully captured after cutoff.
func (s *Store) CapturedSince(ctx context.Context, url string, cutoff time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM pages
		WHERE url = ? AND status = ? AND captured_at > ?`,
		url, string(crawler.StatusSuccess), cutoff).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query captured since: %w", err)
	}
	return n > 0, nil
}

// PageCount returns how many pages the store knows about.
func (s *Store) PageCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close url store: %w", err)
	}
	return nil
}
