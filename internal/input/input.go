// Package input reads the site list that seeds a crawl run.
package input

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// Load parses a site list file. Accepted layouts, mixed freely per line:
//
//	url
//	site_id,url
//
// Blank lines and #-comments are skipped; a "site,url" header row is
// detected and dropped. Bare domains get an https scheme. Duplicate URLs
// keep their first occurrence.
func Load(path string) ([]crawler.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, crawler.ConfigError(fmt.Errorf("open site list: %w", err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	records, err := r.ReadAll()
	if err != nil {
		return nil, crawler.ConfigError(fmt.Errorf("parse site list: %w", err))
	}

	var sites []crawler.Site
	seen := map[string]bool{}
	for i, rec := range records {
		var id, raw string
		switch len(rec) {
		case 1:
			raw = strings.TrimSpace(rec[0])
		case 2:
			id = strings.TrimSpace(rec[0])
			raw = strings.TrimSpace(rec[1])
		default:
			return nil, crawler.ConfigError(fmt.Errorf("site list line %d: expected 1 or 2 fields, got %d", i+1, len(rec)))
		}
		if raw == "" {
			continue
		}
		if i == 0 && isHeader(raw) {
			continue
		}

		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		norm, err := crawler.NormalizeURL(raw)
		if err != nil {
			return nil, crawler.ConfigError(fmt.Errorf("site list line %d: %w", i+1, err))
		}
		u, err := url.Parse(norm)
		if err != nil || u.Hostname() == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, crawler.ConfigError(fmt.Errorf("site list line %d: not a crawlable url: %s", i+1, raw))
		}
		if seen[norm] {
			continue
		}
		seen[norm] = true

		if id == "" {
			id = u.Hostname()
		}
		sites = append(sites, crawler.Site{ID: id, URL: norm})
	}

	if len(sites) == 0 {
		return nil, crawler.ConfigError(fmt.Errorf("site list %s contains no sites", path))
	}
	return sites, nil
}

// isHeader detects a "site,url" or "url" header row: the url column holds
// the literal word instead of anything resolvable.
func isHeader(raw string) bool {
	lowered := strings.ToLower(raw)
	if strings.Contains(lowered, ".") || strings.Contains(lowered, "://") {
		return false
	}
	return lowered == "url" || lowered == "urls"
}
