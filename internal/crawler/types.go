// Package crawler implements the crawl orchestration layer: the site-level
// worker pool, per-page pipeline driving, and result aggregation with
// isolated failure domains.
package crawler

import (
	"context"
	"time"

	"github.com/pagesnap/pagesnap/internal/overlay"
)

// Status classifies a page or site outcome.
type Status string

// Outcome statuses.
const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Site is one crawl target resolved from the input list.
type Site struct {
	ID  string
	URL string
}

// Discovery summarizes what the two discovery phases produced for a page.
type Discovery struct {
	StaticCount  int `json:"static_count"`
	DynamicCount int `json:"dynamic_count"`
	TotalCount   int `json:"total_count"`
}

// Handling summarizes the action engine's work on a page.
type Handling struct {
	HighPriorityCount   int                     `json:"high_priority_count"`
	OtherCount          int                     `json:"other_count"`
	Actions             []overlay.ActionOutcome `json:"actions,omitempty"`
	CleanupRemovedCount int                     `json:"cleanup_removed_count"`
	VerificationPassed  bool                    `json:"verification_passed"`
}

// Capture holds the artifact locations for a captured page.
type Capture struct {
	ScreenshotPath string `json:"screenshot_path,omitempty"`
	HTMLPath       string `json:"html_path,omitempty"`
}

// PageResult is the full record for one processed page. A page is success
// iff capture succeeded; an overlay that survived handling does not fail the
// page, because capture is attempted regardless.
type PageResult struct {
	URL       string    `json:"url"`
	Discovery Discovery `json:"discovery"`
	Handling  Handling  `json:"handling"`
	Capture   Capture   `json:"capture"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SiteResult aggregates one site's pages. Created at site-task start,
// finalized once, never mutated afterwards.
type SiteResult struct {
	Site           string       `json:"site"`
	URL            string       `json:"url"`
	Pages          []PageResult `json:"pages"`
	ElapsedSeconds float64      `json:"elapsed_seconds"`
	Status         Status       `json:"status"`
	Error          string       `json:"error,omitempty"`
}

// finalize derives the site status from its pages.
func (r *SiteResult) finalize(started time.Time) {
	r.ElapsedSeconds = time.Since(started).Seconds()
	if len(r.Pages) == 0 {
		r.Status = StatusFailed
		return
	}
	succeeded := 0
	for _, p := range r.Pages {
		if p.Status == StatusSuccess {
			succeeded++
		}
	}
	switch {
	case succeeded == len(r.Pages):
		r.Status = StatusSuccess
	case succeeded > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
}

// Browser is one exclusively-owned rendering engine instance. Each worker
// holds exactly one for its lifetime; it is never shared or handed to
// another worker.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab/session. It extends the overlay pipeline's Surface
// with navigation, stabilization, and capture.
type Page interface {
	overlay.Surface
	Navigate(ctx context.Context, url string) error
	WaitStable(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// BrowserFactory builds one browser per worker.
type BrowserFactory func(ctx context.Context) (Browser, error)

// Discoverer enumerates candidate pages for a site: the root URL plus
// same-domain links, deduplicated by normalized URL, capped.
type Discoverer interface {
	Discover(ctx context.Context, rootURL string, maxPages int) ([]string, error)
}

// Capturer persists a rendered page's screenshot and HTML, returning where
// the artifacts landed. File naming belongs to the implementation.
type Capturer interface {
	Capture(ctx context.Context, site string, pageURL string, screenshot []byte, html string) (Capture, error)
}
