package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyDiscoverer enumerates pages for a site by following same-domain links
// from the root with a plain HTTP fetcher. Rendering is not needed here; the
// browser only visits what discovery returns.
type CollyDiscoverer struct {
	userAgent string
	maxDepth  int
	logger    *zap.Logger
}

// NewCollyDiscoverer builds a discoverer. maxDepth bounds how far link
// following recurses from the root (colly counts the root as depth 1).
func NewCollyDiscoverer(userAgent string, maxDepth int, logger *zap.Logger) *CollyDiscoverer {
	if maxDepth < 1 {
		maxDepth = 2
	}
	return &CollyDiscoverer{userAgent: userAgent, maxDepth: maxDepth, logger: logger}
}

// Discover returns the normalized root URL followed by same-domain pages in
// first-seen order, capped at maxPages. Fetch failures during discovery are
// logged and skipped; the root is always returned so the browser still gets
// its chance even when a plain HTTP fetch is rejected.
func (d *CollyDiscoverer) Discover(ctx context.Context, rootURL string, maxPages int) ([]string, error) {
	root, err := NormalizeURL(rootURL)
	if err != nil {
		return nil, NavigationError(err)
	}
	parsed, err := url.Parse(root)
	if err != nil {
		return nil, NavigationError(err)
	}
	if parsed.Hostname() == "" {
		return nil, NavigationError(fmt.Errorf("no host in %q", rootURL))
	}
	if maxPages < 1 {
		maxPages = 1
	}

	var mu sync.Mutex
	seen := map[string]bool{root: true}
	pages := []string{root}

	collector := colly.NewCollector(
		colly.AllowedDomains(allowedHosts(parsed.Hostname())...),
		colly.MaxDepth(d.maxDepth),
		colly.UserAgent(d.userAgent),
	)
	collector.AllowURLRevisit = false

	collector.OnRequest(func(r *colly.Request) {
		mu.Lock()
		full := len(pages) >= maxPages
		mu.Unlock()
		if full || ctx.Err() != nil {
			r.Abort()
		}
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || skippableLink(link) {
			return
		}
		norm, err := NormalizeURL(link)
		if err != nil {
			return
		}
		target, err := url.Parse(norm)
		if err != nil || !sameSite(target.Hostname(), parsed.Hostname()) {
			return
		}

		mu.Lock()
		fresh := !seen[norm] && len(pages) < maxPages
		if fresh {
			seen[norm] = true
			pages = append(pages, norm)
		}
		mu.Unlock()

		if fresh {
			if err := e.Request.Visit(norm); err != nil {
				d.logger.Debug("link visit skipped", zap.String("url", norm), zap.Error(err))
			}
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		d.logger.Warn("discovery fetch failed",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status_code", r.StatusCode),
			zap.Error(err),
		)
	})

	if err := collector.Visit(root); err != nil {
		d.logger.Warn("discovery root fetch failed", zap.String("url", root), zap.Error(err))
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, TimeoutError(err)
	}
	return pages, nil
}

// allowedHosts pairs a host with its www variant so both resolve to the same
// site during discovery.
func allowedHosts(host string) []string {
	if strings.HasPrefix(host, "www.") {
		return []string{host, strings.TrimPrefix(host, "www.")}
	}
	return []string{host, "www." + host}
}
