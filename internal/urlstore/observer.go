package urlstore

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// Observer feeds crawl outcomes into the store as they complete. Persistence
// failures are logged, never surfaced; the store is bookkeeping, not a
// correctness dependency of the crawl.
type Observer struct {
	store  *Store
	logger *zap.Logger
}

// NewObserver wires a store into the orchestrator's observer hook.
func NewObserver(store *Store, logger *zap.Logger) *Observer {
	return &Observer{store: store, logger: logger}
}

// PageDone records one page outcome.
func (o *Observer) PageDone(res crawler.PageResult) {
	err := o.store.RecordPage(context.Background(), siteOf(res.URL), res.URL, res.Status, res.Reason)
	if err != nil {
		o.logger.Warn("url store page write failed", zap.String("url", res.URL), zap.Error(err))
	}
}

// SiteDone records one site outcome.
func (o *Observer) SiteDone(res crawler.SiteResult) {
	if err := o.store.RecordSite(context.Background(), res.Site, res.Status, len(res.Pages)); err != nil {
		o.logger.Warn("url store site write failed", zap.String("site", res.Site), zap.Error(err))
	}
}

func siteOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
