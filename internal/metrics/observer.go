package metrics

import (
	"time"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// Observer bridges crawl results into the Prometheus collectors.
type Observer struct{}

// NewObserver initializes the collectors and returns the bridge.
func NewObserver() *Observer {
	Init()
	return &Observer{}
}

// PageDone records page, discovery, and action metrics for one page.
func (Observer) PageDone(res crawler.PageResult) {
	ObservePage(res.URL, string(res.Status))
	ObserveDiscovery(res.Discovery.StaticCount, res.Discovery.DynamicCount)
	for _, a := range res.Handling.Actions {
		ObserveAction(string(a.ActionTaken), a.ElementRemoved)
	}
	if res.Status == crawler.StatusSuccess && !res.Handling.VerificationPassed {
		ObserveVerificationFailure()
	}
}

// SiteDone records site metrics.
func (Observer) SiteDone(res crawler.SiteResult) {
	ObserveSite(string(res.Status), time.Duration(res.ElapsedSeconds*float64(time.Second)))
}
