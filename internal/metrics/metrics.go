// Package metrics exposes Prometheus collectors for the capture service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal                 *prometheus.CounterVec
	sitesTotal                 *prometheus.CounterVec
	overlaysDiscoveredTotal    *prometheus.CounterVec
	overlayActionsTotal        *prometheus.CounterVec
	verificationFailuresTotal  prometheus.Counter
	siteDurationSeconds        prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagesnap_pages_total",
				Help: "Total number of pages processed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		sitesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagesnap_sites_total",
				Help: "Total number of sites processed, labeled by status.",
			},
			[]string{"status"},
		)

		overlaysDiscoveredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagesnap_overlays_discovered_total",
				Help: "Total overlay candidates discovered, labeled by source phase.",
			},
			[]string{"source"},
		)

		overlayActionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagesnap_overlay_actions_total",
				Help: "Total dismissal actions taken, labeled by action and result.",
			},
			[]string{"action", "result"},
		)

		verificationFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pagesnap_verification_failures_total",
				Help: "Pages where an overlay selector was still visible after handling.",
			},
		)

		siteDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagesnap_site_duration_seconds",
				Help:    "Histogram of wall-clock time spent per site.",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests to the status server.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of status server request latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname for use as a label value.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records one page outcome.
func ObservePage(site, status string) {
	pagesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
}

// ObserveSite records one site outcome and its duration.
func ObserveSite(status string, elapsed time.Duration) {
	sitesTotal.WithLabelValues(status).Inc()
	siteDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveDiscovery records overlay candidate counts per discovery phase.
func ObserveDiscovery(staticCount, dynamicCount int) {
	overlaysDiscoveredTotal.WithLabelValues("static").Add(float64(staticCount))
	overlaysDiscoveredTotal.WithLabelValues("dynamic").Add(float64(dynamicCount))
}

// ObserveAction records one dismissal action outcome.
func ObserveAction(action string, removed bool) {
	result := "kept"
	if removed {
		result = "removed"
	}
	overlayActionsTotal.WithLabelValues(action, result).Inc()
}

// ObserveVerificationFailure counts a page that ended with a visible overlay.
func ObserveVerificationFailure() {
	verificationFailuresTotal.Inc()
}

// ObserveHTTPRequest records one status server request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
