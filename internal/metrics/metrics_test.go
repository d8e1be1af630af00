package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pagesnap/pagesnap/internal/crawler"
	"github.com/pagesnap/pagesnap/internal/overlay"
)

func TestSanitizeSite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SanitizeSite(tt.input))
		})
	}
}

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()
	require.NotNil(t, pagesTotal)
	require.NotNil(t, httpRequestsTotal)
}

func TestObserverCounts(t *testing.T) {
	obs := NewObserver()

	before := testutil.ToFloat64(pagesTotal.WithLabelValues("a.test", "success"))
	obs.PageDone(crawler.PageResult{
		URL:    "https://a.test/",
		Status: crawler.StatusSuccess,
		Discovery: crawler.Discovery{
			StaticCount:  2,
			DynamicCount: 3,
		},
		Handling: crawler.Handling{
			Actions: []overlay.ActionOutcome{
				{ActionTaken: overlay.ActionClick, ElementRemoved: true},
			},
		},
	})
	after := testutil.ToFloat64(pagesTotal.WithLabelValues("a.test", "success"))
	require.Equal(t, before+1, after)

	require.GreaterOrEqual(t,
		testutil.ToFloat64(overlayActionsTotal.WithLabelValues("click", "removed")),
		float64(1),
	)

	obs.SiteDone(crawler.SiteResult{Status: crawler.StatusPartial, ElapsedSeconds: 12.5})
	require.GreaterOrEqual(t, testutil.ToFloat64(sitesTotal.WithLabelValues("partial")), float64(1))
}
