package overlay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

func TestDynamicScannerRankingAndThreshold(t *testing.T) {
	t.Parallel()

	surface := newFakeSurface()
	surface.stack = []StackEntry{
		{Selector: ".toolbar", Rank: 2},     // below threshold, dropped
		{Selector: ".promo-layer", Rank: 50},
		{Selector: "#chat-widget", Rank: 900},
		{Selector: ".sticky-header", Rank: 50}, // ties with promo-layer, later in doc order
	}

	found, err := NewDynamicScanner(catalog.Default(), 5).Scan(context.Background(), surface)
	require.NoError(t, err)
	require.Len(t, found, 3)

	require.Equal(t, "#chat-widget", found[0].Selector)
	require.Equal(t, 900, found[0].StackRank)
	require.Equal(t, ".promo-layer", found[1].Selector)
	require.Equal(t, ".sticky-header", found[2].Selector)

	for _, d := range found {
		require.Equal(t, SourceDynamic, d.Source)
	}
}

func TestDynamicScannerDuplicateKeepsHighestRank(t *testing.T) {
	t.Parallel()

	surface := newFakeSurface()
	surface.stack = []StackEntry{
		{Selector: ".banner", Rank: 10},
		{Selector: ".banner", Rank: 400},
		{Selector: ".banner", Rank: 40},
	}

	found, err := NewDynamicScanner(catalog.Default(), 5).Scan(context.Background(), surface)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, 400, found[0].StackRank)
}

func TestDynamicScannerCatalogMatchOverridesOverlay(t *testing.T) {
	t.Parallel()

	surface := newFakeSurface()
	surface.stack = []StackEntry{
		{Selector: "#onetrust-banner-sdk", Rank: 2000},
		{Selector: ".random-popover", Rank: 100},
	}

	found, err := NewDynamicScanner(catalog.Default(), 5).Scan(context.Background(), surface)
	require.NoError(t, err)
	require.Len(t, found, 2)

	require.Equal(t, catalog.ClassCookieFramework, found[0].Classification)
	require.InDelta(t, 0.95, found[0].Confidence, 1e-9)

	require.Equal(t, catalog.ClassOverlay, found[1].Classification)
	require.InDelta(t, 0.30, found[1].Confidence, 1e-9)
}

func TestDynamicScannerDefaultThreshold(t *testing.T) {
	t.Parallel()

	surface := newFakeSurface()
	surface.stack = []StackEntry{
		{Selector: ".low", Rank: DefaultStackRankThreshold - 1},
		{Selector: ".high", Rank: DefaultStackRankThreshold},
	}

	found, err := NewDynamicScanner(catalog.Default(), 0).Scan(context.Background(), surface)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, ".high", found[0].Selector)
}
