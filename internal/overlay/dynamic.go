package overlay

import (
	"context"
	"fmt"
	"sort"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// DefaultStackRankThreshold is the minimum stacking rank an element needs to
// be considered an overlay candidate. Low on purpose: high stacking order
// merely correlates with popups and the prioritizer absorbs the noise.
const DefaultStackRankThreshold = 5

// DynamicScanner extracts overlay candidates from the rendered page's
// stacking order. It runs after the stabilization wait so deferred consent
// scripts have had a chance to inject their markup.
type DynamicScanner struct {
	cat       catalog.Catalog
	threshold int
}

// NewDynamicScanner builds a scanner with the given rank threshold; values
// below one fall back to the default.
func NewDynamicScanner(cat catalog.Catalog, threshold int) *DynamicScanner {
	if threshold < 1 {
		threshold = DefaultStackRankThreshold
	}
	return &DynamicScanner{cat: cat, threshold: threshold}
}

// Scan queries the surface for stacking entries and emits candidates ranked
// descending by stack order, ties broken by document order (first seen
// wins). Duplicate selectors keep their highest observed rank.
func (s *DynamicScanner) Scan(ctx context.Context, surface Surface) ([]DiscoveredSelector, error) {
	entries, err := surface.ScanStackingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan stacking context: %w", err)
	}

	type ranked struct {
		entry StackEntry
		order int
	}
	best := make(map[string]ranked)
	var keys []string
	for i, e := range entries {
		if e.Rank < s.threshold || e.Selector == "" {
			continue
		}
		prev, ok := best[e.Selector]
		if !ok {
			keys = append(keys, e.Selector)
			best[e.Selector] = ranked{entry: e, order: i}
			continue
		}
		if e.Rank > prev.entry.Rank {
			// Keep the first-seen document position even when a later
			// occurrence raises the rank.
			best[e.Selector] = ranked{entry: e, order: prev.order}
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := best[keys[i]], best[keys[j]]
		if a.entry.Rank != b.entry.Rank {
			return a.entry.Rank > b.entry.Rank
		}
		return a.order < b.order
	})

	found := make([]DiscoveredSelector, 0, len(keys))
	for _, k := range keys {
		e := best[k].entry
		d := DiscoveredSelector{
			Selector:       e.Selector,
			Classification: catalog.ClassOverlay,
			Confidence:     0.30,
			Source:         SourceDynamic,
			StackRank:      e.Rank,
		}
		if sig, ok := s.cat.Classify(e.Selector); ok {
			d.Classification = sig.Classification
			d.Confidence = sig.Confidence
		}
		found = append(found, d)
	}
	return found, nil
}
