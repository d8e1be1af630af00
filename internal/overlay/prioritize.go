package overlay

import (
	"sort"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// CandidateList is the merged, ordered action queue for one page. HighCount
// marks the boundary: Candidates[:HighCount] is tier A (known-signature
// matches), the rest is tier B (unclassified high-rank overlays).
type CandidateList struct {
	Candidates []DiscoveredSelector
	HighCount  int
}

// Prioritize merges static and dynamic discoveries into one ordered list.
// Nothing is dropped for low confidence: a skipped real blocker costs more
// than a wasted attempt on a benign element. Duplicates collapse on the
// (selector, source) pair, first occurrence wins.
func Prioritize(static, dynamic []DiscoveredSelector) CandidateList {
	type key struct {
		selector string
		source   Source
	}
	seen := make(map[key]struct{})

	type ordered struct {
		d     DiscoveredSelector
		order int
	}
	var high, other []ordered

	add := func(d DiscoveredSelector, order int) {
		k := key{selector: d.Selector, source: d.Source}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		if d.Classification.HighPriority() {
			high = append(high, ordered{d: d, order: order})
		} else {
			other = append(other, ordered{d: d, order: order})
		}
	}

	// Static entries first so that equal-confidence ties keep static before
	// dynamic; insertion order within each source is preserved.
	order := 0
	for _, d := range static {
		add(d, order)
		order++
	}
	for _, d := range dynamic {
		add(d, order)
		order++
	}

	// Tier A: descending confidence, ties by discovery order.
	sort.SliceStable(high, func(i, j int) bool {
		if high[i].d.Confidence != high[j].d.Confidence {
			return high[i].d.Confidence > high[j].d.Confidence
		}
		return high[i].order < high[j].order
	})

	// Tier B: descending stack rank where present, then discovery order.
	sort.SliceStable(other, func(i, j int) bool {
		if other[i].d.StackRank != other[j].d.StackRank {
			return other[i].d.StackRank > other[j].d.StackRank
		}
		return other[i].order < other[j].order
	})

	out := CandidateList{HighCount: len(high)}
	out.Candidates = make([]DiscoveredSelector, 0, len(high)+len(other))
	for _, o := range high {
		out.Candidates = append(out.Candidates, o.d)
	}
	for _, o := range other {
		out.Candidates = append(out.Candidates, o.d)
	}
	return out
}

// Classifications returns the distinct classifications present in the list,
// in first-seen order.
func (l CandidateList) Classifications() []catalog.Classification {
	seen := make(map[catalog.Classification]struct{})
	var out []catalog.Classification
	for _, d := range l.Candidates {
		if _, ok := seen[d.Classification]; ok {
			continue
		}
		seen[d.Classification] = struct{}{}
		out = append(out, d.Classification)
	}
	return out
}
