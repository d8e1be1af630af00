package overlay

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// StaticAnalyzer scans a page's initial HTML for catalog signature matches.
// It is a pure scan: no deduplication across selector strings even when two
// selectors resolve to the same element; the prioritizer collapses those.
type StaticAnalyzer struct {
	cat catalog.Catalog
}

// NewStaticAnalyzer builds an analyzer over the given catalog.
func NewStaticAnalyzer(cat catalog.Catalog) *StaticAnalyzer {
	return &StaticAnalyzer{cat: cat}
}

// Analyze parses the HTML and emits one DiscoveredSelector per matching
// element, with source=static and the catalog's base confidence.
func (a *StaticAnalyzer) Analyze(html string) ([]DiscoveredSelector, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var found []DiscoveredSelector
	seen := make(map[string]struct{})

	for _, sig := range a.cat.Signatures {
		doc.Find(sig.Match).Each(func(_ int, sel *goquery.Selection) {
			selector := synthesizeSelector(sel, sig.Match)
			if _, dup := seen[selector]; dup {
				return
			}
			seen[selector] = struct{}{}
			found = append(found, DiscoveredSelector{
				Selector:       selector,
				Classification: sig.Classification,
				Confidence:     sig.Confidence,
				Source:         SourceStatic,
			})
		})
	}

	found = append(found, a.acceptButtonsByText(doc, seen)...)
	return found, nil
}

// acceptButtonsByText finds button-like elements whose visible label matches
// the catalog accept pattern. Text matches carry a lower confidence than
// structural ones.
func (a *StaticAnalyzer) acceptButtonsByText(doc *goquery.Document, seen map[string]struct{}) []DiscoveredSelector {
	var found []DiscoveredSelector
	doc.Find(`button, a, [role="button"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || len(text) > 64 || !a.cat.AcceptText.MatchString(text) {
			return
		}
		selector := synthesizeSelector(sel, "")
		if selector == "" {
			return
		}
		if _, dup := seen[selector]; dup {
			return
		}
		seen[selector] = struct{}{}
		found = append(found, DiscoveredSelector{
			Selector:       selector,
			Classification: catalog.ClassAcceptButton,
			Confidence:     0.70,
			Source:         SourceStatic,
		})
	})
	return found
}

// synthesizeSelector derives a stable selector for one element: its #id if
// present, else its first class, else the signature selector that matched.
func synthesizeSelector(sel *goquery.Selection, fallback string) string {
	if id, ok := sel.Attr("id"); ok {
		if id = strings.TrimSpace(id); id != "" {
			return "#" + id
		}
	}
	if class, ok := sel.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			if c != "" {
				return "." + c
			}
		}
	}
	return fallback
}
