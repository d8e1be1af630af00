// Package overlay implements the discovery-and-elimination pipeline for
// cookie banners, consent frameworks, and modal overlays: static and dynamic
// discovery, candidate prioritization, the dismissal action engine, and the
// post-handling verification pass.
package overlay

import (
	"context"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// Source records which discovery phase produced a selector.
type Source string

// Discovery sources.
const (
	SourceStatic  Source = "static"
	SourceDynamic Source = "dynamic"
)

// DiscoveredSelector is one candidate obstruction found on a page. It is
// immutable once created; identity within a page run is the
// (Selector, Source) pair.
type DiscoveredSelector struct {
	Selector       string
	Classification catalog.Classification
	Confidence     float64
	Source         Source

	// StackRank is the computed stacking order for dynamic discoveries;
	// zero for static ones.
	StackRank int
}

// ActionType names the dismissal action the engine performed on a candidate.
type ActionType string

// Dismissal actions, in the engine's preference order.
const (
	ActionClick       ActionType = "click"
	ActionCloseButton ActionType = "closeButton"
	ActionEscapeKey   ActionType = "escapeKey"
	ActionNone        ActionType = "none"
)

// ActionOutcome records what happened for one candidate (or one fallback
// pattern). Unresolvable candidates carry Attempted=false and no error: a
// selector that matches nothing at attempt time is expected, not
// exceptional.
type ActionOutcome struct {
	Selector       string
	Attempted      bool
	ActionTaken    ActionType
	ElementRemoved bool
	Fallback       bool
	Err            string
}

// StackEntry is one visible element with an explicit stacking context, as
// reported by the rendering engine. Entries arrive in DOM document order.
type StackEntry struct {
	Selector string
	Rank     int
}

// Surface is the minimal rendering-engine capability the pipeline needs.
// The chromedp binding implements it; tests use fakes. Every call takes a
// context because each one suspends on the browser.
type Surface interface {
	// HTML returns the current serialized DOM.
	HTML(ctx context.Context) (string, error)

	// ScanStackingContext reports every visible element that establishes an
	// explicit stacking context, with its effective rank, in document order.
	// Elements with position:static are excluded.
	ScanStackingContext(ctx context.Context) ([]StackEntry, error)

	// Inspect resolves a selector to its current element state. A selector
	// matching nothing returns a zero ElementState and no error.
	Inspect(ctx context.Context, selector string) (ElementState, error)

	// ClickControl clicks an accept/close-labeled control inside the given
	// container, reporting whether one was found and clicked.
	ClickControl(ctx context.Context, container string) (bool, error)

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// ClickByText clicks the first visible button-like element whose label
	// matches the pattern, reporting whether one was clicked.
	ClickByText(ctx context.Context, pattern string) (bool, error)

	// PressEscape sends an Escape key to the page.
	PressEscape(ctx context.Context) error

	// Remove force-hides and detaches every element matching the selectors,
	// returning how many were removed.
	Remove(ctx context.Context, selectors []string) (int, error)

	// AnyVisible reports whether any element matching the selectors is
	// currently visible.
	AnyVisible(ctx context.Context, selectors []string) (bool, error)
}

// ElementState is a snapshot of one resolved element.
type ElementState struct {
	Present   bool
	Visible   bool
	Clickable bool // the element itself is a button or link
	ModalLike bool // dialog role, aria-modal, or modal-ish class
}
