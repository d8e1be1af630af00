package overlay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// Engine drives dismissal actions against a page's candidate list. Per page
// it moves through Discover -> Act -> Cleanup -> Verify -> Done; Run covers
// Act onward, discovery having produced the CandidateList beforehand.
type Engine struct {
	cat    catalog.Catalog
	logger *zap.Logger
}

// NewEngine builds an action engine over the shared catalog.
func NewEngine(cat catalog.Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cat: cat, logger: logger}
}

// Report is the engine's account of one page's handling.
type Report struct {
	Actions             []ActionOutcome
	FallbackTriggered   bool
	CleanupRemovedCount int
	VerificationPassed  bool
}

// Run attempts every candidate in order, then the fallback patterns if
// warranted, then the unconditional aggressive cleanup, then verification.
// It never stops early on success: a page may host several independent
// overlays, so the whole list is always walked.
func (e *Engine) Run(ctx context.Context, surface Surface, list CandidateList) (Report, error) {
	var report Report

	removedAny := false
	for _, cand := range list.Candidates {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("handling aborted: %w", err)
		}
		outcome := e.attempt(ctx, surface, cand)
		report.Actions = append(report.Actions, outcome)
		if outcome.ElementRemoved {
			removedAny = true
		}
	}

	if !removedAny || e.cat.MandatesFallback(list.Classifications()) {
		report.FallbackTriggered = true
		report.Actions = append(report.Actions, e.runFallback(ctx, surface)...)
	}

	removed, err := surface.Remove(ctx, e.cat.CleanupSelectors)
	if err != nil {
		e.logger.Warn("aggressive cleanup failed", zap.Error(err))
	}
	report.CleanupRemovedCount = removed

	passed, err := Verify(ctx, surface, e.cat)
	if err != nil {
		e.logger.Warn("verification failed", zap.Error(err))
	}
	report.VerificationPassed = passed

	return report, nil
}

// attempt resolves one candidate and tries the fixed action preference:
// an inner accept/close control, then clicking the element itself if it is
// button-like, then an escape key for modal-like elements.
func (e *Engine) attempt(ctx context.Context, surface Surface, cand DiscoveredSelector) ActionOutcome {
	outcome := ActionOutcome{Selector: cand.Selector, ActionTaken: ActionNone}

	state, err := surface.Inspect(ctx, cand.Selector)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	if !state.Present || !state.Visible {
		// Wrong selector or not-yet-rendered element. Expected; the
		// fallback pass covers these.
		e.logger.Debug("candidate unresolvable",
			zap.String("selector", cand.Selector),
			zap.Bool("present", state.Present),
		)
		return outcome
	}
	outcome.Attempted = true

	switch {
	case e.clickInner(ctx, surface, cand.Selector):
		outcome.ActionTaken = ActionCloseButton
	case state.Clickable:
		outcome.ActionTaken = ActionClick
		if err := surface.Click(ctx, cand.Selector); err != nil {
			outcome.Err = err.Error()
		}
	case state.ModalLike:
		outcome.ActionTaken = ActionEscapeKey
		if err := surface.PressEscape(ctx); err != nil {
			outcome.Err = err.Error()
		}
	}

	after, err := surface.Inspect(ctx, cand.Selector)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.ElementRemoved = !after.Present || !after.Visible
	if outcome.ActionTaken != ActionNone && !outcome.ElementRemoved && outcome.Err == "" {
		outcome.Err = "element still visible after " + string(outcome.ActionTaken)
	}
	return outcome
}

func (e *Engine) clickInner(ctx context.Context, surface Surface, container string) bool {
	clicked, err := surface.ClickControl(ctx, container)
	if err != nil {
		e.logger.Debug("inner control click failed",
			zap.String("container", container), zap.Error(err))
		return false
	}
	return clicked
}

// runFallback tries the catalog's generic selectors and then the accept-text
// pattern, covering cases where discovery produced the wrong or a
// not-yet-rendered selector.
func (e *Engine) runFallback(ctx context.Context, surface Surface) []ActionOutcome {
	var outcomes []ActionOutcome

	for _, sel := range e.cat.FallbackSelectors {
		if ctx.Err() != nil {
			return outcomes
		}
		outcome := ActionOutcome{Selector: sel, Fallback: true, ActionTaken: ActionNone}
		state, err := surface.Inspect(ctx, sel)
		if err != nil || !state.Present || !state.Visible {
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Attempted = true
		outcome.ActionTaken = ActionClick
		if err := surface.Click(ctx, sel); err != nil {
			outcome.Err = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}
		after, err := surface.Inspect(ctx, sel)
		if err == nil {
			outcome.ElementRemoved = !after.Present || !after.Visible
		}
		outcomes = append(outcomes, outcome)
	}

	clicked, err := surface.ClickByText(ctx, e.cat.AcceptText.String())
	if err != nil {
		e.logger.Debug("fallback text click failed", zap.Error(err))
		return outcomes
	}
	if clicked {
		outcomes = append(outcomes, ActionOutcome{
			Selector:       "text:" + e.cat.AcceptText.String(),
			Attempted:      true,
			Fallback:       true,
			ActionTaken:    ActionClick,
			ElementRemoved: true,
		})
	}
	return outcomes
}
