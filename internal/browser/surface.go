package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/pagesnap/pagesnap/internal/overlay"
)

// The overlay pipeline talks to the page exclusively through evaluated
// JavaScript. Clicks happen in-page rather than through synthesized input
// events so covered or off-viewport controls still receive them.

const scanStackScript = `(() => {
	const out = [];
	for (const el of document.querySelectorAll('body *')) {
		const cs = window.getComputedStyle(el);
		if (cs.position !== 'fixed' && cs.position !== 'sticky' && cs.position !== 'absolute') continue;
		if (cs.display === 'none' || cs.visibility === 'hidden') continue;
		const z = parseInt(cs.zIndex, 10);
		if (!Number.isFinite(z) || z <= 0) continue;
		const r = el.getBoundingClientRect();
		if (r.width < 40 || r.height < 40) continue;
		let sel = '';
		if (el.id) sel = '#' + CSS.escape(el.id);
		else if (el.classList.length > 0) sel = '.' + CSS.escape(el.classList[0]);
		else continue;
		out.push({selector: sel, rank: z});
	}
	return out;
})()`

const inspectScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return {present: false, visible: false, clickable: false, modalLike: false};
	const cs = window.getComputedStyle(el);
	const r = el.getBoundingClientRect();
	const visible = cs.display !== 'none' && cs.visibility !== 'hidden' &&
		cs.opacity !== '0' && r.width > 0 && r.height > 0;
	const tag = el.tagName.toLowerCase();
	const clickable = tag === 'button' || tag === 'a' ||
		el.getAttribute('role') === 'button' || typeof el.onclick === 'function';
	const modalLike = el.getAttribute('role') === 'dialog' ||
		el.getAttribute('aria-modal') === 'true' ||
		(cs.position === 'fixed' && r.width >= window.innerWidth * 0.5);
	return {present: true, visible: visible, clickable: clickable, modalLike: modalLike};
})()`

const clickControlScript = `(() => {
	const root = document.querySelector(%s);
	if (!root) return false;
	const label = /accept|agree|allow|consent|got it|i understand|okay|dismiss|close|schlie|aceptar|×|✕/i;
	for (const btn of root.querySelectorAll('button, a, [role="button"], [aria-label]')) {
		const cs = window.getComputedStyle(btn);
		if (cs.display === 'none' || cs.visibility === 'hidden') continue;
		const text = (btn.innerText || '').trim();
		const aria = btn.getAttribute('aria-label') || '';
		if (text.length > 64) continue;
		if (label.test(text) || label.test(aria)) {
			btn.click();
			return true;
		}
	}
	return false;
})()`

const clickScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.click();
	return true;
})()`

const clickByTextScript = `(() => {
	const pattern = new RegExp(%s, 'i');
	for (const btn of document.querySelectorAll('button, a, [role="button"]')) {
		const cs = window.getComputedStyle(btn);
		if (cs.display === 'none' || cs.visibility === 'hidden') continue;
		const r = btn.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) continue;
		const text = (btn.innerText || '').trim();
		if (text.length === 0 || text.length > 64) continue;
		if (pattern.test(text)) {
			btn.click();
			return true;
		}
	}
	return false;
})()`

const removeScript = `(() => {
	let count = 0;
	for (const sel of %s) {
		for (const el of document.querySelectorAll(sel)) {
			el.remove();
			count++;
		}
	}
	document.body.style.overflow = 'auto';
	document.documentElement.style.overflow = 'auto';
	return count;
})()`

const anyVisibleScript = `(() => {
	for (const sel of %s) {
		for (const el of document.querySelectorAll(sel)) {
			const cs = window.getComputedStyle(el);
			if (cs.display === 'none' || cs.visibility === 'hidden' || cs.opacity === '0') continue;
			const r = el.getBoundingClientRect();
			if (r.width > 0 && r.height > 0) return true;
		}
	}
	return false;
})()`

// jsArg renders a Go value as a JavaScript literal.
func jsArg(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// ScanStackingContext lists positioned, visible, positively z-indexed
// elements in document order.
func (t *Tab) ScanStackingContext(ctx context.Context) ([]overlay.StackEntry, error) {
	var raw []struct {
		Selector string  `json:"selector"`
		Rank     float64 `json:"rank"`
	}
	if err := t.run(ctx, chromedp.Evaluate(scanStackScript, &raw)); err != nil {
		return nil, fmt.Errorf("stacking scan: %w", err)
	}
	entries := make([]overlay.StackEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, overlay.StackEntry{Selector: e.Selector, Rank: int(e.Rank)})
	}
	return entries, nil
}

// Inspect reports one element's current state.
func (t *Tab) Inspect(ctx context.Context, selector string) (overlay.ElementState, error) {
	var state struct {
		Present   bool `json:"present"`
		Visible   bool `json:"visible"`
		Clickable bool `json:"clickable"`
		ModalLike bool `json:"modalLike"`
	}
	expr := fmt.Sprintf(inspectScript, jsArg(selector))
	if err := t.run(ctx, chromedp.Evaluate(expr, &state)); err != nil {
		return overlay.ElementState{}, fmt.Errorf("inspect %s: %w", selector, err)
	}
	return overlay.ElementState{
		Present:   state.Present,
		Visible:   state.Visible,
		Clickable: state.Clickable,
		ModalLike: state.ModalLike,
	}, nil
}

// ClickControl clicks an accept/close control inside the container, if one
// exists.
func (t *Tab) ClickControl(ctx context.Context, container string) (bool, error) {
	var clicked bool
	expr := fmt.Sprintf(clickControlScript, jsArg(container))
	if err := t.run(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, fmt.Errorf("click control in %s: %w", container, err)
	}
	return clicked, nil
}

// Click clicks the element itself.
func (t *Tab) Click(ctx context.Context, selector string) error {
	var clicked bool
	expr := fmt.Sprintf(clickScript, jsArg(selector))
	if err := t.run(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: element not found", selector)
	}
	return nil
}

// ClickByText clicks the first visible button-like element whose label
// matches the pattern. Go's case-insensitivity prefix is translated to the
// JavaScript flag.
func (t *Tab) ClickByText(ctx context.Context, pattern string) (bool, error) {
	pattern = strings.TrimPrefix(pattern, "(?i)")
	var clicked bool
	expr := fmt.Sprintf(clickByTextScript, jsArg(pattern))
	if err := t.run(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, fmt.Errorf("click by text: %w", err)
	}
	return clicked, nil
}

// PressEscape sends an escape key to the page.
func (t *Tab) PressEscape(ctx context.Context) error {
	return t.run(ctx, chromedp.KeyEvent(kb.Escape))
}

// Remove deletes every match of every selector and unlocks page scrolling,
// which consent frameworks routinely pin.
func (t *Tab) Remove(ctx context.Context, selectors []string) (int, error) {
	var count float64
	expr := fmt.Sprintf(removeScript, jsArg(selectors))
	if err := t.run(ctx, chromedp.Evaluate(expr, &count)); err != nil {
		return 0, fmt.Errorf("remove: %w", err)
	}
	return int(count), nil
}

// AnyVisible reports whether any selector still matches a visible element.
func (t *Tab) AnyVisible(ctx context.Context, selectors []string) (bool, error) {
	var visible bool
	expr := fmt.Sprintf(anyVisibleScript, jsArg(selectors))
	if err := t.run(ctx, chromedp.Evaluate(expr, &visible)); err != nil {
		return false, fmt.Errorf("visibility check: %w", err)
	}
	return visible, nil
}
