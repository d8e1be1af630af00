// Package catalog holds the static knowledge about overlay signatures:
// which DOM shapes identify consent frameworks, modals, and accept buttons,
// and how confident each match makes us. It is pure data plus lookups so the
// discovery pipeline stays free of hardcoded conditionals.
package catalog

import (
	"regexp"
	"strings"
)

// Classification labels what kind of obstruction a selector points at.
type Classification string

// Known classifications, ordered roughly by how actionable they are.
const (
	ClassModal           Classification = "modal"
	ClassAcceptButton    Classification = "accept_button"
	ClassCookieFramework Classification = "cookie_framework"
	ClassCookieScript    Classification = "cookie_script"
	ClassOverlay         Classification = "overlay"
	ClassUnknown         Classification = "unknown"
)

// HighPriority reports whether candidates of this classification belong to
// the front of the action queue. Unmatched overlays and unknowns do not.
func (c Classification) HighPriority() bool {
	switch c {
	case ClassCookieFramework, ClassCookieScript, ClassModal, ClassAcceptButton:
		return true
	default:
		return false
	}
}

// Signature is one known overlay fingerprint. Match is the CSS selector the
// static analyzer queries against the initial DOM. Marker, when set, is a
// lowercase substring that identifies the same fingerprint inside selectors
// synthesized elsewhere (e.g. by the stacking-order scanner).
type Signature struct {
	Name           string
	Match          string
	Marker         string
	Classification Classification
	Confidence     float64
}

// Catalog bundles the signature table with the generic pattern sets used by
// the action engine's fallback, cleanup, and verification phases.
type Catalog struct {
	Signatures []Signature

	// AcceptText matches the visible label of a consent/dismiss control.
	AcceptText *regexp.Regexp

	// FallbackSelectors are tried after the discovered candidates are
	// exhausted; they cover selectors discovery never produced.
	FallbackSelectors []string

	// CleanupSelectors identify containers that get force-hidden or removed
	// during the final aggressive pass, click success or not.
	CleanupSelectors []string

	// VerificationSelectors are re-checked for visibility after handling.
	VerificationSelectors []string
}

// Default returns the built-in catalog. Callers treat it as read-only and
// share it freely across workers.
func Default() Catalog {
	return Catalog{
		Signatures: []Signature{
			// Consent-platform roots. These are the strongest signals we have.
			{Name: "usercentrics", Match: "#usercentrics-root", Marker: "usercentrics", Classification: ClassCookieFramework, Confidence: 0.98},
			{Name: "funding-choices", Match: ".fc-consent-root", Marker: "fc-consent", Classification: ClassCookieFramework, Confidence: 0.98},
			{Name: "onetrust-banner", Match: "#onetrust-banner-sdk", Marker: "onetrust", Classification: ClassCookieFramework, Confidence: 0.95},
			{Name: "onetrust-consent", Match: "#onetrust-consent-sdk", Marker: "onetrust-consent", Classification: ClassCookieFramework, Confidence: 0.95},
			{Name: "cookiebot", Match: "#cookiebot", Marker: "cookiebot", Classification: ClassCookieFramework, Confidence: 0.95},

			// Modal and dialog structure.
			{Name: "aria-modal", Match: `[aria-modal="true"]`, Classification: ClassModal, Confidence: 0.95},
			{Name: "role-dialog", Match: `[role="dialog"]`, Classification: ClassModal, Confidence: 0.90},
			{Name: "role-alertdialog", Match: `[role="alertdialog"]`, Classification: ClassModal, Confidence: 0.90},
			{Name: "data-modal", Match: "[data-modal]", Marker: "modal", Classification: ClassModal, Confidence: 0.85},
			{Name: "data-popup", Match: "[data-popup]", Marker: "popup", Classification: ClassModal, Confidence: 0.85},

			// Generic cookie/consent markup injected by consent scripts.
			{Name: "cookie-id", Match: `[id*="cookie"]`, Marker: "cookie", Classification: ClassCookieScript, Confidence: 0.95},
			{Name: "consent-id", Match: `[id*="consent"]`, Marker: "consent", Classification: ClassCookieScript, Confidence: 0.95},
			{Name: "cookie-class", Match: `[class*="cookie"]`, Classification: ClassCookieScript, Confidence: 0.90},
			{Name: "consent-class", Match: `[class*="consent"]`, Classification: ClassCookieScript, Confidence: 0.90},
			{Name: "gdpr-class", Match: `[class*="gdpr"]`, Marker: "gdpr", Classification: ClassCookieScript, Confidence: 0.90},

			// Explicit accept controls.
			{Name: "accept-button-class", Match: `button[class*="accept"]`, Marker: "accept", Classification: ClassAcceptButton, Confidence: 0.85},
		},

		AcceptText: regexp.MustCompile(`(?i)\b(accept( all)?( cookies)?|agree|allow( all)?|got it|i understand|i accept|okay?|yes|continue|consent)\b`),

		FallbackSelectors: []string{
			"#onetrust-accept-btn-handler",
			"#usercentrics-root button",
			`button[class*="accept"]`,
			`button[class*="agree"]`,
			`button[class*="allow"]`,
			`button[id*="accept"]`,
			`[data-testid*="accept"]`,
			`[aria-label*="accept"]`,
			`button[class*="close"]`,
			`button[class*="dismiss"]`,
		},

		CleanupSelectors: []string{
			"#onetrust-banner-sdk",
			"#onetrust-pc-sdk",
			"#onetrust-consent-sdk",
			`[id*="onetrust"]`,
			`[class*="onetrust-banner"]`,
			"#cookiebot",
			"#usercentrics-root",
			".fc-consent-root",
			`[class*="cookie-banner"]`,
			`[class*="consent-banner"]`,
			`[class*="cookie-notice"]`,
			".modal-backdrop",
			".popup-overlay",
		},

		VerificationSelectors: []string{
			"#onetrust-banner-sdk",
			`[id*="onetrust"]`,
			"#usercentrics-root",
			".fc-consent-root",
			`[class*="cookie-banner"]`,
			`[class*="consent-banner"]`,
			`[role="dialog"]`,
			`[aria-modal="true"]`,
		},
	}
}

// Classify matches a synthesized selector (typically an #id or .class from
// the stacking-order scan) against the signature markers. The first marker
// hit wins; signatures without a marker only match via their CSS selector.
func (c Catalog) Classify(selector string) (Signature, bool) {
	lower := strings.ToLower(selector)
	for _, sig := range c.Signatures {
		if sig.Marker == "" {
			continue
		}
		if strings.Contains(lower, sig.Marker) {
			return sig, true
		}
	}
	return Signature{}, false
}

// MandatesFallback reports whether any discovered classification forces the
// fallback pass to run even if a candidate action already removed an
// element. Consent frameworks get this treatment: their banners are known to
// survive a successful-looking click.
func (c Catalog) MandatesFallback(found []Classification) bool {
	for _, cls := range found {
		if cls == ClassCookieFramework {
			return true
		}
	}
	return false
}
