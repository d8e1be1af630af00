package crawler

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the crawl taxonomy. Page-level failures wrap one
// of these so the orchestrator can classify a failure reason without string
// matching; anything unrecognized is treated as a page-level failure too,
// never propagated past the page loop.
var (
	// ErrNavigation covers DNS, connect, and redirect failures.
	ErrNavigation = errors.New("navigation failed")

	// ErrTimeout marks a page or site budget being exceeded.
	ErrTimeout = errors.New("budget exceeded")

	// ErrCapture covers screenshot or DOM-serialization failures.
	ErrCapture = errors.New("capture failed")

	// ErrConfig is fatal at startup and the only kind allowed to abort
	// before any crawling starts.
	ErrConfig = errors.New("invalid configuration")
)

// NavigationError wraps err as a navigation failure.
func NavigationError(err error) error {
	return fmt.Errorf("%w: %w", ErrNavigation, err)
}

// TimeoutError wraps err as a budget overrun.
func TimeoutError(err error) error {
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}

// CaptureError wraps err as a capture failure.
func CaptureError(err error) error {
	return fmt.Errorf("%w: %w", ErrCapture, err)
}

// ConfigError wraps err as a fatal configuration problem.
func ConfigError(err error) error {
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// FailureReason maps an error to the reason recorded on a PageResult.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNavigation):
		return "navigation"
	case errors.Is(err, ErrCapture):
		return "capture"
	default:
		return "error"
	}
}
