package overlay

import (
	"context"
	"fmt"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// Verify re-scans the page for any visible element matching a verification
// signature. Purely observational: it never retries handling, and capture
// proceeds whatever it reports. Calling it twice without DOM mutation yields
// the same answer.
func Verify(ctx context.Context, surface Surface, cat catalog.Catalog) (bool, error) {
	visible, err := surface.AnyVisible(ctx, cat.VerificationSelectors)
	if err != nil {
		return false, fmt.Errorf("verification scan: %w", err)
	}
	return !visible, nil
}
