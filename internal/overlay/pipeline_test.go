package overlay

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// TestPipelineReferencePartition replays the reference run shape: 4 static
// and 40 dynamic discoveries (44 total) partitioning into 8 high-priority
// and 36 other candidates, all attempted, ending verified.
func TestPipelineReferencePartition(t *testing.T) {
	t.Parallel()

	initialHTML := `<html><body>
		<div id="onetrust-banner-sdk">We value your privacy</div>
		<div role="dialog" id="newsletter-modal">Subscribe</div>
		<div class="cookie-notice">Cookies</div>
		<button class="signup-accept">Accept all</button>
	</body></html>`

	surface := newFakeSurface()

	// Four dynamic entries match catalog markers (high priority), the other
	// 36 are anonymous overlays.
	surface.stack = []StackEntry{
		{Selector: "#usercentrics-root", Rank: 3000},
		{Selector: ".cookie-wall", Rank: 2500},
		{Selector: "#consent-manager", Rank: 2400},
		{Selector: ".gdpr-shield", Rank: 2300},
	}
	for i := 0; i < 36; i++ {
		surface.stack = append(surface.stack, StackEntry{
			Selector: fmt.Sprintf(".layer-%02d", i),
			Rank:     1000 - i,
		})
	}

	// The consent root is resolvable and dismissable; everything else has
	// vanished by action time, which the engine treats as expected.
	surface.addVisible("#usercentrics-root", true, false)

	pipe := NewPipeline(catalog.Default(), 5, zap.NewNop())
	res, err := pipe.Run(context.Background(), surface, initialHTML)
	require.NoError(t, err)

	require.Equal(t, 4, res.StaticCount)
	require.Equal(t, 40, res.DynamicCount)
	require.Equal(t, 44, res.TotalCount)
	require.Equal(t, 8, res.HighCount)
	require.Equal(t, 36, res.OtherCount)

	// Every candidate received an outcome; fallback ran because a cookie
	// framework was discovered.
	require.True(t, res.FallbackTriggered)
	require.GreaterOrEqual(t, len(res.Actions), 44)

	nonFallback := 0
	for _, a := range res.Actions {
		if !a.Fallback {
			nonFallback++
		}
	}
	require.Equal(t, 44, nonFallback)

	require.True(t, res.VerificationPassed)
}

// TestPipelineTimingMissRecoversViaFallback covers the discovery timing
// miss: the only discovery is a consent-root id absent from the DOM at
// attempt time, and the page still ends clean through the fallback text
// path.
func TestPipelineTimingMissRecoversViaFallback(t *testing.T) {
	t.Parallel()

	initialHTML := `<html><body><div id="usercentrics-root"></div></body></html>`

	surface := newFakeSurface()
	surface.textClicks = 1 // the generic accept-text click lands

	pipe := NewPipeline(catalog.Default(), 5, zap.NewNop())
	res, err := pipe.Run(context.Background(), surface, initialHTML)
	require.NoError(t, err)

	require.Equal(t, 1, res.StaticCount)
	require.Equal(t, 0, res.DynamicCount)

	var discovered *ActionOutcome
	var fallbackRemoved bool
	for i := range res.Actions {
		a := res.Actions[i]
		if a.Selector == "#usercentrics-root" && !a.Fallback {
			discovered = &res.Actions[i]
		}
		if a.Fallback && a.ElementRemoved {
			fallbackRemoved = true
		}
	}
	require.NotNil(t, discovered)
	require.False(t, discovered.Attempted)
	require.Empty(t, discovered.Err)
	require.True(t, res.FallbackTriggered)
	require.True(t, fallbackRemoved)
	require.True(t, res.VerificationPassed)
}

func TestPipelineBadHTML(t *testing.T) {
	t.Parallel()

	// goquery tolerates malformed markup; the pipeline must not error out.
	surface := newFakeSurface()
	pipe := NewPipeline(catalog.Default(), 5, zap.NewNop())
	res, err := pipe.Run(context.Background(), surface, "<div <div><span>")
	require.NoError(t, err)
	require.Equal(t, 0, res.DynamicCount)
}
