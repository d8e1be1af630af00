package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileSinkWritesBothArtifacts(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	cap, err := sink.Capture(context.Background(), "example.com", "https://example.com/pricing", []byte("png-bytes"), "<html></html>")
	require.NoError(t, err)

	shot, err := os.ReadFile(cap.ScreenshotPath)
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), shot)

	html, err := os.ReadFile(cap.HTMLPath)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(html))

	require.Equal(t, "example.com", filepath.Base(filepath.Dir(cap.ScreenshotPath)))
}

func TestFileSinkRejectsEmptyScreenshot(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	_, err = sink.Capture(context.Background(), "a", "https://a.test/", nil, "<html></html>")
	require.Error(t, err)
}

func TestFileSinkEnforcesHTMLLimit(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(t.TempDir(), 4, zap.NewNop())
	require.NoError(t, err)

	_, err = sink.Capture(context.Background(), "a", "https://a.test/", []byte("png"), "<html></html>")
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds max")
}

func TestFileSinkCanceledContext(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sink.Capture(ctx, "a", "https://a.test/", []byte("png"), "x")
	require.Error(t, err)
}

func TestSlugDistinguishesCollapsingURLs(t *testing.T) {
	t.Parallel()

	// Sanitization lowercases, so these collapse to the same readable
	// prefix; the hash suffix must keep them apart.
	a := Slug("https://example.com/AB")
	b := Slug("https://example.com/ab")
	require.NotEqual(t, a, b)

	// Deterministic for the same input.
	require.Equal(t, a, Slug("https://example.com/AB"))
}

func TestSlugStaysShort(t *testing.T) {
	t.Parallel()

	long := "https://example.com/" + string(make([]byte, 500))
	require.LessOrEqual(t, len(Slug(long)), 110)
}
