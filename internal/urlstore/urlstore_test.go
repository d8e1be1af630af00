package urlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestStoreRecordAndQuery(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordPage(ctx, "a.test", "https://a.test/", crawler.StatusSuccess, ""))
	require.NoError(t, store.RecordPage(ctx, "a.test", "https://a.test/x", crawler.StatusFailed, "navigation"))

	got, err := store.CapturedSince(ctx, "https://a.test/", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, got)

	// Failed pages do not count as captured.
	got, err = store.CapturedSince(ctx, "https://a.test/x", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.False(t, got)

	// A cutoff in the future excludes everything.
	got, err = store.CapturedSince(ctx, "https://a.test/", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.False(t, got)

	n, err := store.PageCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestStoreUpsertReplacesStatus(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordPage(ctx, "a.test", "https://a.test/", crawler.StatusFailed, "timeout"))
	require.NoError(t, store.RecordPage(ctx, "a.test", "https://a.test/", crawler.StatusSuccess, ""))

	got, err := store.CapturedSince(ctx, "https://a.test/", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, got)

	n, err := store.PageCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestObserverRecordsResults(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	obs := NewObserver(store, zap.NewNop())

	obs.PageDone(crawler.PageResult{URL: "https://a.test/pricing", Status: crawler.StatusSuccess})
	obs.SiteDone(crawler.SiteResult{Site: "a.test", Status: crawler.StatusSuccess, Pages: []crawler.PageResult{{}}})

	got, err := store.CapturedSince(context.Background(), "https://a.test/pricing", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, got)
}

func TestSiteOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a.test", siteOf("https://a.test/x"))
	require.Equal(t, "unknown", siteOf("not-a-url"))
}
