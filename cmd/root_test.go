package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	require.Equal(t, "pagesnap", root.Use)
	require.NotNil(t, root.PersistentFlags().Lookup("config"))

	crawl, _, err := root.Find([]string{"crawl"})
	require.NoError(t, err)
	require.Equal(t, "crawl", crawl.Use)
	require.NotNil(t, crawl.Flags().Lookup("sites"))
}

func TestCrawlRequiresSitesFlag(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	root.SetArgs([]string{"crawl"})
	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "sites")
}
