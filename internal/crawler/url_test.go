package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases host", "https://EXAMPLE.com/Path", "https://example.com/Path"},
		{"strips default https port", "https://example.com:443/", "https://example.com/"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"keeps custom port", "https://example.com:8443/", "https://example.com:8443/"},
		{"drops fragment", "https://example.com/a#section", "https://example.com/a"},
		{"sorts query", "https://example.com/?b=2&a=1", "https://example.com/?a=1&b=2"},
		{"trims whitespace", "  https://example.com/  ", "https://example.com/"},
		{"adds root slash", "https://example.com", "https://example.com/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURLInvalid(t *testing.T) {
	t.Parallel()
	_, err := NormalizeURL("http://exa mple.com/%zz")
	require.Error(t, err)
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	require.True(t, sameSite("www.example.com", "example.com"))
	require.True(t, sameSite("Example.COM", "example.com"))
	require.False(t, sameSite("blog.example.com", "example.com"))
	require.False(t, sameSite("example.org", "example.com"))
}

func TestSkippableLink(t *testing.T) {
	t.Parallel()

	require.True(t, skippableLink("https://example.com/logo.PNG"))
	require.True(t, skippableLink("https://example.com/styles.css"))
	require.True(t, skippableLink("mailto:hi@example.com"))
	require.False(t, skippableLink("https://example.com/pricing"))
	require.False(t, skippableLink("https://example.com/docs.html"))
}
