package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NormalizeURL canonicalizes a URL so the same page never enters a crawl
// twice: lowercased scheme and host, default ports stripped, fragment
// dropped, query parameters sorted.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = u.Query().Encode()
	if u.Host != "" && u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// sameSite reports whether two hostnames belong to the same site, treating
// the www prefix as transparent.
func sameSite(a, b string) bool {
	return strings.TrimPrefix(strings.ToLower(a), "www.") ==
		strings.TrimPrefix(strings.ToLower(b), "www.")
}

// skippableExtensions are link targets that cannot render as pages.
var skippableExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".css": true, ".js": true, ".json": true,
	".xml": true, ".pdf": true, ".zip": true, ".gz": true, ".mp4": true,
	".mp3": true, ".woff": true, ".woff2": true, ".ttf": true,
}

// skippableLink reports whether a link points at a non-page asset.
func skippableLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return true
	}
	return skippableExtensions[strings.ToLower(path.Ext(u.Path))]
}
