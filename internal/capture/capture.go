// Package capture persists rendered pages to local disk, one screenshot and
// one HTML snapshot per page, grouped per site.
package capture

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// FileSink writes capture artifacts beneath a root directory:
//
//	<root>/<site>/<slug>.png
//	<root>/<site>/<slug>.html
//
// The slug is URL-derived and suffixed with a short hash so distinct pages
// never collide after sanitization.
type FileSink struct {
	root     string
	maxBytes int64
	logger   *zap.Logger
}

// NewFileSink creates the root directory up front so permission problems
// surface at startup, not mid-crawl. maxBytes bounds a single HTML snapshot;
// zero means unlimited.
func NewFileSink(root string, maxBytes int64, logger *zap.Logger) (*FileSink, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create capture dir %s: %w", root, err)
	}
	return &FileSink{root: root, maxBytes: maxBytes, logger: logger}, nil
}

// Capture writes both artifacts and returns their paths. A page with an
// empty screenshot is rejected; an empty HTML snapshot is not, since some
// pages legitimately serialize small.
func (s *FileSink) Capture(ctx context.Context, site, pageURL string, screenshot []byte, html string) (crawler.Capture, error) {
	if err := ctx.Err(); err != nil {
		return crawler.Capture{}, fmt.Errorf("capture canceled: %w", err)
	}
	if len(screenshot) == 0 {
		return crawler.Capture{}, fmt.Errorf("empty screenshot for %s", pageURL)
	}
	if s.maxBytes > 0 && int64(len(html)) > s.maxBytes {
		return crawler.Capture{}, fmt.Errorf("html snapshot %d bytes exceeds max %d", len(html), s.maxBytes)
	}

	dir := filepath.Join(s.root, sanitizeComponent(site))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return crawler.Capture{}, fmt.Errorf("create site dir %s: %w", dir, err)
	}

	slug := Slug(pageURL)
	shotPath := filepath.Join(dir, slug+".png")
	htmlPath := filepath.Join(dir, slug+".html")

	if err := os.WriteFile(shotPath, screenshot, 0o600); err != nil {
		return crawler.Capture{}, fmt.Errorf("write screenshot %s: %w", shotPath, err)
	}
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return crawler.Capture{}, fmt.Errorf("write html %s: %w", htmlPath, err)
	}

	s.logger.Debug("page captured",
		zap.String("url", pageURL),
		zap.String("screenshot", shotPath),
	)
	return crawler.Capture{ScreenshotPath: shotPath, HTMLPath: htmlPath}, nil
}

// Slug derives a stable, filesystem-safe name from a page URL. The readable
// prefix keeps directories browsable; the hash suffix keeps names unique
// even when sanitization collapses different URLs.
func Slug(pageURL string) string {
	readable := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		readable = u.Host + u.Path
		if u.RawQuery != "" {
			readable += "_" + u.RawQuery
		}
	}
	readable = sanitizeComponent(readable)
	if len(readable) > 100 {
		readable = readable[:100]
	}
	sum := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("%s_%x", readable, sum[:4])
}

func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
