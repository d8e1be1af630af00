package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagesnap/pagesnap/internal/overlay"
)

// fakeBrowser hands out fakePages and records lifecycle calls.
type fakeBrowser struct {
	mu       sync.Mutex
	pages    map[string]*fakePage
	newPages int
	closed   bool
	pageErr  error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{pages: map[string]*fakePage{}}
}

// pageFor pre-registers behavior for a URL before the crawl touches it.
func (b *fakeBrowser) pageFor(url string) *fakePage {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pages[url]
	if !ok {
		p = &fakePage{browser: b, html: "<html><body>ok</body></html>", shot: []byte("png")}
		b.pages[url] = p
	}
	return p
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	b.newPages++
	return &fakePage{browser: b, html: "<html><body>ok</body></html>", shot: []byte("png")}, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// fakePage is a scriptable Page. Navigate swaps in any behavior registered
// for the target URL so a single NewPage result can fail per-URL.
type fakePage struct {
	browser *fakeBrowser

	html    string
	shot    []byte
	navErr  error
	htmlErr error
	shotErr error
	stack   []overlay.StackEntry

	closed bool
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if p.browser != nil {
		p.browser.mu.Lock()
		if scripted, ok := p.browser.pages[url]; ok {
			p.html = scripted.html
			p.shot = scripted.shot
			p.navErr = scripted.navErr
			p.htmlErr = scripted.htmlErr
			p.shotErr = scripted.shotErr
			p.stack = scripted.stack
		}
		p.browser.mu.Unlock()
	}
	return p.navErr
}

func (p *fakePage) WaitStable(ctx context.Context) error { return ctx.Err() }

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return p.shot, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.html, nil
}

func (p *fakePage) ScanStackingContext(ctx context.Context) ([]overlay.StackEntry, error) {
	return p.stack, nil
}

func (p *fakePage) Inspect(ctx context.Context, selector string) (overlay.ElementState, error) {
	return overlay.ElementState{}, nil
}

func (p *fakePage) ClickControl(ctx context.Context, container string) (bool, error) {
	return false, nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error { return nil }

func (p *fakePage) ClickByText(ctx context.Context, pattern string) (bool, error) {
	return false, nil
}

func (p *fakePage) PressEscape(ctx context.Context) error { return nil }

func (p *fakePage) Remove(ctx context.Context, selectors []string) (int, error) { return 0, nil }

func (p *fakePage) AnyVisible(ctx context.Context, selectors []string) (bool, error) {
	return false, nil
}

// fakeDiscoverer returns canned page lists keyed by root URL.
type fakeDiscoverer struct {
	pages map[string][]string
	err   error
	block bool
}

func (d *fakeDiscoverer) Discover(ctx context.Context, rootURL string, maxPages int) ([]string, error) {
	if d.block {
		<-ctx.Done()
		return nil, TimeoutError(ctx.Err())
	}
	if d.err != nil {
		return nil, d.err
	}
	if pages, ok := d.pages[rootURL]; ok {
		if len(pages) > maxPages {
			pages = pages[:maxPages]
		}
		return pages, nil
	}
	return []string{rootURL}, nil
}

// fakeCapturer records captures and can fail per URL.
type fakeCapturer struct {
	mu       sync.Mutex
	captured []string
	failURLs map[string]bool
}

func (c *fakeCapturer) Capture(ctx context.Context, site, pageURL string, screenshot []byte, html string) (Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failURLs[pageURL] {
		return Capture{}, fmt.Errorf("disk full")
	}
	c.captured = append(c.captured, pageURL)
	return Capture{
		ScreenshotPath: "shots/" + site + ".png",
		HTMLPath:       "html/" + site + ".html",
	}, nil
}

// countingObserver tallies callbacks.
type countingObserver struct {
	mu    sync.Mutex
	pages int
	sites int
}

func (o *countingObserver) PageDone(PageResult) {
	o.mu.Lock()
	o.pages++
	o.mu.Unlock()
}

func (o *countingObserver) SiteDone(SiteResult) {
	o.mu.Lock()
	o.sites++
	o.mu.Unlock()
}
