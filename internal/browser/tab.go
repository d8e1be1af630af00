package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Tab is one Chrome tab implementing the crawl pipeline's page surface.
type Tab struct {
	ctx           context.Context
	cancel        context.CancelFunc
	stabilizeWait time.Duration
	userAgent     string
	logger        *zap.Logger
}

// run executes chromedp actions on the tab while honoring the caller's
// deadline; chromedp only watches its own context chain.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	taskCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Navigate loads the URL and waits for the body to exist.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	tasks := chromedp.Tasks{network.Enable()}
	if t.userAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(t.userAgent))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	return t.run(ctx, tasks)
}

// WaitStable gives late-loading consent scripts time to inject their DOM.
// There is no reliable network-idle signal over CDP, so a fixed settle
// window stands in for one.
func (t *Tab) WaitStable(ctx context.Context) error {
	return t.run(ctx, chromedp.Sleep(t.stabilizeWait))
}

// HTML returns the current serialized document.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	var html string
	if err := t.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Screenshot captures the full page.
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := t.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close releases the tab.
func (t *Tab) Close() error {
	t.cancel()
	return nil
}
