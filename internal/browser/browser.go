// Package browser binds the crawl pipeline to headless Chrome via chromedp.
// One Chrome process per worker; tabs are cheap and short-lived.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// Options configure a Chrome instance.
type Options struct {
	Headless      bool
	UserAgent     string
	WindowWidth   int
	WindowHeight  int
	StabilizeWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.WindowWidth <= 0 {
		o.WindowWidth = 1440
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = 900
	}
	if o.StabilizeWait <= 0 {
		o.StabilizeWait = 2 * time.Second
	}
	return o
}

// Chrome owns one browser process and mints tabs from it.
type Chrome struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opts          Options
	logger        *zap.Logger
}

// New launches a Chrome process and warms it up. ctx bounds the launch, not
// the browser lifetime.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*Chrome, error) {
	opts = opts.withDefaults()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("mute-audio", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	warmup, cancelWarmup := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancelWarmup()
	if err := chromedp.Run(warmup); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chrome warmup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &Chrome{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
		logger:        logger,
	}, nil
}

// Factory adapts New to the orchestrator's per-worker browser hook.
func Factory(opts Options, logger *zap.Logger) crawler.BrowserFactory {
	return func(ctx context.Context) (crawler.Browser, error) {
		return New(ctx, opts, logger)
	}
}

// NewPage opens a fresh tab.
func (c *Chrome) NewPage(ctx context.Context) (crawler.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	return &Tab{
		ctx:           tabCtx,
		cancel:        tabCancel,
		stabilizeWait: c.opts.StabilizeWait,
		userAgent:     c.opts.UserAgent,
		logger:        c.logger,
	}, nil
}

// Close tears the browser process down.
func (c *Chrome) Close() error {
	c.browserCancel()
	c.allocCancel()
	return nil
}
