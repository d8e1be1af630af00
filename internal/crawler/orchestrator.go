package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pagesnap/pagesnap/internal/overlay"
)

// Observer receives completed results as they are produced. Implementations
// must be safe for concurrent use; workers call them directly.
type Observer interface {
	PageDone(PageResult)
	SiteDone(SiteResult)
}

// Options tune the orchestrator. Zero values fall back to safe defaults in
// NewOrchestrator.
type Options struct {
	Workers         int
	MaxPagesPerSite int
	PageTimeout     time.Duration
	SiteTimeout     time.Duration
	GlobalTimeout   time.Duration
	PagesPerSecond  float64
}

// Orchestrator fans sites out to a fixed pool of workers. Each worker owns
// one browser for its whole lifetime; results flow back over a channel, so
// no crawl state is shared between workers.
type Orchestrator struct {
	opts      Options
	factory   BrowserFactory
	discover  Discoverer
	capture   Capturer
	pipeline  *overlay.Pipeline
	limiter   *rate.Limiter
	observers []Observer
	logger    *zap.Logger
}

// NewOrchestrator wires the crawl pipeline together.
func NewOrchestrator(
	opts Options,
	factory BrowserFactory,
	discover Discoverer,
	capture Capturer,
	pipeline *overlay.Pipeline,
	logger *zap.Logger,
	observers ...Observer,
) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxPagesPerSite < 1 {
		opts.MaxPagesPerSite = 1
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 60 * time.Second
	}
	if opts.SiteTimeout <= 0 {
		opts.SiteTimeout = 5 * time.Minute
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.PagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.PagesPerSecond), 1)
	}
	return &Orchestrator{
		opts:      opts,
		factory:   factory,
		discover:  discover,
		capture:   capture,
		pipeline:  pipeline,
		limiter:   limiter,
		observers: observers,
		logger:    logger,
	}
}

// Run processes sites and streams one SiteResult per input site. The
// returned channel closes when every site has been accounted for. A site
// failure never stops the run; only the global budget or ctx can.
func (o *Orchestrator) Run(ctx context.Context, sites []Site) <-chan SiteResult {
	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.opts.GlobalTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.opts.GlobalTimeout)
	}

	tasks := make(chan Site)
	out := make(chan SiteResult, len(sites))

	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			o.worker(runCtx, id, tasks, out)
		}(i)
	}

	go func() {
		defer close(tasks)
		for _, s := range sites {
			select {
			case tasks <- s:
			case <-runCtx.Done():
				// Remaining sites still get a result so the run summary
				// accounts for every input.
				o.emit(out, SiteResult{
					Site:   s.ID,
					URL:    s.URL,
					Status: StatusFailed,
					Error:  TimeoutError(runCtx.Err()).Error(),
				})
			}
		}
	}()

	go func() {
		wg.Wait()
		cancel()
		close(out)
	}()

	return out
}

// worker holds exactly one browser and processes sites serially. Losing the
// browser fails the current site only; a fresh one is created for the next.
func (o *Orchestrator) worker(ctx context.Context, id int, tasks <-chan Site, out chan<- SiteResult) {
	log := o.logger.With(zap.Int("worker", id))

	var browser Browser
	defer func() {
		if browser != nil {
			if err := browser.Close(); err != nil {
				log.Warn("browser close failed", zap.Error(err))
			}
		}
	}()

	for site := range tasks {
		if browser == nil {
			var err error
			browser, err = o.factory(ctx)
			if err != nil {
				log.Error("browser launch failed", zap.String("site", site.ID), zap.Error(err))
				o.emit(out, SiteResult{Site: site.ID, URL: site.URL, Status: StatusFailed, Error: err.Error()})
				continue
			}
		}

		res := o.crawlSite(ctx, log, browser, site)
		if res.Status == StatusFailed && res.Error != "" {
			// A failed site may have poisoned the browser; rebuild it before
			// the next site rather than risk cascading failures.
			if err := browser.Close(); err != nil {
				log.Warn("browser close failed", zap.Error(err))
			}
			browser = nil
		}
		o.emit(out, res)
	}
}

func (o *Orchestrator) emit(out chan<- SiteResult, res SiteResult) {
	for _, obs := range o.observers {
		obs.SiteDone(res)
	}
	out <- res
}

// crawlSite runs discovery and the per-page loop under the site budget.
func (o *Orchestrator) crawlSite(ctx context.Context, log *zap.Logger, browser Browser, site Site) SiteResult {
	started := time.Now()
	res := SiteResult{Site: site.ID, URL: site.URL}

	siteCtx, cancel := context.WithTimeout(ctx, o.opts.SiteTimeout)
	defer cancel()

	log.Info("site started", zap.String("site", site.ID), zap.String("url", site.URL))

	pages, err := o.discover.Discover(siteCtx, site.URL, o.opts.MaxPagesPerSite)
	if err != nil {
		res.Error = err.Error()
		res.finalize(started)
		log.Error("site discovery failed", zap.String("site", site.ID), zap.Error(err))
		return res
	}

	for _, pageURL := range pages {
		if err := o.limiter.Wait(siteCtx); err != nil {
			res.Error = TimeoutError(err).Error()
			break
		}

		pr := o.crawlPage(siteCtx, log, browser, site, pageURL)
		for _, obs := range o.observers {
			obs.PageDone(pr)
		}
		res.Pages = append(res.Pages, pr)

		if siteCtx.Err() != nil {
			res.Error = TimeoutError(siteCtx.Err()).Error()
			break
		}
	}

	res.finalize(started)
	log.Info("site finished",
		zap.String("site", site.ID),
		zap.String("status", string(res.Status)),
		zap.Int("pages", len(res.Pages)),
		zap.Float64("elapsed_s", res.ElapsedSeconds),
	)
	return res
}

// crawlPage navigates, runs the overlay pipeline, and captures. Every error
// is absorbed into the PageResult; the page is success iff capture
// succeeded, regardless of how overlay handling went.
func (o *Orchestrator) crawlPage(ctx context.Context, log *zap.Logger, browser Browser, site Site, pageURL string) PageResult {
	pr := PageResult{URL: pageURL, Status: StatusFailed}

	pageCtx, cancel := context.WithTimeout(ctx, o.opts.PageTimeout)
	defer cancel()

	page, err := browser.NewPage(pageCtx)
	if err != nil {
		return failPage(pr, classifyPageErr(pageCtx, err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Debug("page close failed", zap.String("url", pageURL), zap.Error(err))
		}
	}()

	if err := page.Navigate(pageCtx, pageURL); err != nil {
		return failPage(pr, classifyPageErr(pageCtx, NavigationError(err)))
	}

	initialHTML, err := page.HTML(pageCtx)
	if err != nil {
		return failPage(pr, classifyPageErr(pageCtx, err))
	}

	if err := page.WaitStable(pageCtx); err != nil {
		return failPage(pr, classifyPageErr(pageCtx, err))
	}

	pipeRes, err := o.pipeline.Run(pageCtx, page, initialHTML)
	if err != nil {
		// Overlay handling died mid-flight. Capture is still attempted; only
		// its own failure fails the page.
		log.Warn("overlay pipeline aborted", zap.String("url", pageURL), zap.Error(err))
	}
	pr.Discovery = Discovery{
		StaticCount:  pipeRes.StaticCount,
		DynamicCount: pipeRes.DynamicCount,
		TotalCount:   pipeRes.TotalCount,
	}
	pr.Handling = Handling{
		HighPriorityCount:   pipeRes.HighCount,
		OtherCount:          pipeRes.OtherCount,
		Actions:             pipeRes.Actions,
		CleanupRemovedCount: pipeRes.CleanupRemovedCount,
		VerificationPassed:  pipeRes.VerificationPassed,
	}

	shot, err := page.Screenshot(pageCtx)
	if err != nil {
		return failPage(pr, classifyPageErr(pageCtx, CaptureError(err)))
	}
	finalHTML, err := page.HTML(pageCtx)
	if err != nil {
		return failPage(pr, classifyPageErr(pageCtx, CaptureError(err)))
	}

	capture, err := o.capture.Capture(pageCtx, site.ID, pageURL, shot, finalHTML)
	if err != nil {
		return failPage(pr, classifyPageErr(pageCtx, CaptureError(err)))
	}

	pr.Capture = capture
	pr.Status = StatusSuccess
	log.Info("page captured",
		zap.String("url", pageURL),
		zap.Int("overlays", pr.Discovery.TotalCount),
		zap.Bool("verified", pr.Handling.VerificationPassed),
	)
	return pr
}

func failPage(pr PageResult, err error) PageResult {
	pr.Status = StatusFailed
	pr.Reason = FailureReason(err)
	pr.Error = err.Error()
	return pr
}

// classifyPageErr upgrades deadline blowups to the timeout kind so the
// recorded reason reflects the budget, not whatever call happened to be in
// flight when it expired.
func classifyPageErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return TimeoutError(err)
	}
	return err
}
