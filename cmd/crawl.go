package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/browser"
	"github.com/pagesnap/pagesnap/internal/capture"
	"github.com/pagesnap/pagesnap/internal/catalog"
	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/crawler"
	"github.com/pagesnap/pagesnap/internal/input"
	"github.com/pagesnap/pagesnap/internal/logging"
	"github.com/pagesnap/pagesnap/internal/metrics"
	"github.com/pagesnap/pagesnap/internal/overlay"
	"github.com/pagesnap/pagesnap/internal/results"
	"github.com/pagesnap/pagesnap/internal/status"
	"github.com/pagesnap/pagesnap/internal/urlstore"
)

// newCrawlCmd creates the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	var sitesFile string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the site list and capture every page",
		Long: `Reads a site list (CSV: "site_id,url" or bare URLs), crawls each site
with a pool of headless browsers, dismisses overlays, and writes screenshot
and HTML artifacts plus a JSON run summary to the output directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), sitesFile)
		},
	}

	cmd.Flags().StringVar(&sitesFile, "sites", "", "path to the site list file (required)")
	_ = cmd.MarkFlagRequired("sites")
	return cmd
}

func runCrawl(ctx context.Context, sitesFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.NewWithFile(cfg.Logging.Development, logging.FileOptions{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	sites, err := input.Load(sitesFile)
	if err != nil {
		return err
	}

	store, err := urlstore.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("close url store", zap.Error(cerr))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Store.SkipRecentHours > 0 {
		sites = filterRecent(ctx, logger, store, sites, cfg.Store.SkipRecentHours)
		if len(sites) == 0 {
			logger.Info("all sites captured recently, nothing to do")
			return nil
		}
	}

	sink, err := capture.NewFileSink(cfg.Output.Dir, cfg.Output.MaxHTMLBytes, logger)
	if err != nil {
		return err
	}

	recorder := results.NewRecorder(logger)
	logger.Info("run starting",
		zap.String("run_id", recorder.RunID()),
		zap.Int("sites", len(sites)),
		zap.Int("workers", cfg.Crawl.Workers),
	)

	if cfg.Status.Enabled {
		statusSrv := status.New(cfg.Status.Addr, recorder, logger)
		statusSrv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := statusSrv.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("status server shutdown", zap.Error(serr))
			}
		}()
	}

	orch := crawler.NewOrchestrator(
		crawler.Options{
			Workers:         cfg.Crawl.Workers,
			MaxPagesPerSite: cfg.Crawl.MaxPagesPerSite,
			PageTimeout:     cfg.Crawl.PageTimeout(),
			SiteTimeout:     cfg.Crawl.SiteTimeout(),
			GlobalTimeout:   cfg.Crawl.GlobalTimeout(),
			PagesPerSecond:  cfg.Crawl.PagesPerSecond,
		},
		browser.Factory(browser.Options{
			Headless:      cfg.Browser.Headless,
			UserAgent:     cfg.Crawl.UserAgent,
			WindowWidth:   cfg.Browser.WindowWidth,
			WindowHeight:  cfg.Browser.WindowHeight,
			StabilizeWait: cfg.Browser.StabilizeWait(),
		}, logger),
		crawler.NewCollyDiscoverer(cfg.Crawl.UserAgent, cfg.Crawl.DiscoveryMaxDepth, logger),
		sink,
		overlay.NewPipeline(catalog.Default(), cfg.Overlay.StackRankThreshold, logger),
		logger,
		recorder,
		metrics.NewObserver(),
		urlstore.NewObserver(store, logger),
	)

	failed := 0
	for res := range orch.Run(ctx, sites) {
		if res.Status == crawler.StatusFailed {
			failed++
		}
	}

	summaryPath, err := recorder.Write(cfg.Output.Dir)
	if err != nil {
		return err
	}

	snap := recorder.Snapshot()
	logger.Info("run finished",
		zap.String("summary", summaryPath),
		zap.Int("sites_succeeded", snap.SitesSucceeded),
		zap.Int("sites_partial", snap.SitesPartial),
		zap.Int("sites_failed", snap.SitesFailed),
		zap.Int("pages_succeeded", snap.PagesSucceeded),
		zap.Int("pages_total", snap.PagesTotal),
	)

	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	if failed == len(sites) {
		return errors.New("every site failed")
	}
	return nil
}

// filterRecent drops sites whose root page was successfully captured within
// the configured window.
func filterRecent(ctx context.Context, logger *zap.Logger, store *urlstore.Store, sites []crawler.Site, hours int) []crawler.Site {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	kept := sites[:0]
	for _, s := range sites {
		recent, err := store.CapturedSince(ctx, s.URL, cutoff)
		if err != nil {
			logger.Warn("recency check failed", zap.String("site", s.ID), zap.Error(err))
			kept = append(kept, s)
			continue
		}
		if recent {
			logger.Info("skipping recently captured site", zap.String("site", s.ID))
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
