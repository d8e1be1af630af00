// Package results accumulates crawl outcomes and writes the run summary.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/crawler"
)

// Summary is the JSON document describing one whole run.
type Summary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SitesTotal     int `json:"sites_total"`
	SitesSucceeded int `json:"sites_succeeded"`
	SitesPartial   int `json:"sites_partial"`
	SitesFailed    int `json:"sites_failed"`
	PagesTotal     int `json:"pages_total"`
	PagesSucceeded int `json:"pages_succeeded"`

	Sites []crawler.SiteResult `json:"sites"`
}

// Recorder collects results as workers report them. It implements the
// orchestrator's observer hook and is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	summary Summary
	logger  *zap.Logger
}

// NewRecorder starts an empty summary with a fresh run ID.
func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{
		summary: Summary{
			RunID:     uuid.NewString(),
			StartedAt: time.Now().UTC(),
		},
		logger: logger,
	}
}

// RunID identifies this run in logs and artifact names.
func (r *Recorder) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary.RunID
}

// PageDone tallies one page.
func (r *Recorder) PageDone(res crawler.PageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.PagesTotal++
	if res.Status == crawler.StatusSuccess {
		r.summary.PagesSucceeded++
	}
}

// SiteDone stores one site result.
func (r *Recorder) SiteDone(res crawler.SiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Sites = append(r.summary.Sites, res)
	r.summary.SitesTotal++
	switch res.Status {
	case crawler.StatusSuccess:
		r.summary.SitesSucceeded++
	case crawler.StatusPartial:
		r.summary.SitesPartial++
	default:
		r.summary.SitesFailed++
	}
}

// Snapshot returns a copy of the current tallies for progress reporting.
func (r *Recorder) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.summary
	s.Sites = append([]crawler.SiteResult(nil), r.summary.Sites...)
	return s
}

// Write finalizes the summary and writes run_<id>.json under dir.
func (r *Recorder) Write(dir string) (string, error) {
	r.mu.Lock()
	r.summary.FinishedAt = time.Now().UTC()
	s := r.summary
	r.mu.Unlock()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create results dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "run_"+s.RunID+".json")
	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", fmt.Errorf("write run summary %s: %w", path, err)
	}

	r.logger.Info("run summary written",
		zap.String("run_id", s.RunID),
		zap.String("path", path),
		zap.Int("sites", s.SitesTotal),
		zap.Int("pages", s.PagesTotal),
	)
	return path, nil
}
