package scrape

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"courtscraper/internal/domain"
	"courtscraper/internal/extract"
	"courtscraper/internal/fetch"
	"courtscraper/internal/monitoring"
)

// Store is the durable court store as seen from the coordinator.
type Store interface {
	AddressExists(ctx context.Context, address string) (bool, error)
	Insert(ctx context.Context, record *domain.CourtRecord) (int64, error)
}

// RecentGuard suppresses re-scraping of detail URLs visited within the
// dedup window of a previous run. A nil guard disables the check.
type RecentGuard interface {
	IsRecentlyScraped(ctx context.Context, url string) (bool, error)
	MarkScraped(ctx context.Context, url string) error
}

// Outcome classifies the terminal state of one detail URL.
type Outcome int

const (
	// OutcomeFailed covers invalid input, exhausted fetch retries and
	// blocked pages; the URL produced nothing.
	OutcomeFailed Outcome = iota
	// OutcomeSkipped means the court is already known; no record built.
	OutcomeSkipped
	// OutcomeSaved means a record was built and persisted.
	OutcomeSaved
	// OutcomeUnsaved means a record was built but the insert failed; the
	// record is still handed back for flat-file export.
	OutcomeUnsaved
)

// Result is the terminal state of one detail URL plus the record, when
// one was built.
type Result struct {
	URL     string
	Outcome Outcome
	Record  *domain.CourtRecord
}

// Coordinator drives one detail URL through validation, fetch with
// retry, extraction, duplicate check, record construction and
// persistence. No failure on one URL escapes to the caller; everything
// terminal is expressed in the Result.
type Coordinator struct {
	fetcher   fetch.Fetcher
	extractor *extract.Extractor
	builder   *Builder
	store     Store
	guard     RecentGuard
	retry     fetch.RetryPolicy
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewCoordinator(
	fetcher fetch.Fetcher,
	extractor *extract.Extractor,
	builder *Builder,
	store Store,
	guard RecentGuard,
	retry fetch.RetryPolicy,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		fetcher:   fetcher,
		extractor: extractor,
		builder:   builder,
		store:     store,
		guard:     guard,
		retry:     retry,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessURL runs the per-URL state machine to a terminal state.
func (c *Coordinator) ProcessURL(ctx context.Context, url string) Result {
	if !validURL(url) {
		c.logger.Warn("invalid detail url", zap.String("url", url))
		c.metrics.IncErrorsTotal("invalid_url")
		return Result{URL: url, Outcome: OutcomeFailed}
	}

	if c.guard != nil {
		recent, err := c.guard.IsRecentlyScraped(ctx, url)
		if err != nil {
			c.logger.Error("recent-scrape check failed", zap.String("url", url), zap.Error(err))
		}
		if recent {
			c.logger.Info("skipping recently scraped url", zap.String("url", url))
			c.metrics.DuplicatesSkipped.Inc()
			return Result{URL: url, Outcome: OutcomeSkipped}
		}
	}

	page, err := fetch.WithRetry(ctx, c.fetcher, url, c.retry, c.logger)
	if err != nil {
		c.logger.Warn("detail page fetch failed", zap.String("url", url), zap.Error(err))
		c.metrics.IncErrorsTotal("fetch_failed")
		return Result{URL: url, Outcome: OutcomeFailed}
	}
	if page == nil {
		c.logger.Warn("detail page blocked", zap.String("url", url))
		c.metrics.IncErrorsTotal("blocked")
		return Result{URL: url, Outcome: OutcomeFailed}
	}
	c.metrics.PagesFetched.Inc()

	heading := c.safeHeading(page.HTML, url)
	anchors := c.safeAnchors(page.HTML, url)

	// The address gates everything downstream: a known address means the
	// expensive image step never runs.
	address := deriveAddress(anchors)
	if address != "" {
		exists, err := c.store.AddressExists(ctx, address)
		if err != nil {
			// Treat an unreachable store as "not a duplicate"; the insert
			// itself will surface a real problem later.
			c.logger.Error("duplicate check failed", zap.String("address", address), zap.Error(err))
		} else if exists {
			c.logger.Info("skipping known court",
				zap.String("url", url),
				zap.String("address", address))
			c.metrics.DuplicatesSkipped.Inc()
			c.markScraped(ctx, url)
			return Result{URL: url, Outcome: OutcomeSkipped}
		}
	}

	imageURL := c.safeImage(page.HTML, url)
	record := c.builder.Build(ctx, heading, anchors, imageURL)

	if _, err := c.store.Insert(ctx, record); err != nil {
		c.logger.Error("court insert failed", zap.String("url", url), zap.Error(err))
		c.metrics.IncErrorsTotal("db_save_failed")
		return Result{URL: url, Outcome: OutcomeUnsaved, Record: record}
	}

	c.logger.Info("court saved",
		zap.String("url", url),
		zap.String("name", record.Name))
	c.metrics.CourtsSaved.Inc()
	c.markScraped(ctx, url)
	return Result{URL: url, Outcome: OutcomeSaved, Record: record}
}

func (c *Coordinator) markScraped(ctx context.Context, url string) {
	if c.guard == nil {
		return
	}
	if err := c.guard.MarkScraped(ctx, url); err != nil {
		c.logger.Error("failed to mark url as scraped", zap.String("url", url), zap.Error(err))
	}
}

func (c *Coordinator) safeHeading(html, url string) string {
	heading, err := c.extractor.HeadingText(html)
	if err != nil {
		c.logger.Warn("heading extraction failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return heading
}

func (c *Coordinator) safeAnchors(html, url string) []domain.LabeledAnchor {
	anchors, err := c.extractor.LabeledAnchors(html)
	if err != nil {
		c.logger.Warn("anchor extraction failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return anchors
}

func (c *Coordinator) safeImage(html, url string) string {
	src, err := c.extractor.ImageReference(html)
	if err != nil {
		c.logger.Warn("image extraction failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return src
}

// deriveAddress picks the anchor most likely to carry the street address.
// Slot 0 usually is the address but is not guaranteed to be, so an anchor
// naming itself wins, then the first one with enough text to be a street
// address.
func deriveAddress(anchors []domain.LabeledAnchor) string {
	for _, a := range anchors {
		if strings.Contains(strings.ToLower(a.Text), "address") {
			return a.Text
		}
	}
	for _, a := range anchors {
		if len(a.Text) > 10 {
			return a.Text
		}
	}
	return ""
}

func validURL(url string) bool {
	return (strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) && len(url) > 10
}
