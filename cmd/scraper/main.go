package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"courtscraper/internal/api"
	"courtscraper/internal/config"
	"courtscraper/internal/export"
	"courtscraper/internal/extract"
	"courtscraper/internal/fetch"
	"courtscraper/internal/finder"
	"courtscraper/internal/geo"
	"courtscraper/internal/monitoring"
	"courtscraper/internal/scrape"
	"courtscraper/internal/storage"
	"courtscraper/internal/worklist"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("run aborted", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// run owns every resource with a Close; returning an error instead of
// exiting lets the defers unwind.
func run(cfg *config.Config, logger *zap.Logger) error {
	zipCodes, err := worklist.Load(cfg.ZipCodesFile)
	if err != nil {
		return fmt.Errorf("could not load zip codes: %w", err)
	}

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pgStore.Close()
	redisStore := storage.NewRedisStore(cfg.RedisAddr, time.Duration(cfg.RescrapeDays)*24*time.Hour)
	defer redisStore.Close()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	resolver, err := geo.NewGoogleResolver(cfg.MapsAPIKey, logger)
	if err != nil {
		return fmt.Errorf("failed to create location resolver: %w", err)
	}

	selectors := extract.Selectors{
		SearchLink:  cfg.SearchLinkSelector,
		Container:   cfg.DetailContainer,
		Heading:     cfg.HeadingSelector,
		AnchorStack: cfg.AnchorStackSelector,
		AnchorLink:  cfg.AnchorLinkSelector,
		ImageButton: cfg.ImageButtonSelector,
		Image:       cfg.ImageSelector,
	}
	retry := fetch.RetryPolicy{
		MaxAttempts: cfg.MaxRetries + 1,
		Backoff:     fetch.LinearBackoff(time.Duration(cfg.RetryBaseDelay) * time.Second),
	}

	// Each worker gets its own browser session: one zip code's pipeline
	// runs against one session at a time.
	factory := func() (*scrape.Pipeline, func(), error) {
		session, err := fetch.NewSession(fetch.SessionOptions{
			Headless:   cfg.Headless,
			NavTimeout: time.Duration(cfg.FetchTimeout) * time.Second,
			MinSpacing: time.Duration(cfg.MinFetchSpacing) * time.Second,
		}, logger)
		if err != nil {
			return nil, nil, err
		}

		extractor := extract.New(cfg.SiteOrigin, selectors)
		courtFinder := finder.New(resolver, session, extractor, cfg.SiteOrigin, cfg.SearchRadiusM, logger)
		builder := scrape.NewBuilder(cfg.ImageDir, logger)
		coordinator := scrape.NewCoordinator(session, extractor, builder, pgStore, redisStore, retry, metrics, logger)
		return scrape.NewPipeline(courtFinder, coordinator, logger), session.Close, nil
	}

	runner := scrape.NewRunner(factory, cfg.ScrapeWorkers, logger)

	// Observability server for the duration of the run
	server := api.NewServer(cfg, runner, pgStore, redisStore, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("status server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting run",
		zap.Int("zip_codes", len(zipCodes)),
		zap.Int("workers", cfg.ScrapeWorkers))

	// An interrupt lets in-flight work finish, then flushes what we have.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output, err := runner.Run(ctx, zipCodes)
	if err != nil {
		return err
	}

	if err := export.AppendCourts(cfg.CSVFile, output.Records); err != nil {
		logger.Error("csv export failed", zap.Error(err))
	}
	if err := export.WriteStats(cfg.StatsFile, output.Stats); err != nil {
		logger.Error("stats export failed", zap.Error(err))
	}
	export.WriteSummary(os.Stdout, output.Stats)

	logger.Info("run finished",
		zap.Int("courts_scraped", output.Stats.CourtsScraped),
		zap.Int("duplicates_skipped", output.Stats.Duplicates),
		zap.Bool("interrupted", ctx.Err() != nil))
	return nil
}
