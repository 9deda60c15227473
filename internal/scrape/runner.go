package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"courtscraper/internal/domain"
)

// CourtFinder resolves one zip code to detail-page URLs, duplicates
// included.
type CourtFinder interface {
	FindCourtURLs(ctx context.Context, zipCode string) []string
}

// URLSet tracks the detail URLs already claimed during this run, across
// all workers. Each detail page is visited at most once per run no
// matter how many zip codes list it.
type URLSet struct {
	mu sync.Mutex
	m  map[string]struct{}
}

func NewURLSet() *URLSet {
	return &URLSet{m: make(map[string]struct{})}
}

// Claim returns true the first time a URL is seen.
func (s *URLSet) Claim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[url]; ok {
		return false
	}
	s.m[url] = struct{}{}
	return true
}

// ZipResult is everything one zip code produced: the built records
// (saved or not) and the immutable per-zip counters.
type ZipResult struct {
	Records []*domain.CourtRecord
	Stats   domain.ZipStats
}

// Pipeline processes one zip code end to end. A pipeline owns exactly
// one browser session and serves one zip at a time.
type Pipeline struct {
	finder CourtFinder
	coord  *Coordinator
	logger *zap.Logger
}

func NewPipeline(f CourtFinder, c *Coordinator, logger *zap.Logger) *Pipeline {
	return &Pipeline{finder: f, coord: c, logger: logger}
}

// ProcessZip finds and scrapes every court for a zip code. URLs already
// claimed by this or another worker are not revisited.
func (p *Pipeline) ProcessZip(ctx context.Context, zipCode string, visited *URLSet) ZipResult {
	p.logger.Info("processing zip code", zap.String("zip", zipCode))

	stats := domain.ZipStats{ZipCode: zipCode}
	urls := p.finder.FindCourtURLs(ctx, zipCode)
	stats.URLsFound = len(urls)

	if len(urls) == 0 {
		p.logger.Info("no courts found", zap.String("zip", zipCode))
		return ZipResult{Stats: stats}
	}

	var unique []string
	for _, url := range urls {
		if visited.Claim(url) {
			unique = append(unique, url)
		}
	}
	stats.UniqueURLs = len(unique)

	var records []*domain.CourtRecord
	for i, url := range unique {
		if ctx.Err() != nil {
			p.logger.Warn("run cancelled, flushing partial zip results",
				zap.String("zip", zipCode))
			break
		}
		p.logger.Info("processing court",
			zap.String("zip", zipCode),
			zap.Int("index", i+1),
			zap.Int("total", len(unique)),
			zap.String("url", url))

		result := p.coord.ProcessURL(ctx, url)
		switch result.Outcome {
		case OutcomeSkipped:
			stats.DuplicatesSkipped++
		case OutcomeSaved, OutcomeUnsaved:
			stats.CourtsScraped++
			if result.Record.HasCompleteInfo() {
				stats.CompleteInfo++
			}
			if result.Record.HasImage() {
				stats.WithImage++
			}
			records = append(records, result.Record)
		}
	}

	p.logger.Info("zip code completed",
		zap.String("zip", zipCode),
		zap.Int("scraped", stats.CourtsScraped),
		zap.Int("duplicates", stats.DuplicatesSkipped))
	return ZipResult{Records: records, Stats: stats}
}

// PipelineFactory builds a pipeline bound to a fresh browser session and
// returns it with its cleanup function. Called once per worker.
type PipelineFactory func() (*Pipeline, func(), error)

// Runner fans zip codes out over a bounded pool of workers, one pipeline
// (and browser session) each, and reduces completed results into a
// single output. Output ordering follows completion, not submission.
type Runner struct {
	factory PipelineFactory
	workers int
	logger  *zap.Logger

	mu      sync.Mutex
	current domain.RunStats
}

func NewRunner(factory PipelineFactory, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{factory: factory, workers: workers, logger: logger}
}

// RunOutput is the merged result of a whole run. Partial on
// cancellation; whatever completed is kept.
type RunOutput struct {
	Records []*domain.CourtRecord
	Stats   domain.RunStats
}

// Run processes all zip codes. Only a pipeline construction failure (a
// browser session that will not start) aborts the run; everything else
// degrades per unit.
func (r *Runner) Run(ctx context.Context, zipCodes []string) (*RunOutput, error) {
	jobs := make(chan string)
	results := make(chan ZipResult)
	visited := NewURLSet()

	workers := r.workers
	if workers > len(zipCodes) && len(zipCodes) > 0 {
		workers = len(zipCodes)
	}

	pipelines := make([]*Pipeline, 0, workers)
	cleanups := make([]func(), 0, workers)
	defer func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()
	for i := 0; i < workers; i++ {
		pipeline, cleanup, err := r.factory()
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, pipeline)
		cleanups = append(cleanups, cleanup)
	}

	var wg sync.WaitGroup
	for _, pipeline := range pipelines {
		wg.Add(1)
		go func(p *Pipeline) {
			defer wg.Done()
			for zip := range jobs {
				results <- p.ProcessZip(ctx, zip, visited)
				if ctx.Err() != nil {
					return
				}
			}
		}(pipeline)
	}

	go func() {
		defer close(jobs)
		for _, zip := range zipCodes {
			select {
			case jobs <- zip:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	output := &RunOutput{}
	for result := range results {
		r.mu.Lock()
		r.current.Merge(result.Stats)
		for _, record := range result.Records {
			output.Records = append(output.Records, record)
			r.current.Report(record)
		}
		r.mu.Unlock()
	}
	r.mu.Lock()
	output.Stats = r.current
	r.mu.Unlock()
	return output, nil
}

// Snapshot returns a copy of the statistics reduced so far, for the
// run-status endpoint.
func (r *Runner) Snapshot() domain.RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.current
	snap.PerZip = append([]domain.ZipStats(nil), r.current.PerZip...)
	snap.MissingReports = append([]domain.MissingReport(nil), r.current.MissingReports...)
	return snap
}
