package finder

import (
	"context"

	"go.uber.org/zap"

	"courtscraper/internal/domain"
	"courtscraper/internal/extract"
	"courtscraper/internal/fetch"
	"courtscraper/internal/geo"
)

// Finder turns one zip code into the detail-page URLs of every court the
// places provider knows about near it. The returned list may contain
// duplicates across overlapping candidates; downstream dedup handles
// those.
type Finder struct {
	resolver  geo.Resolver
	fetcher   fetch.Fetcher
	extractor *extract.Extractor
	origin    string
	radiusM   int
	logger    *zap.Logger
}

func New(resolver geo.Resolver, fetcher fetch.Fetcher, extractor *extract.Extractor, origin string, radiusM int, logger *zap.Logger) *Finder {
	return &Finder{
		resolver:  resolver,
		fetcher:   fetcher,
		extractor: extractor,
		origin:    origin,
		radiusM:   radiusM,
		logger:    logger,
	}
}

// FindCourtURLs resolves a zip code to detail URLs. A failed geocode or
// empty places result is a valid zero outcome. A failure on one place
// candidate is logged and skipped; the remaining candidates still run.
func (f *Finder) FindCourtURLs(ctx context.Context, zipCode string) []string {
	coords, err := f.resolver.Geocode(ctx, zipCode)
	if err != nil {
		f.logger.Warn("geocoding failed", zap.String("zip", zipCode), zap.Error(err))
		return nil
	}
	if coords == nil {
		f.logger.Info("zip code did not resolve", zap.String("zip", zipCode))
		return nil
	}

	candidates, err := f.resolver.NearbySearch(ctx, coords.Lat, coords.Lng, f.radiusM)
	if err != nil {
		f.logger.Warn("places search failed", zap.String("zip", zipCode), zap.Error(err))
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	// Nearby search often returns the same physical court more than
	// once; suppress the extra search-page fetches before any network
	// work happens for them.
	seen := make(map[string]struct{}, len(candidates))
	var urls []string
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		key := candidate.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		urls = append(urls, f.candidateURLs(ctx, candidate)...)
	}
	return urls
}

func (f *Finder) candidateURLs(ctx context.Context, candidate domain.PlaceCandidate) []string {
	locality, err := f.resolver.ReverseGeocode(ctx, candidate.Latitude, candidate.Longitude)
	if err != nil {
		f.logger.Warn("reverse geocoding failed",
			zap.String("place", candidate.Name),
			zap.Error(err))
		// Empty locality still produces a usable lat/lng search.
		locality = geo.Locality{}
	}

	searchURL := SearchURL(f.origin, locality, candidate.Latitude, candidate.Longitude)
	page, err := f.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		f.logger.Warn("search page fetch failed",
			zap.String("place", candidate.Name),
			zap.String("url", searchURL),
			zap.Error(err))
		return nil
	}
	if page == nil {
		f.logger.Warn("search page blocked", zap.String("url", searchURL))
		return nil
	}

	links, err := f.extractor.SearchResultLinks(page.HTML)
	if err != nil {
		f.logger.Warn("search page extraction failed",
			zap.String("url", searchURL),
			zap.Error(err))
		return nil
	}
	f.logger.Info("search page processed",
		zap.String("place", candidate.Name),
		zap.Int("links", len(links)))
	return links
}
