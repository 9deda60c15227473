package geo

import (
	"context"

	"courtscraper/internal/domain"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Locality holds reverse-geocoded address components. Fields default to
// the empty string, never to a missing value.
type Locality struct {
	City    string
	State   string
	Country string
}

// Resolver turns geographic inputs into coordinates, nearby place
// candidates, and locality strings. Geocode returns (nil, nil) when the
// provider has no answer; that is an expected empty outcome, not an error.
type Resolver interface {
	Geocode(ctx context.Context, zipCode string) (*Coordinates, error)
	NearbySearch(ctx context.Context, lat, lng float64, radiusMeters int) ([]domain.PlaceCandidate, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (Locality, error)
}
