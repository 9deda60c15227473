package geo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"courtscraper/internal/domain"
)

const (
	geocodeEndpoint      = "https://maps.googleapis.com/maps/api/geocode/json"
	nearbySearchEndpoint = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	reverseEndpoint      = "https://nominatim.openstreetmap.org/reverse"

	placesKeyword = "pickleball court"
	userAgent     = "courtscraper/1.0"
)

// GoogleResolver resolves zip codes and coordinates through the Google
// Geocoding and Places APIs. Reverse geocoding goes through Nominatim,
// which hands back address components directly.
type GoogleResolver struct {
	apiKey string
	client *resty.Client
	logger *zap.Logger
}

func NewGoogleResolver(apiKey string, logger *zap.Logger) (*GoogleResolver, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("maps api key cannot be empty")
	}
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetRetryCount(2)
	return &GoogleResolver{apiKey: apiKey, client: client, logger: logger}, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocode converts a zip code into coordinates. A provider status other
// than OK yields (nil, nil): no coordinates, no error.
func (r *GoogleResolver) Geocode(ctx context.Context, zipCode string) (*Coordinates, error) {
	var out geocodeResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": zipCode,
			"key":     r.apiKey,
		}).
		SetResult(&out).
		Get(geocodeEndpoint)
	if err != nil {
		return nil, fmt.Errorf("geocode request for %s: %w", zipCode, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocode request for %s: status %s", zipCode, resp.Status())
	}

	if out.Status != "OK" || len(out.Results) == 0 {
		r.logger.Warn("geocoding returned no result",
			zap.String("zip", zipCode),
			zap.String("status", out.Status),
			zap.String("message", out.ErrorMessage))
		return nil, nil
	}

	loc := out.Results[0].Geometry.Location
	return &Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string `json:"name"`
		Vicinity         string `json:"vicinity"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// NearbySearch queries the Places API for pickleball courts around a
// point. Results missing any of name, address or coordinates are
// dropped; the downstream search URL needs all of them.
func (r *GoogleResolver) NearbySearch(ctx context.Context, lat, lng float64, radiusMeters int) ([]domain.PlaceCandidate, error) {
	var out nearbyResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": fmt.Sprintf("%f,%f", lat, lng),
			"radius":   strconv.Itoa(radiusMeters),
			"keyword":  placesKeyword,
			"type":     "point_of_interest",
			"key":      r.apiKey,
		}).
		SetResult(&out).
		Get(nearbySearchEndpoint)
	if err != nil {
		return nil, fmt.Errorf("nearby search at (%f,%f): %w", lat, lng, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nearby search at (%f,%f): status %s", lat, lng, resp.Status())
	}

	if out.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if out.Status != "OK" {
		return nil, fmt.Errorf("places api status %s: %s", out.Status, out.ErrorMessage)
	}

	var candidates []domain.PlaceCandidate
	for _, place := range out.Results {
		address := place.Vicinity
		if address == "" {
			address = place.FormattedAddress
		}
		loc := place.Geometry.Location
		if place.Name == "" || address == "" || (loc.Lat == 0 && loc.Lng == 0) {
			continue
		}
		candidates = append(candidates, domain.PlaceCandidate{
			Name:      place.Name,
			Address:   address,
			Latitude:  loc.Lat,
			Longitude: loc.Lng,
		})
	}
	return candidates, nil
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// ReverseGeocode converts coordinates into locality strings via
// Nominatim. Any failure degrades to empty components.
func (r *GoogleResolver) ReverseGeocode(ctx context.Context, lat, lng float64) (Locality, error) {
	var out reverseResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "jsonv2",
			"lat":    fmt.Sprintf("%f", lat),
			"lon":    fmt.Sprintf("%f", lng),
		}).
		SetResult(&out).
		Get(reverseEndpoint)
	if err != nil {
		return Locality{}, fmt.Errorf("reverse geocode at (%f,%f): %w", lat, lng, err)
	}
	if resp.IsError() {
		return Locality{}, fmt.Errorf("reverse geocode at (%f,%f): status %s", lat, lng, resp.Status())
	}

	city := out.Address.City
	if city == "" {
		city = out.Address.Town
	}
	if city == "" {
		city = out.Address.Village
	}
	return Locality{City: city, State: out.Address.State, Country: out.Address.Country}, nil
}
