package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes addresses with the Google Maps Geocoding API.
type GoogleProvider struct {
	client   GoogleAPIClient
	region   string // ccTLD region bias, e.g. "my"
	language string
	log      *slog.Logger
}

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider wraps an existing Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, region, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, region: region, language: language, log: log}
}

// Geocode returns the location of the first result Google reports for the address.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.GeoPoint, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address, "region", gp.region)

	req := maps.GeocodingRequest{Address: address, Region: gp.region, Language: gp.language}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}
	loc := results[0].Geometry.Location

	return &models.GeoPoint{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
