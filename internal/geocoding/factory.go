package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeNone disables geocoding; seeds must carry their own coordinates.
	ProviderTypeNone ProviderType = "none"
)

// ErrGeocodingDisabled is returned by the provider created for ProviderTypeNone.
var ErrGeocodingDisabled = errors.New("geocoding is disabled")

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key (Google only)
	RateLimit int          // Requests per second (Google only, Nominatim is fixed at 1)
	Country   string       // ISO 3166-1 alpha-2 code biasing results, e.g. "my"
	Language  string       // Preferred result language, e.g. "en"
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
//
// Supported provider types:
// - "google": Google Maps Geocoding API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
// - "none": geocoding disabled
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return NewNominatimProvider(NominatimConfig{
			CountryCodes: config.Country,
			Language:     config.Language,
		}, config.Logger), nil
	case ProviderTypeNone:
		return disabledProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Country, config.Language, config.Logger), nil
}

type disabledProvider struct{}

func (disabledProvider) Geocode(_ context.Context, address string) (*models.GeoPoint, error) {
	return nil, fmt.Errorf("%w: cannot resolve %q", ErrGeocodingDisabled, address)
}
