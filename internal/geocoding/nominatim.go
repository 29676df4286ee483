package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	// NominatimBaseURL is the public Nominatim search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// NominatimUserAgent identifies this service, as the Nominatim usage policy requires.
	NominatimUserAgent = "Asclepius-Clinic-Seeder/1.0 (https://github.com/UnknownOlympus/asclepius)"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// The public instance allows one request per second, which the limiter enforces.
type NominatimProvider struct {
	client  HTTPClient
	limiter *rate.Limiter
	config  NominatimConfig
	log     *slog.Logger
}

// NominatimConfig tunes the search requests. Empty fields fall back to defaults.
type NominatimConfig struct {
	BaseURL      string // Search endpoint, NominatimBaseURL by default
	UserAgent    string // NominatimUserAgent by default
	CountryCodes string // Comma separated ISO 3166-1 alpha-2 codes limiting results
	Language     string // accept-language value, "en" by default
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type nominatimResponse struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
	ErrNominatimEmptyAddress  = errors.New("nominatim provider got empty address")
)

// NewNominatimProvider creates a Nominatim provider limited to one request per second.
func NewNominatimProvider(config NominatimConfig, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		rate.NewLimiter(rate.Every(time.Second), 1),
		config,
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
func NewNominatimProviderWithClient(
	client HTTPClient,
	limiter *rate.Limiter,
	config NominatimConfig,
	log *slog.Logger,
) *NominatimProvider {
	if config.BaseURL == "" {
		config.BaseURL = NominatimBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = NominatimUserAgent
	}
	if config.Language == "" {
		config.Language = "en"
	}

	return &NominatimProvider{client: client, limiter: limiter, config: config, log: log}
}

// Geocode converts an address to coordinates.
//
// Malaysian style addresses put the most specific part first ("KM 5, Jalan Kota
// Tinggi, 86000 Kluang"), so when a query has no match the leading component is
// dropped and the search repeated, ending with the bare town name.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNominatimEmptyAddress
	}

	variations := addressFallbacks(address)
	for idx, variation := range variations {
		point, err := np.search(ctx, variation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address,
					"fallback", variation,
					"fallback_level", idx)
			}
			return point, nil
		}

		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}

		np.log.DebugContext(ctx, "Address variation returned no results", "variation", variation, "fallback_level", idx)
	}

	np.log.WarnContext(ctx, "All address fallbacks exhausted", "address", address, "variations_tried", len(variations))

	return nil, ErrNominatimEmptyResponse
}

// addressFallbacks returns the address followed by progressively shorter
// suffixes of its comma separated components, and finally the town without postcode.
func addressFallbacks(address string) []string {
	seen := make(map[string]bool)
	var variations []string
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	var parts []string
	for _, part := range strings.Split(address, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	add(strings.Join(parts, ", "))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[i:], ", "))
	}

	if len(parts) > 0 {
		add(stripPostcode(parts[len(parts)-1]))
	}

	return variations
}

// stripPostcode removes a leading numeric postcode: "86000 Kluang" -> "Kluang".
func stripPostcode(component string) string {
	fields := strings.Fields(component)
	if len(fields) < 2 {
		return component
	}
	for _, r := range fields[0] {
		if !unicode.IsDigit(r) {
			return component
		}
	}

	return strings.Join(fields[1:], " ")
}

func (np *NominatimProvider) search(ctx context.Context, address string) (*models.GeoPoint, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	reqURL, err := url.Parse(np.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("accept-language", np.config.Language)
	if np.config.CountryCodes != "" {
		query.Set("countrycodes", np.config.CountryCodes)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	point := &models.GeoPoint{Latitude: lat, Longitude: lon}
	if err = point.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNominatimInvalidCoords, err)
	}

	return point, nil
}
