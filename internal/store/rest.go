package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/goccy/go-json"
)

// DefaultTable is the clinics table name.
const DefaultTable = "clinics"

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status from store")

// StatusError reports a non-2xx reply from the REST store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTStore bulk inserts clinics through a PostgREST endpoint in a single request.
type RESTStore struct {
	client   HTTPClient
	endpoint string
	apiKey   string
	log      *slog.Logger
}

// NewRESTStore creates a RESTStore posting to <baseURL>/rest/v1/<table>.
func NewRESTStore(baseURL, table, apiKey string, log *slog.Logger) *RESTStore {
	const timeout = 30
	return NewRESTStoreWithClient(&http.Client{Timeout: timeout * time.Second}, baseURL, table, apiKey, log)
}

// NewRESTStoreWithClient creates a RESTStore with a custom HTTP client.
func NewRESTStoreWithClient(client HTTPClient, baseURL, table, apiKey string, log *slog.Logger) *RESTStore {
	return &RESTStore{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/rest/v1/" + url.PathEscape(table),
		apiKey:   apiKey,
		log:      log,
	}
}

// Endpoint returns the URL records are posted to.
func (rs *RESTStore) Endpoint() string {
	return rs.endpoint
}

// InsertClinics posts all clinics as one JSON array. Any 2xx status is success.
func (rs *RESTStore) InsertClinics(ctx context.Context, clinics []models.Clinic) error {
	if len(clinics) == 0 {
		return nil
	}

	payload, err := json.Marshal(clinics)
	if err != nil {
		return fmt.Errorf("failed to encode clinics: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rs.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", rs.apiKey)
	req.Header.Set("Authorization", "Bearer "+rs.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	rs.log.DebugContext(ctx, "Posting clinics to store", "endpoint", rs.endpoint, "count", len(clinics))

	resp, err := rs.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute insert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		rs.log.ErrorContext(ctx, "Store rejected clinics", "status", resp.StatusCode, "body", string(body))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	rs.log.InfoContext(ctx, "Clinics stored", "count", len(clinics), "status", resp.StatusCode)

	return nil
}
