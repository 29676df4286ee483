// Package store writes clinic records to the backing clinics table, either
// through a PostgREST endpoint or directly over a Postgres connection.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/asclepius/internal/models"
)

// Sink accepts an ordered batch of clinic records.
type Sink interface {
	InsertClinics(ctx context.Context, clinics []models.Clinic) error
}

// StoreType selects the Sink implementation.
type StoreType string

const (
	// StoreTypeREST posts records to a PostgREST (e.g. Supabase) endpoint.
	StoreTypeREST StoreType = "rest"
	// StoreTypePostgres inserts records over a direct database connection.
	StoreTypePostgres StoreType = "postgres"
)

// ErrMissingCredentials is returned when the REST store has no URL or API key.
var ErrMissingCredentials = errors.New("store URL and API key are required")

// Config describes how to reach the clinics table.
type Config struct {
	Type     StoreType
	URL      string // PostgREST base URL, e.g. https://<project>.supabase.co
	Table    string // Table name, "clinics" by default
	APIKey   string // Sent as apikey and bearer token
	Database DatabaseConfig
	Logger   *slog.Logger
}

// DatabaseConfig holds the Postgres connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Open creates the configured Sink. The returned function releases its resources.
func Open(ctx context.Context, cfg Config) (Sink, func(), error) {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	switch cfg.Type {
	case StoreTypeREST:
		if cfg.URL == "" || cfg.APIKey == "" {
			return nil, nil, ErrMissingCredentials
		}
		return NewRESTStore(cfg.URL, cfg.Table, cfg.APIKey, cfg.Logger), func() {}, nil
	case StoreTypePostgres:
		pool, err := NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(pool, cfg.Table, cfg.Logger), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
