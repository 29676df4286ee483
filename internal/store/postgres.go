package store

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of *pgxpool.Pool used by PostgresStore.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore inserts clinics inside a single transaction.
type PostgresStore struct {
	db    Database
	table string
	log   *slog.Logger
}

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, cfg DatabaseConfig) (*pgxpool.Pool, error) {
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, port),
		Path:   cfg.Name,
	}

	pool, err := pgxpool.New(ctx, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresStore creates a PostgresStore writing to public.<table>.
func NewPostgresStore(db Database, table string, log *slog.Logger) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}

	return &PostgresStore{db: db, table: table, log: log}
}

func (ps *PostgresStore) tableName() string {
	return pgx.Identifier{"public", ps.table}.Sanitize()
}

// CreateTable creates the clinics table when it does not exist yet.
func (ps *PostgresStore) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + ps.tableName() + ` (
			id         uuid PRIMARY KEY,
			name       text NOT NULL,
			address    text NOT NULL,
			latitude   double precision NOT NULL,
			longitude  double precision NOT NULL,
			type       text NOT NULL,
			image_url  text,
			created_at timestamptz NOT NULL DEFAULT now()
		);
	`

	if _, err := ps.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create clinics table: %w", err)
	}

	return nil
}

// InsertClinics writes all clinics or none of them.
func (ps *PostgresStore) InsertClinics(ctx context.Context, clinics []models.Clinic) error {
	if len(clinics) == 0 {
		return nil
	}

	query := `
		INSERT INTO ` + ps.tableName() + `
			(id, name, address, latitude, longitude, type, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	tx, err := ps.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, clinic := range clinics {
		_, err = tx.Exec(ctx, query,
			clinic.ID, clinic.Name, clinic.Address, clinic.Latitude, clinic.Longitude,
			clinic.Type, clinic.ImageURL, clinic.CreatedAt,
		)
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				ps.log.ErrorContext(ctx, "Failed to roll back clinics insert", "error", rbErr)
			}
			return fmt.Errorf("failed to insert clinic %q: %w", clinic.Name, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clinics: %w", err)
	}

	ps.log.InfoContext(ctx, "Clinics stored", "count", len(clinics), "table", ps.table)

	return nil
}
