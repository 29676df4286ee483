package store_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("asclepius"),
		postgres.WithUsername("asclepius"),
		postgres.WithPassword("asclepius"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, testcontainers.TerminateContainer(container))
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	ps := store.NewPostgresStore(pool, store.DefaultTable, slog.Default())
	require.NoError(t, ps.CreateTable(ctx))
	require.NoError(t, ps.CreateTable(ctx), "creating the table twice must be harmless")

	clinics := sampleClinics()
	require.NoError(t, ps.InsertClinics(ctx, clinics))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.clinics`).Scan(&count))
	assert.Equal(t, len(clinics), count)

	var name string
	var lat, lon float64
	err = pool.QueryRow(ctx,
		`SELECT name, latitude, longitude FROM public.clinics WHERE id = $1`, clinics[1].ID,
	).Scan(&name, &lat, &lon)
	require.NoError(t, err)
	assert.Equal(t, "Hospital Permai", name)
	assert.InEpsilon(t, 1.5225, lat, 1e-12)
	assert.InEpsilon(t, 103.7027, lon, 1e-12)

	// A duplicate id fails the whole batch and leaves the table unchanged.
	err = ps.InsertClinics(ctx, clinics)
	require.Error(t, err)
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.clinics`).Scan(&count))
	assert.Equal(t, len(clinics), count)
}
