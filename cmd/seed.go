package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/dataset"
	"github.com/UnknownOlympus/asclepius/internal/geocoding"
	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/service"
	"github.com/UnknownOlympus/asclepius/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	// googleRateLimit is the request budget per second shared by all geocoding workers.
	googleRateLimit = 50
	pushTimeout     = 10 * time.Second
)

func newSeedCmd(a *app) *cobra.Command {
	var dryRun, createTable bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Geocode the clinic list and insert it into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			result, err := a.seed(ctx, dryRun, createTable)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "clinics: %d, geocoded: %d, skipped: %d, stored: %d\n",
				result.Total, result.Geocoded, result.Skipped, result.Stored)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the records without writing them")
	cmd.Flags().BoolVar(&createTable, "create-table", false, "create the clinics table first (postgres store only)")

	return cmd
}

func (a *app) seed(ctx context.Context, dryRun, createTable bool) (service.SeedResult, error) {
	seeds, err := a.seeds()
	if err != nil {
		return service.SeedResult{}, err
	}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(a.cfg.Geocoder.ProviderType),
		APIKey:    a.cfg.Geocoder.APIKey,
		RateLimit: max(googleRateLimit/a.cfg.Geocoder.Workers, 1),
		Country:   a.cfg.Geocoder.Country,
		Language:  a.cfg.Geocoder.Language,
		Logger:    a.log,
	})
	if err != nil {
		return service.SeedResult{}, fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	a.log.InfoContext(ctx, "Geocoding provider initialized", "type", a.cfg.Geocoder.ProviderType)

	var sink store.Sink
	if !dryRun {
		var closeSink func()
		sink, closeSink, err = store.Open(ctx, store.Config{
			Type:   store.StoreType(a.cfg.Store.Type),
			URL:    a.cfg.Store.URL,
			Table:  a.cfg.Store.Table,
			APIKey: a.cfg.Store.APIKey,
			Database: store.DatabaseConfig{
				Host:     a.cfg.Store.Database.Host,
				Port:     a.cfg.Store.Database.Port,
				User:     a.cfg.Store.Database.User,
				Password: a.cfg.Store.Database.Password,
				Name:     a.cfg.Store.Database.Name,
			},
			Logger: a.log,
		})
		if err != nil {
			return service.SeedResult{}, fmt.Errorf("failed to open store: %w", err)
		}
		defer closeSink()

		if createTable {
			pg, ok := sink.(*store.PostgresStore)
			if !ok {
				return service.SeedResult{}, errors.New("--create-table requires the postgres store")
			}
			if err = pg.CreateTable(ctx); err != nil {
				return service.SeedResult{}, err
			}
		}
	}

	reg := prometheus.NewRegistry()
	seeder := service.NewSeedService(
		a.log,
		provider,
		a.cfg.Geocoder.ProviderType,
		sink,
		metrics.NewMetrics(reg),
		a.cfg.Geocoder.Workers,
		dataset.RecordOptions{ImageURL: a.cfg.ImageURL},
	)

	result, err := seeder.Run(ctx, seeds, dryRun)
	a.pushMetrics(ctx, reg)

	return result, err
}

// pushMetrics hands the run's metrics to the configured Pushgateway. A failed push is logged
// and does not fail the run, the clinics are already stored at this point.
func (a *app) pushMetrics(ctx context.Context, reg prometheus.Gatherer) {
	if a.cfg.PushgatewayURL == "" {
		a.log.DebugContext(ctx, "No Pushgateway configured, seed metrics are not exported")
		return
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := metrics.Push(pushCtx, a.cfg.PushgatewayURL, metrics.SeedJob, reg); err != nil {
		a.log.ErrorContext(ctx, "Failed to push seed metrics", "error", err)
		return
	}
	a.log.InfoContext(ctx, "Seed metrics pushed", "url", a.cfg.PushgatewayURL, "job", metrics.SeedJob)
}
