package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/api"
	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve distance and nearest-clinic queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	locator, err := a.locator()
	if err != nil {
		return err
	}

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The health check pings the database only when clinics are stored in postgres.
	var pinger api.Pinger
	if store.StoreType(a.cfg.Store.Type) == store.StoreTypePostgres {
		pool, dbErr := store.NewDatabase(ctx, store.DatabaseConfig{
			Host:     a.cfg.Store.Database.Host,
			Port:     a.cfg.Store.Database.Port,
			User:     a.cfg.Store.Database.User,
			Password: a.cfg.Store.Database.Password,
			Name:     a.cfg.Store.Database.Name,
		})
		if dbErr != nil {
			return fmt.Errorf("failed to connect to DB: %w", dbErr)
		}
		defer pool.Close()
		pinger = pool
	}

	if a.cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(a.log, locator, appMetrics, pinger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Port),
		Handler:      srv.Router(reg),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoContext(ctx, "Starting HTTP server", "port", a.cfg.Port, "clinics", locator.Len())
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.InfoContext(ctx, "Shutdown signal received. Stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	a.log.InfoContext(ctx, "Server stopped gracefully.")
	return nil
}
