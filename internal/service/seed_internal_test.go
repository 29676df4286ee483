package service

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/dataset"
	"github.com/UnknownOlympus/asclepius/internal/geocoding"
	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/UnknownOlympus/asclepius/test/mocks"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func recordOptions() dataset.RecordOptions {
	now := time.Date(2026, 2, 15, 0, 30, 0, 0, time.UTC)
	return dataset.RecordOptions{
		Now:   func() time.Time { return now },
		NewID: uuid.New,
	}
}

func newTestService(t *testing.T, workers int) (*SeedService, *mocks.Provider, *mocks.Sink, *metrics.Metrics) {
	t.Helper()
	provider := mocks.NewProvider(t)
	sink := mocks.NewSink(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	svc := NewSeedService(logger, provider, "nominatim", sink, appMetrics, workers, recordOptions())

	return svc, provider, sink, appMetrics
}

func namesOf(records []models.Clinic) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

func TestSeedService_Run(t *testing.T) {
	located := models.ClinicSeed{
		Name: "Hospital Segamat", Address: "KM 6, Jalan Genuang, 85000 Segamat", Type: "Hospital",
		Latitude: ptr(2.5152), Longitude: ptr(102.8222),
	}
	unlocated := models.ClinicSeed{
		Name: "Hospital Pakar Sultanah Fatimah", Address: "Jalan Salleh, 84000 Muar", Type: "Hospital",
	}
	unknown := models.ClinicSeed{Name: "Klinik Hilang", Address: "Nowhere", Type: "Clinic"}

	t.Run("seeds with coordinates go straight to the store", func(t *testing.T) {
		svc, _, sink, appMetrics := newTestService(t, 2)
		ctx := t.Context()

		sink.On("InsertClinics", ctx, mock.MatchedBy(func(records []models.Clinic) bool {
			return len(records) == 1 && records[0].Name == "Hospital Segamat"
		})).Return(nil).Once()

		result, err := svc.Run(ctx, []models.ClinicSeed{located}, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 1, result.Stored)
		assert.Zero(t, result.Geocoded)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.ClinicsSeeded), 0)
	})

	t.Run("missing coordinates are geocoded", func(t *testing.T) {
		svc, provider, sink, appMetrics := newTestService(t, 4)
		ctx := t.Context()

		provider.On("Geocode", ctx, unlocated.Address).
			Return(&models.GeoPoint{Latitude: 2.0435, Longitude: 102.5694}, nil).Once()
		sink.On("InsertClinics", ctx, mock.Anything).Return(nil).Once()

		result, err := svc.Run(ctx, []models.ClinicSeed{located, unlocated}, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Geocoded)
		assert.Equal(t, 2, result.Stored)
		require.Len(t, result.Records, 2)
		assert.Equal(t, []string{"Hospital Segamat", "Hospital Pakar Sultanah Fatimah"}, namesOf(result.Records))
		assert.InEpsilon(t, 2.0435, result.Records[1].Latitude, 1e-12)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.GeocodeRequests.WithLabelValues("success")), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.ActiveWorkers), 0)
	})

	t.Run("failed geocoding skips the seed", func(t *testing.T) {
		svc, provider, sink, appMetrics := newTestService(t, 2)
		ctx := t.Context()

		provider.On("Geocode", ctx, unknown.Address).Return(nil, geocoding.ErrNominatimEmptyResponse).Once()
		sink.On("InsertClinics", ctx, mock.MatchedBy(func(records []models.Clinic) bool {
			return len(records) == 1
		})).Return(nil).Once()

		result, err := svc.Run(ctx, []models.ClinicSeed{unknown, located}, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.Stored)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.GeocodeRequests.WithLabelValues("failure")), 0)
	})

	t.Run("nothing left to seed", func(t *testing.T) {
		svc, provider, _, _ := newTestService(t, 1)
		ctx := t.Context()

		provider.On("Geocode", ctx, unknown.Address).Return(nil, assert.AnError).Once()

		result, err := svc.Run(ctx, []models.ClinicSeed{unknown}, false)

		require.ErrorIs(t, err, ErrNothingToSeed)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("invalid seeds are rejected before geocoding", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, 1)

		_, err := svc.Run(t.Context(), []models.ClinicSeed{{Address: "Jalan Tanpa Nama", Type: "Clinic"}}, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to validate seeds")
	})

	t.Run("empty input", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, 1)

		_, err := svc.Run(t.Context(), nil, false)

		require.ErrorIs(t, err, dataset.ErrEmptyDataset)
	})

	t.Run("dry run does not touch the store", func(t *testing.T) {
		svc, _, _, appMetrics := newTestService(t, 1)

		result, err := svc.Run(t.Context(), dataset.Default(), true)

		require.NoError(t, err)
		assert.Len(t, result.Records, 17)
		assert.Zero(t, result.Stored)
		assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.ClinicsSeeded), 0)
	})

	t.Run("store failure is reported", func(t *testing.T) {
		svc, _, sink, appMetrics := newTestService(t, 1)
		ctx := t.Context()

		sink.On("InsertClinics", ctx, mock.Anything).Return(assert.AnError).Once()

		result, err := svc.Run(ctx, []models.ClinicSeed{located}, false)

		require.ErrorIs(t, err, assert.AnError)
		assert.Zero(t, result.Stored)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.StoreErrors), 0)
	})

	t.Run("many seeds across few workers", func(t *testing.T) {
		svc, provider, sink, _ := newTestService(t, 3)
		ctx := t.Context()

		seeds := make([]models.ClinicSeed, 0, 10)
		for i := range 10 {
			seeds = append(seeds, models.ClinicSeed{
				Name:    "Klinik " + string(rune('A'+i)),
				Address: "Jalan " + string(rune('A'+i)) + ", 80000 Johor Bahru",
				Type:    "Clinic",
			})
		}
		provider.On("Geocode", ctx, mock.AnythingOfType("string")).
			Return(&models.GeoPoint{Latitude: 1.49, Longitude: 103.74}, nil).Times(10)
		sink.On("InsertClinics", ctx, mock.Anything).Return(nil).Once()

		result, err := svc.Run(ctx, seeds, false)

		require.NoError(t, err)
		assert.Equal(t, 10, result.Geocoded)
		assert.Equal(t, "Klinik A", namesOf(result.Records)[0])
		assert.Equal(t, "Klinik J", namesOf(result.Records)[9])
	})
}
