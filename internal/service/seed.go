package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/dataset"
	"github.com/UnknownOlympus/asclepius/internal/geocoding"
	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/UnknownOlympus/asclepius/internal/store"
)

// ErrNothingToSeed is returned when no seed ends up with coordinates.
var ErrNothingToSeed = errors.New("no clinics with coordinates to seed")

// SeedService resolves missing clinic coordinates and writes the records to a store.
type SeedService struct {
	log          *slog.Logger
	provider     geocoding.Provider
	providerName string // Provider name for metrics labeling
	sink         store.Sink
	metrics      *metrics.Metrics
	numWorkers   int
	records      dataset.RecordOptions
}

// SeedResult summarizes one seeding run.
type SeedResult struct {
	Total    int             // Seeds received
	Geocoded int             // Seeds whose coordinates came from the provider
	Skipped  int             // Seeds dropped because geocoding failed
	Stored   int             // Records written to the store (0 on dry runs)
	Records  []models.Clinic // Records built from the seeds, in input order
}

// NewSeedService creates a SeedService. numWorkers below one is treated as one.
func NewSeedService(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	sink store.Sink,
	metrics *metrics.Metrics,
	numWorkers int,
	records dataset.RecordOptions,
) *SeedService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &SeedService{
		log:          log,
		provider:     provider,
		providerName: providerName,
		sink:         sink,
		metrics:      metrics,
		numWorkers:   numWorkers,
		records:      records,
	}
}

// Run geocodes seeds lacking coordinates, builds records and inserts them in one batch.
// With dryRun set the records are built but not written.
func (ss *SeedService) Run(ctx context.Context, seeds []models.ClinicSeed, dryRun bool) (SeedResult, error) {
	result := SeedResult{Total: len(seeds)}

	if err := dataset.Validate(seeds); err != nil {
		return result, fmt.Errorf("failed to validate seeds: %w", err)
	}

	located := make([]models.ClinicSeed, len(seeds))
	copy(located, seeds)

	var pending []int
	for idx, seed := range seeds {
		if !seed.HasLocation() {
			pending = append(pending, idx)
		}
	}

	if len(pending) > 0 {
		ss.geocodeAll(ctx, located, pending)
	}

	ready := make([]models.ClinicSeed, 0, len(located))
	for idx, seed := range located {
		if !seed.HasLocation() {
			result.Skipped++
			continue
		}
		if !seeds[idx].HasLocation() {
			result.Geocoded++
		}
		ready = append(ready, seed)
	}

	if len(ready) == 0 {
		return result, ErrNothingToSeed
	}

	records, err := dataset.ToRecords(ready, ss.records)
	if err != nil {
		return result, fmt.Errorf("failed to build records: %w", err)
	}
	result.Records = records

	if dryRun {
		ss.log.InfoContext(ctx, "Dry run, skipping store insert", "records", len(records), "skipped", result.Skipped)
		return result, nil
	}

	if err = ss.sink.InsertClinics(ctx, records); err != nil {
		ss.metrics.StoreErrors.Inc()
		return result, fmt.Errorf("failed to insert clinics: %w", err)
	}

	result.Stored = len(records)
	ss.metrics.ClinicsSeeded.Add(float64(len(records)))
	ss.log.InfoContext(ctx, "Successfully added clinics to the database", "count", result.Stored,
		"geocoded", result.Geocoded, "skipped", result.Skipped)

	return result, nil
}

// geocodeAll fills in coordinates for the seeds at the pending indexes using a worker pool.
// Each job owns one slot of located, so workers never write the same element.
func (ss *SeedService) geocodeAll(ctx context.Context, located []models.ClinicSeed, pending []int) {
	workers := min(ss.numWorkers, len(pending))
	ss.log.InfoContext(ctx, "Geocoding clinics without coordinates", "jobs", len(pending), "num_workers", workers)

	jobs := make(chan int, len(pending))
	var wgr sync.WaitGroup

	for i := 1; i <= workers; i++ {
		wgr.Add(1)
		go ss.worker(ctx, i, &wgr, located, jobs)
	}

	for _, idx := range pending {
		jobs <- idx
	}
	close(jobs)

	wgr.Wait()
}

func (ss *SeedService) worker(
	ctx context.Context,
	id int,
	wg *sync.WaitGroup,
	located []models.ClinicSeed,
	jobs <-chan int,
) {
	defer wg.Done()
	for idx := range jobs {
		seed := located[idx]

		ss.metrics.ActiveWorkers.Inc()
		ss.log.DebugContext(ctx, "Geocoding clinic", "worker", id, "clinic", seed.Name)

		startTime := time.Now()
		point, err := ss.provider.Geocode(ctx, seed.Address)
		ss.metrics.GeocodeSeconds.WithLabelValues(ss.providerName).Observe(time.Since(startTime).Seconds())

		if err != nil {
			ss.metrics.GeocodeRequests.WithLabelValues("failure").Inc()
			ss.log.ErrorContext(ctx, "Failed to geocode clinic, skipping it",
				"worker", id, "clinic", seed.Name, "error", err)
			ss.metrics.ActiveWorkers.Dec()
			continue
		}

		ss.metrics.GeocodeRequests.WithLabelValues("success").Inc()
		located[idx] = seed.WithLocation(*point)
		ss.log.DebugContext(ctx, "Clinic geocoded", "worker", id, "clinic", seed.Name, "location", point.String())

		ss.metrics.ActiveWorkers.Dec()
	}
}
