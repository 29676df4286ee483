package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// SeedJob is the Pushgateway job name of a seeding run.
const SeedJob = "asclepius_seed"

// Push replaces the metrics of job on the Pushgateway at url with everything gathered from g.
// Batch runs exit before a scrape could reach them, so they push instead.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}

	return nil
}
