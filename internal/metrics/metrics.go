package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GeocodeRequests  *prometheus.CounterVec
	GeocodeSeconds   *prometheus.HistogramVec
	ActiveWorkers    prometheus.Gauge
	ClinicsSeeded    prometheus.Counter
	StoreErrors      prometheus.Counter
	DistanceRequests *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		GeocodeRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "asclepius_geocode_requests_total",
			Help: "Total number of clinic addresses sent to the geocoding provider.",
		}, []string{"status"}),
		GeocodeSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asclepius_geocode_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "asclepius_active_geocode_workers",
			Help: "Current number of workers geocoding clinic addresses.",
		}),
		ClinicsSeeded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "asclepius_clinics_seeded_total",
			Help: "Total number of clinic records written to the store.",
		}),
		StoreErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "asclepius_store_errors_total",
			Help: "Total number of failed bulk inserts.",
		}),
		DistanceRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "asclepius_distance_requests_total",
			Help: "Total number of distance computations served over HTTP.",
		}, []string{"endpoint"}),
	}
}
