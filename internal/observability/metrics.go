package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aq_dashboard"

// Metrics holds the Prometheus collectors for the dashboard service.
type Metrics struct {
	// Dataset loading.
	DatasetRows         *prometheus.CounterVec // labels: result={loaded,skipped}
	DatasetFetchRetries prometheus.Counter
	DatasetLoaded       prometheus.Gauge

	// View recomputation.
	ViewUpdates      *prometheus.CounterVec // labels: outcome={success,empty_range}
	AggregatedCities prometheus.Gauge
	UnplacedCities   prometheus.Gauge
	SeriesRequests   *prometheus.CounterVec // labels: outcome={success,no_data,not_found,invalid}

	// Geocoding of cities without coordinates.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Aggregate export.
	ExportMessages prometheus.Counter
	ExportErrors   prometheus.Counter
}

// NewMetrics creates all dashboard metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_rows_total",
			Help:      "Dataset rows read at startup, by result.",
		}, []string{"result"}),
		DatasetFetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_fetch_retries_total",
			Help:      "Remote dataset fetches retried after a transient failure.",
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_loaded",
			Help:      "1 when the dataset is loaded and the dashboard is serving, 0 otherwise.",
		}),
		ViewUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_updates_total",
			Help:      "Map view recomputations by outcome.",
		}, []string{"outcome"}),
		AggregatedCities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregated_cities",
			Help:      "Cities in the current map view.",
		}),
		UnplacedCities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unplaced_cities",
			Help:      "Cities in the current view with no coordinates, not drawn on the map.",
		}),
		SeriesRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_requests_total",
			Help:      "City chart series extractions by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding of unplaced cities is enabled, 0 otherwise.",
		}),
		ExportMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_messages_total",
			Help:      "City summaries written to the export topic.",
		}),
		ExportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_errors_total",
			Help:      "Failed aggregate export batches.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetRows,
		m.DatasetFetchRetries,
		m.DatasetLoaded,
		m.ViewUpdates,
		m.AggregatedCities,
		m.UnplacedCities,
		m.SeriesRequests,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.ExportMessages,
		m.ExportErrors,
	}
}
