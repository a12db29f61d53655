// Package metrics defines the Prometheus counters and histograms exposed
// by the gateway and worker processes (spec §4.4/§5 ambient concerns),
// grounded on the prometheus/client_golang usage found in the retrieval
// pack's service entrypoints.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway holds the request-facing metrics registered by cmd/gateway.
type Gateway struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SearchResults   prometheus.Histogram
	ZarrChunkBytes  prometheus.Counter
}

// NewGateway registers and returns the gateway process's metric set.
func NewGateway() *Gateway {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Gateway{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freva_gateway_requests_total",
			Help: "Total HTTP requests handled by the gateway, by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freva_gateway_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "freva_gateway_search_results",
			Help:    "Number of documents returned per search.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		ZarrChunkBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "freva_gateway_zarr_chunk_bytes_total",
			Help: "Total bytes served through zarr chunk endpoints.",
		}),
	}
}

// Handler returns the `/metrics` HTTP handler, suitable for registration
// alongside the rest of the gateway's echo routes.
func (g *Gateway) Handler() http.Handler {
	return promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{})
}

// Worker holds the metrics registered by cmd/worker.
type Worker struct {
	registry *prometheus.Registry

	JobsSubmitted  *prometheus.CounterVec
	JobDuration    prometheus.Histogram
	OpenDatasets   prometheus.Gauge
	ChunksServed   prometheus.Counter
}

// NewWorker registers and returns the worker process's metric set.
func NewWorker() *Worker {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Worker{
		registry: registry,
		JobsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freva_worker_jobs_total",
			Help: "Total materialization jobs processed, by terminal status.",
		}, []string{"status"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "freva_worker_job_duration_seconds",
			Help:    "Wall-clock time to materialize a dataset, from submit to terminal state.",
			Buckets: prometheus.DefBuckets,
		}),
		OpenDatasets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "freva_worker_open_datasets",
			Help: "Number of dataset handles currently held open by the worker pool.",
		}),
		ChunksServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "freva_worker_chunks_served_total",
			Help: "Total chunk read requests served by the worker.",
		}),
	}
}

func (w *Worker) Handler() http.Handler {
	return promhttp.HandlerFor(w.registry, promhttp.HandlerOpts{})
}
