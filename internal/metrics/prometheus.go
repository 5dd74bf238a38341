package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics
	CacheReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_cache_reads_total",
			Help: "Total number of result cache reads",
		},
		[]string{"kind", "outcome"}, // outcome: hit|miss
	)

	CacheClears = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_cache_clears_total",
			Help: "Total number of explicit cache clears",
		},
		[]string{"kind"},
	)

	// Channel fetch metrics
	ChannelFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_channel_fetches_total",
			Help: "Total number of per-channel fetch attempts",
		},
		[]string{"status"}, // status: success|error
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hermes_fetch_duration_seconds",
			Help:    "Full channel batch fetch duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	ChannelsFetched = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hermes_channels_fetched_count",
			Help: "Number of channels returned by the last fetch",
		},
	)

	// Trend computation metrics
	TrendComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_trend_computations_total",
			Help: "Total number of trend aggregations",
		},
		[]string{"kind", "status"}, // kind: coins|topics, status: success|error
	)

	TrendResults = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hermes_trend_results_count",
			Help: "Number of entries in the last trend result",
		},
		[]string{"kind"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hermes_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(CacheReads)
	prometheus.MustRegister(CacheClears)

	prometheus.MustRegister(ChannelFetches)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(ChannelsFetched)

	prometheus.MustRegister(TrendComputations)
	prometheus.MustRegister(TrendResults)

	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCacheRead records a cache hit or miss
func RecordCacheRead(kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheReads.WithLabelValues(kind, outcome).Inc()
}

// RecordTrendComputation records one aggregation run
func RecordTrendComputation(kind string, results int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	TrendComputations.WithLabelValues(kind, status).Inc()
	if err == nil {
		TrendResults.WithLabelValues(kind).Set(float64(results))
	}
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}
