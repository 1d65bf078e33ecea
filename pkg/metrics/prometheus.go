package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes backtest and data provider metrics to Prometheus.
type Recorder struct {
	backtestRuns     *prometheus.CounterVec
	backtestDuration *prometheus.HistogramVec
	backtestTrades   prometheus.Histogram
	providerCalls    *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

var (
	once     sync.Once
	recorder *Recorder
)

// New returns the process-wide recorder. Collectors are registered once with
// the default registry.
func New() *Recorder {
	once.Do(func() {
		recorder = newRecorder(promauto.With(prometheus.DefaultRegisterer))
	})
	return recorder
}

// NewWithRegistry builds a recorder on its own registry, for tests.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	return newRecorder(promauto.With(reg))
}

func newRecorder(f promauto.Factory) *Recorder {
	return &Recorder{
		backtestRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backtest_runs_total",
				Help: "Total number of backtest runs by kind and status",
			},
			[]string{"kind", "status"},
		),
		backtestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backtest_run_duration_seconds",
				Help:    "Duration of backtest phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		backtestTrades: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "backtest_trades_per_run",
				Help:    "Closed trades produced by one backtest run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		providerCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_data_provider_calls_total",
				Help: "Calls to external market data providers",
			},
			[]string{"provider", "status"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "market_data_provider_duration_seconds",
				Help:    "Latency of external market data provider calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_data_cache_lookups_total",
				Help: "Market data cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
	}
}

func (r *Recorder) RecordBacktest(kind, status string) {
	r.backtestRuns.WithLabelValues(kind, status).Inc()
}

func (r *Recorder) RecordPhase(phase string, seconds float64) {
	r.backtestDuration.WithLabelValues(phase).Observe(seconds)
}

func (r *Recorder) RecordTrades(n int) {
	r.backtestTrades.Observe(float64(n))
}

func (r *Recorder) RecordProviderCall(provider, status string, seconds float64) {
	r.providerCalls.WithLabelValues(provider, status).Inc()
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}
