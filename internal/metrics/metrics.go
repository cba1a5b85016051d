// Package metrics provides the centralized Prometheus metrics registry for the pool service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	OddsSnapshotsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "odds_snapshots_total",
		Help:      "Total number of odds snapshots recorded",
	})
	OddsRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "odds_refreshes_total",
		Help:      "Total number of odds feed refresh runs by outcome",
	}, []string{"outcome"})
	PredictionsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "predictions_written_total",
		Help:      "Total number of predictions created or updated",
	})
	PredictionsLockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "predictions_locked_total",
		Help:      "Total number of prediction writes rejected by winner lock",
	})
	OddsUpgradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "odds_upgrades_total",
		Help:      "Total number of stored-odds upgrade attempts by outcome",
	}, []string{"outcome"})
	ScoringRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "scoring_runs_total",
		Help:      "Total number of pool scoring calculations",
	})
	WinnersEnteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "winners_entered_total",
		Help:      "Total number of winner announcements recorded",
	})
	FeedErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "feed_errors_total",
		Help:      "Total number of odds feed request failures",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gold_envelope",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of odds feed circuit breaker trips",
	})
)

// Gauge metrics
var (
	LastOddsRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gold_envelope",
		Name:      "last_odds_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful odds refresh",
	})
	TrackedPairs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gold_envelope",
		Name:      "tracked_pairs",
		Help:      "Number of category and nominee pairs seen in the last refresh",
	})
	StreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gold_envelope",
		Name:      "stream_connected",
		Help:      "Whether the odds stream connection is currently up",
	})
)

// Histogram metrics
var (
	OddsRefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gold_envelope",
		Name:      "odds_refresh_duration_seconds",
		Help:      "Duration of odds feed refresh runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	UpgradeSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gold_envelope",
		Name:      "upgrade_sweep_duration_seconds",
		Help:      "Duration of prediction upgrade sweeps in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ScoringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gold_envelope",
		Name:      "scoring_duration_seconds",
		Help:      "Duration of pool scoring calculations in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(OddsSnapshotsTotal)
		registry.MustRegister(OddsRefreshesTotal)
		registry.MustRegister(PredictionsWrittenTotal)
		registry.MustRegister(PredictionsLockedTotal)
		registry.MustRegister(OddsUpgradesTotal)
		registry.MustRegister(ScoringRunsTotal)
		registry.MustRegister(WinnersEnteredTotal)
		registry.MustRegister(FeedErrorsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(LastOddsRefreshTimestamp)
		registry.MustRegister(TrackedPairs)
		registry.MustRegister(StreamConnected)

		// Register histogram metrics
		registry.MustRegister(OddsRefreshDuration)
		registry.MustRegister(UpgradeSweepDuration)
		registry.MustRegister(ScoringDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSnapshots records a batch of stored odds snapshots.
func RecordSnapshots(count int) {
	OddsSnapshotsTotal.Add(float64(count))
}

// RecordRefresh records an odds refresh run.
func RecordRefresh(outcome string, durationSeconds float64) {
	OddsRefreshesTotal.WithLabelValues(outcome).Inc()
	OddsRefreshDuration.Observe(durationSeconds)
}

// RecordPredictionWritten records a prediction create or update.
func RecordPredictionWritten() {
	PredictionsWrittenTotal.Inc()
}

// RecordPredictionLocked records a write rejected by the winner lock.
func RecordPredictionLocked() {
	PredictionsLockedTotal.Inc()
}

// RecordUpgrade records a stored-odds upgrade attempt.
func RecordUpgrade(outcome string) {
	OddsUpgradesTotal.WithLabelValues(outcome).Inc()
}

// RecordScoringRun records a scoring calculation.
func RecordScoringRun(durationSeconds float64) {
	ScoringRunsTotal.Inc()
	ScoringDuration.Observe(durationSeconds)
}

// RecordWinnerEntered records a winner announcement.
func RecordWinnerEntered() {
	WinnersEnteredTotal.Inc()
}

// RecordFeedError records an odds feed request failure.
func RecordFeedError() {
	FeedErrorsTotal.Inc()
}

// RecordCircuitBreakerTrip records a feed circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateLastRefresh updates the last successful refresh timestamp.
func UpdateLastRefresh(unixSeconds float64) {
	LastOddsRefreshTimestamp.Set(unixSeconds)
}

// UpdateTrackedPairs updates the tracked pair count gauge.
func UpdateTrackedPairs(count int) {
	TrackedPairs.Set(float64(count))
}

// UpdateStreamConnected flags the stream connection state.
func UpdateStreamConnected(connected bool) {
	if connected {
		StreamConnected.Set(1)
	} else {
		StreamConnected.Set(0)
	}
}
