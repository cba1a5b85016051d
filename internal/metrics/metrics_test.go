package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordSnapshots(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSnapshots(150)
	})
}

func TestRecordRefresh(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		outcome string
	}{
		{
			name:    "successful refresh",
			outcome: "success",
		},
		{
			name:    "failed refresh",
			outcome: "error",
		},
		{
			name:    "skipped refresh",
			outcome: "skipped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordRefresh(tt.outcome, 1.25)
			})
		})
	}
}

func TestRecordUpgrade(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordUpgrade("applied")
	})

	assert.NotPanics(t, func() {
		RecordUpgrade("unchanged")
	})

	assert.NotPanics(t, func() {
		RecordUpgrade("failed")
	})
}

func TestRecordScoringRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordScoringRun(0.002)
	})
}

func TestStreamConnectedGauge(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		UpdateStreamConnected(true)
		UpdateStreamConnected(false)
	})
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCircuitBreakerTrip()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func BenchmarkRecordPredictionWritten(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPredictionWritten()
	}
}

func BenchmarkRecordScoringRun(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordScoringRun(0.001)
	}
}
