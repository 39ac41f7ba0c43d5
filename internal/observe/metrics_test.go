package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordTurn(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTurn(ctx, "defense", "ok", "", 1.5)
	m.RecordTurn(ctx, "defense", "error", "empty_extraction", 0.2)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "pokedex.turns")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "pokedex.turn.errors")))

	h := findMetric(rm, "pokedex.turn.duration")
	require.NotNil(t, h)
	hist, ok := h.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestRefinerCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRefinerRetry(ctx)
	m.RecordRefinerRetry(ctx)
	m.RecordRefinerDrop(ctx)
	m.RecordToolCall(ctx, "pokemon_api_lookup", "ok")

	rm := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "pokedex.refiner.retries")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "pokedex.refiner.drops")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "pokedex.tool.calls")))
}

func TestMiddlewareRecordsDuration(t *testing.T) {
	m, reader := newTestMetrics(t)
	h := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	assert.NotNil(t, findMetric(collect(t, reader), "pokedex.http.request.duration"))
}
