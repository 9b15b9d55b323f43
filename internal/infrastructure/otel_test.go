package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider, "default config exports no traces")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.ObservabilityConfig{
		ServiceName:    "custom",
		TraceExporter:  "stdout",
		MetricsEnabled: false,
	})
	assert.Equal(t, "custom", cfg.ServiceName)
	assert.True(t, cfg.EnableTracing)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, "none", cfg.MetricExporter)

	cfg = OTelConfigFrom(config.Default().Observability)
	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.False(t, cfg.EnableTracing)
	assert.True(t, cfg.EnableMetrics)
}

func TestOTelDisabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "x"}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	// the no-op meter still hands out working instruments
	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordReconcileMetrics(context.Background(), metrics, "merge", time.Millisecond, nil)
}

func TestOTelUnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, quietLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{EnableMetrics: true, MetricExporter: "statsd"}, quietLogger())
	assert.Error(t, err)
}

func TestBusinessMetricsExported(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordReconcileMetrics(ctx, metrics, "merge", 20*time.Millisecond, nil)
	RecordReconcileMetrics(ctx, metrics, "pivot", 5*time.Millisecond, errors.New("boom"))
	RecordFileOutcome(ctx, metrics, "merge", FileOutcomeProcessed, 3)
	RecordFileOutcome(ctx, metrics, "pivot", FileOutcomeSkipped, 1)
	RecordFileOutcome(ctx, metrics, "pivot", FileOutcomeFailed, 0)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "reconcile_requests_total")
	assert.Contains(t, body, "reconcile_errors_total")
	assert.Contains(t, body, "reconcile_files_total")
	assert.Contains(t, body, `outcome="skipped"`)
	assert.NotContains(t, body, `outcome="failed"`)
}

func TestRecordHelpersNilSafe(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordReconcileMetrics(ctx, nil, "merge", time.Second, nil)
		RecordFileOutcome(ctx, nil, "merge", FileOutcomeProcessed, 1)
		RecordError(ctx, errors.New("no span"))
		AddSpanEvent(ctx, "event")
	})
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestTraceCorrelation(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "merge")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.NotPanics(t, func() {
		RecordError(ctx, errors.New("bad file"))
	})
}
