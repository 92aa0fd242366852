package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/config"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("dataset reloaded", "records", 9994)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "dataset reloaded", entry["msg"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.EqualValues(t, 9994, entry["records"])
	assert.Contains(t, entry, "source")
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.LoggerConfig{Level: "debug", Format: "text"}, &buf).Debug("parsing rows")
	assert.Contains(t, buf.String(), "msg=\"parsing rows\"")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	LoggerFromContext(ctx, logger).Info("x")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func TestInitTracingNone(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Exporter: "none"}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingUnsupported(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Exporter: "jaeger"}, nil)
	assert.Error(t, err)
}

func TestInitTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Exporter: "stdout", SampleRatio: 1}, &buf)
	require.NoError(t, err)

	ctx, span := Tracer().Start(context.Background(), "analytics.Snapshot")
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "analytics.Snapshot")
	assert.Contains(t, buf.String(), ServiceName)
}

func TestTraceIDWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(http.MethodGet, "/api/kpis", http.StatusOK, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/kpis", http.StatusOK, 5*time.Millisecond)
	m.ObserveLoad(9994, 2*time.Second)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				values[mf.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.Equal(t, 2.0, values["superstore_http_requests_total"])
	assert.Equal(t, 2.0, values["superstore_http_request_duration_seconds"])
	assert.Equal(t, 9994.0, values["superstore_dataset_records"])
	assert.Equal(t, 1.0, values["superstore_dataset_load_duration_seconds"])

	m.ObserveLoad(10, time.Second)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "superstore_dataset_records 10")
}
