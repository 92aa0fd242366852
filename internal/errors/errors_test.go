package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		CodeInternal:       http.StatusInternalServerError,
		CodeValidation:     http.StatusBadRequest,
		CodeBadRequest:     http.StatusBadRequest,
		CodeNotFound:       http.StatusNotFound,
		CodeNoData:         http.StatusNotFound,
		CodeRateLimit:      http.StatusTooManyRequests,
		CodeServiceUnavail: http.StatusServiceUnavailable,
		ErrorCode("BOGUS"): http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.Status(), code)
		assert.Equal(t, want, New(code, "x").StatusCode, code)
	}
}

func TestWrapChain(t *testing.T) {
	cause := stderrors.New("from date is after to date")
	err := ValidationWrap(cause, "From Date must be earlier than To Date.")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "VALIDATION_ERROR: From Date must be earlier than To Date.: from date is after to date", err.Error())
	assert.Equal(t, "NOT_FOUND: missing", NotFound("missing").Error())
}

func TestAs(t *testing.T) {
	inner := NoData("nothing selected")
	got := As(fmt.Errorf("render: %w", inner))
	assert.Same(t, inner, got)

	plain := stderrors.New("disk full")
	got = As(plain)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, plain)
}

func TestWriteError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	w := httptest.NewRecorder()
	WriteError(w, logger, BadRequestWrap(stderrors.New("unknown KPI"), "unknown KPI").
		WithDetails(`"revenue" is not a KPI`), "req-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Retry-After"))

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			Details   string `json:"details"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
	assert.Equal(t, "unknown KPI", resp.Error.Message)
	assert.Equal(t, `"revenue" is not a KPI`, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), `"request_id":"req-1"`)
}

func TestWriteErrorRetryAfter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w := httptest.NewRecorder()
	WriteError(w, logger, ServiceUnavailable("dataset not loaded"), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	w = httptest.NewRecorder()
	WriteError(w, logger, RateLimit("Too many requests"), "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestWriteErrorPlainError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	w := httptest.NewRecorder()
	WriteError(w, logger, stderrors.New("boom"), "req-2")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.NotContains(t, w.Body.String(), "boom")
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.Contains(t, logs.String(), "boom")
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"records": 3}, map[string]string{
		"Cache-Control": "public, max-age=300",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"records":3},"success":true}`, w.Body.String())
}
