package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sseRequest(path, signals string) *http.Request {
	target := path
	if signals != "" {
		target += "?datastar=" + url.QueryEscape(signals)
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := sseRequest("/sse/dashboard", `{"region":"West","state":"All","category":"All","subCategory":"All","from":"2024-01-01","to":"2024-01-31","compare":true,"kpi":"Profit"}`)
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
		t.Error("response should contain SSE event format")
	}
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, `id="kpi-tiles"`)
	assert.Contains(t, body, `id="charts"`)
	assert.Contains(t, body, "$300.00")
	assert.Contains(t, body, "Top 10 Products by Profit")
	assert.NotContains(t, body, `id="filters"`)
}

func TestSSEHandlers_HandleDashboardEmptySelection(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := sseRequest("/sse/dashboard", `{"region":"West","from":"2022-01-01","to":"2022-01-31","kpi":"Sales"}`)
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "No data available for the selected filters and date range.")
	assert.Contains(t, body, "$0.00")
	assert.NotContains(t, body, "<img")
}

func TestSSEHandlers_HandleDashboardInvalidRange(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := sseRequest("/sse/dashboard", `{"from":"2024-02-01","to":"2024-01-01"}`)
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	assert.Contains(t, w.Body.String(), "From Date must be earlier than To Date.")
}

func TestSSEHandlers_HandleOptionsResetsStaleSelection(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	// New York is not in the West region, so the state falls back to All
	// and the dates jump to the West bounds.
	req := sseRequest("/sse/options", `{"region":"West","state":"New York","category":"All","subCategory":"All","kpi":"Sales"}`)
	w := httptest.NewRecorder()
	handlers.HandleOptions(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `id="filters"`)
	assert.Contains(t, body, `<option value="California">California</option>`)
	assert.NotContains(t, body, `<option value="New York"`)
	assert.Contains(t, body, `"state":"All"`)
	assert.Contains(t, body, `"from":"2024-01-05"`)
	assert.Contains(t, body, `"to":"2024-01-10"`)
}

func TestSSEHandlers_NoSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := sseRequest("/sse/dashboard", "")
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	assert.Contains(t, w.Body.String(), "$650.00")
}

func TestSSEHandlers_BadSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := sseRequest("/sse/dashboard", `{"region":`)
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
