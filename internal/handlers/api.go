package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, appError(err), observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	f, err := queryFromValues(r.URL.Query()).Filter()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.Options(f), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	f, err := queryFromValues(r.URL.Query()).Filter()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.analytics.KPIs(f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, summary, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	q := queryFromValues(r.URL.Query())
	f, err := q.Filter()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	g, err := q.granularity()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	points, err := h.analytics.TimeSeries(f, g)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, points, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	dim, err := services.ParseDimension(r.PathValue("dimension"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := queryFromValues(r.URL.Query())
	f, err := q.Filter()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	kpi, err := q.kpi()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rows, err := h.analytics.Breakdown(f, dim, kpi, q.limit(0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, rows, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleSunburst(w http.ResponseWriter, r *http.Request) {
	f, err := queryFromValues(r.URL.Query()).Filter()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	nodes, err := h.analytics.Sunburst(f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, nodes, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := queryFromValues(r.URL.Query())
	f, err := q.Filter()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	kpi, err := q.kpi()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	snap, err := h.analytics.Snapshot(r.Context(), f, kpi)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, snap)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	records := h.analytics.Len()
	if records == 0 {
		h.fail(w, r, errors.ServiceUnavailable("dataset not loaded"))
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   observability.ServiceVersion,
		"records":   records,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
