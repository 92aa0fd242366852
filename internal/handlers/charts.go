package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

type chartSection struct {
	dimension services.Dimension
	limit     int
}

var barSections = map[charts.Kind]chartSection{
	charts.KindRegions:    {services.DimensionRegion, 0},
	charts.KindStates:     {services.DimensionState, services.TopStatesLimit},
	charts.KindProducts:   {services.DimensionProduct, services.TopProductsLimit},
	charts.KindCategories: {services.DimensionCategory, 0},
}

type ChartHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewChartHandlers(analytics *services.Analytics, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleChart serves one dashboard chart as SVG for the filter in the query.
func (h *ChartHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	kind, err := charts.ParseKind(r.PathValue("chart"))
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	q := queryFromValues(r.URL.Query())
	f, err := q.Filter()
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}
	kpi, err := q.kpi()
	if err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	var buf bytes.Buffer
	if err := h.render(&buf, kind, q, f, kpi); err != nil {
		errors.WriteError(w, h.logger, appError(err), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *ChartHandlers) render(w io.Writer, kind charts.Kind, q filterQuery, f models.Filter, kpi models.KPI) error {
	title := kind.Title(kpi)

	if kind == charts.KindTimeSeries {
		g, err := q.granularity()
		if err != nil {
			return err
		}
		points, err := h.analytics.TimeSeries(f, g)
		if err != nil {
			return err
		}
		return charts.TimeSeries(w, title, points, kpi)
	}

	if kind == charts.KindSunburst {
		nodes, err := h.analytics.Sunburst(f)
		if err != nil {
			return err
		}
		return charts.Ring(w, title, nodes)
	}

	section := barSections[kind]
	rows, err := h.analytics.Breakdown(f, section.dimension, kpi, section.limit)
	if err != nil {
		return err
	}
	return charts.Bars(w, title, rows, kpi)
}
