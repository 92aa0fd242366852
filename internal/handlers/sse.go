package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) readState(w http.ResponseWriter, r *http.Request) (templates.FilterState, bool) {
	var signals templates.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid datastar signals"),
			observability.GetRequestID(r.Context()))
		return templates.FilterState{}, false
	}
	return signals.FilterState(), true
}

// HandleOptions answers a change of one of the cascading selects: the option
// lists and date bounds are recomputed, stale selections reset to All, and
// the whole dashboard is refreshed for the new selection.
func (h *SSEHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	state, ok := h.readState(w, r)
	if !ok {
		return
	}

	view, err := buildDashboard(r.Context(), h.analytics, state, true)
	if err != nil {
		observability.LoggerFromContext(r.Context(), h.logger).Warn("filter rejected", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	h.patch(r.Context(), sse, view, templates.Filters(view), templates.Tiles(view), templates.Charts(view))
}

// HandleDashboard answers a change of the date range, the comparison toggle
// or the KPI selector.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	state, ok := h.readState(w, r)
	if !ok {
		return
	}

	view, err := buildDashboard(r.Context(), h.analytics, state, false)
	if err != nil {
		observability.LoggerFromContext(r.Context(), h.logger).Warn("filter rejected", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	h.patch(r.Context(), sse, view, templates.Tiles(view), templates.Charts(view))
}

func (h *SSEHandlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator, view templates.DashboardView, fragments ...templ.Component) {
	logger := observability.LoggerFromContext(ctx, h.logger)

	for _, fragment := range fragments {
		html, err := templates.RenderString(ctx, fragment)
		if err != nil {
			logger.Error("render fragment", "error", err)
			return
		}
		if err := sse.PatchElements(html); err != nil {
			logger.Warn("patch elements", "error", err)
			return
		}
	}

	signals, err := templates.SignalsJSON(view.Filters)
	if err != nil {
		logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		logger.Warn("patch signals", "error", err)
	}
}
