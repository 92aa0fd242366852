package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

// buildDashboard resolves a browser filter state into the full page view.
// Selections the cascade no longer offers fall back to All. With resetDates
// the date inputs jump to the bounds of the new selection. A rejected filter
// still yields a view, carrying the message and zero tiles, together with the
// error.
func buildDashboard(ctx context.Context, a *services.Analytics, state templates.FilterState, resetDates bool) (templates.DashboardView, error) {
	fixed, opts := a.Reconcile(models.Filter{
		Region:      state.Region,
		State:       state.State,
		Category:    state.Category,
		SubCategory: state.SubCategory,
	})
	state.Region = fixed.Region
	state.State = fixed.State
	state.Category = fixed.Category
	state.SubCategory = fixed.SubCategory

	if resetDates && !opts.MinDate.IsZero() {
		state.From = opts.MinDate.Format(models.DateLayout)
		state.To = opts.MaxDate.Format(models.DateLayout)
	}

	q := queryFromState(state)
	f, err := q.Filter()
	if err != nil {
		return templates.NewDashboardView(state, opts, nil, appError(err).Message), err
	}
	kpi, err := q.kpi()
	if err != nil {
		kpi = models.KPISales
	}

	snap, err := a.Snapshot(ctx, f, kpi)
	if err != nil {
		return templates.NewDashboardView(state, opts, nil, appError(err).Message), err
	}
	return templates.NewDashboardView(state, opts, snap, ""), nil
}

// stateFromRequest reads a filter state from the page URL, so filtered views
// can be bookmarked.
func stateFromRequest(r *http.Request) templates.FilterState {
	q := queryFromValues(r.URL.Query())
	compare := q.Compare == "true" || q.Compare == "1"
	return templates.FilterState{
		Region:      q.Region,
		State:       q.State,
		Category:    q.Category,
		SubCategory: q.SubCategory,
		From:        q.From,
		To:          q.To,
		Compare:     compare,
		KPI:         q.KPI,
	}
}

type PageHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	view, err := buildDashboard(ctx, h.analytics, stateFromRequest(r), false)
	if err != nil {
		observability.LoggerFromContext(ctx, h.logger).Warn("dashboard filter rejected", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := templates.Dashboard(view).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
