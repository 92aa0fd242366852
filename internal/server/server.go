package server

import (
	"log/slog"
	"net/http"

	"superstore-dashboard/internal/handlers"
	"superstore-dashboard/internal/services"
)

type Server struct {
	analytics     *services.Analytics
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	chartHandlers *handlers.ChartHandlers
	pageHandlers  *handlers.PageHandlers
}

// Extras are handlers owned outside the server, such as the metrics
// exposition. Nil entries are not routed.
type Extras struct {
	Metrics http.Handler
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, extras Extras) *Server {
	s := &Server{
		analytics:     analytics,
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:   handlers.NewSSEHandlers(analytics, logger),
		chartHandlers: handlers.NewChartHandlers(analytics, logger),
		pageHandlers:  handlers.NewPageHandlers(analytics, logger),
	}
	s.setupRoutes(extras)
	return s
}

func (s *Server) setupRoutes(extras Extras) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if extras.Metrics != nil {
		s.mux.Handle("GET /metrics", extras.Metrics)
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/timeseries", s.apiHandlers.HandleTimeSeries)
	s.mux.HandleFunc("GET /api/breakdown/{dimension}", s.apiHandlers.HandleBreakdown)
	s.mux.HandleFunc("GET /api/sunburst", s.apiHandlers.HandleSunburst)
	s.mux.HandleFunc("GET /api/snapshot", s.apiHandlers.HandleSnapshot)

	// Chart images
	s.mux.HandleFunc("GET /charts/{chart}", s.chartHandlers.HandleChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/options", s.sseHandlers.HandleOptions)
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
