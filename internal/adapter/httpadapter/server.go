package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// Dashboard is the command surface the API serves.
type Dashboard interface {
	sharedobs.ReadinessChecker
	DefaultRange() domain.DateRange
	CurrentView() *dashboard.View
	Update(ctx context.Context, req dashboard.UpdateRequest) (*dashboard.View, error)
	SelectCity(ctx context.Context, req dashboard.SelectRequest) (*dashboard.CityPanel, error)
	Chart(ctx context.Context, req dashboard.ChartRequest) (*dashboard.ChartData, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes and /healthz, /readyz,
// and /metrics.
func NewServer(addr string, d Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: d,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(d))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/range", s.handleRange)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("POST /api/update", s.handleUpdate)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/cities/{state}/{city}", s.handleCity)
	mux.HandleFunc("GET /api/cities/{state}/{city}/series", s.handleSeries)
	mux.HandleFunc("GET /api/cities/{state}/{city}/chart.svg", s.handleChartSVG)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
