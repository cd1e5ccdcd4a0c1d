// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/newthinker/sigchart/internal/api/handler/api"
	"github.com/newthinker/sigchart/internal/api/handler/web"
	"github.com/newthinker/sigchart/internal/api/middleware"
	"github.com/newthinker/sigchart/internal/metrics"
	"github.com/newthinker/sigchart/internal/session"
	"github.com/newthinker/sigchart/internal/storage/source"
)

// Server represents the HTTP server for sigchart
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	StaticDir    string

	MetricsEnabled bool
	MetricsPath    string

	MaxUploadBytes int64
	UploadRate     float64
	UploadBurst    int

	OverlayEnabled bool
	OHLCVFile      string
	TradesFile     string
}

// Dependencies holds the components the handlers are built from.
type Dependencies struct {
	Processor apihandler.Processor
	Store     *session.Store
	Source    source.Source
	Metrics   *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Store == nil {
		deps.Store = session.NewStore()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}

	mux := http.NewServeMux()

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	handler = metrics.LoggingMiddleware(logger)(handler)

	s := &Server{
		// No WriteTimeout: hover connections are long-lived WebSockets.
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	// Web UI routes
	webHandler, err := web.NewHandler(cfg.TemplatesDir, web.PageOptions{
		OverlayEnabled: cfg.OverlayEnabled,
		MaxUploadBytes: cfg.MaxUploadBytes,
		OHLCVFile:      cfg.OHLCVFile,
		TradesFile:     cfg.TradesFile,
	})
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	s.mux.HandleFunc("GET /{$}", webHandler.Chart)

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
		} else {
			s.logger.Debug("static dir not found, skipping", zap.String("dir", cfg.StaticDir))
		}
	}

	// Chart routes
	chartHandler := apihandler.NewChartHandler(deps.Processor, deps.Store, deps.Source, apihandler.ChartConfig{
		OHLCVFile:  cfg.OHLCVFile,
		TradesFile: cfg.TradesFile,
	}, s.logger)

	upload := middleware.RateLimit(cfg.UploadRate, cfg.UploadBurst)(
		middleware.MaxBytes(cfg.MaxUploadBytes)(http.HandlerFunc(chartHandler.Upload)))
	s.mux.Handle("POST /api/v1/chart", upload)
	s.mux.HandleFunc("GET /api/v1/chart", chartHandler.Current)
	s.mux.HandleFunc("GET /api/v1/chart/default", chartHandler.Default)

	levelsHandler := apihandler.NewLevelsHandler(deps.Store)
	s.mux.HandleFunc("GET /api/v1/levels", levelsHandler.Get)

	hoverHandler := apihandler.NewHoverHandler(deps.Store, cfg.OverlayEnabled, deps.Metrics, s.logger)
	s.mux.HandleFunc("GET /api/v1/hover", hoverHandler.Serve)

	// Raw dataset routes
	dataHandler := apihandler.NewDataHandler(deps.Source, s.logger)
	s.mux.HandleFunc("GET /data/{name}", dataHandler.File)
	s.mux.HandleFunc("GET /api/v1/data", dataHandler.List)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	return nil
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
