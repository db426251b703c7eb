package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/city-dashboard/internal/board"
	"github.com/preston-bernstein/city-dashboard/internal/config"
	"github.com/preston-bernstein/city-dashboard/internal/dashboard"
	httpserver "github.com/preston-bernstein/city-dashboard/internal/http"
	"github.com/preston-bernstein/city-dashboard/internal/http/handlers"
	"github.com/preston-bernstein/city-dashboard/internal/http/middleware"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
	"github.com/preston-bernstein/city-dashboard/internal/metrics"
	"github.com/preston-bernstein/city-dashboard/internal/upstream"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	board         *board.Board
	banner        *board.Banner
	httpServer    httpServer
	metricsServer httpServer
	controller    Controller
	metricsStop   func(context.Context) error
}

// New constructs a server with the configured upstream client and poll loop.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithClient(cfg, logger, nil, nil)
}

// newServerWithClient wires every component; a nil client is built from cfg and
// a nil recorder is built from cfg.Metrics.
func newServerWithClient(cfg config.Config, logger *slog.Logger, client upstream.Client, recorder *metrics.Recorder) (*Server, error) {
	processing, analyzer, err := buildEndpoints(cfg)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	factory := newClientFactory(logger, recorder)
	if client == nil {
		client = factory.build(cfg)
	} else {
		client = factory.wrap(client)
	}

	slots := board.New(dashboard.Slots())
	banner := board.NewBanner(cfg.BannerTTL)
	ctrl := dashboard.New(client, slots, banner, logger, recorder, dashboard.Config{
		Processing: processing,
		Analyzer:   analyzer,
		Interval:   cfg.PollInterval,
		Overlap:    cfg.OverlapPolicy,
		Sample:     upstream.SampleConfig{IndexRange: cfg.SampleIndexRange},
	})
	httpSrv := buildHTTPServer(cfg, slots, banner, ctrl, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		board:         slots,
		banner:        banner,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		controller:    ctrl,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, ctrl Controller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		controller: ctrl,
	}
}

func buildHTTPServer(cfg config.Config, slots *board.Board, banner *board.Banner, ctrl *dashboard.Controller, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := handlers.NewHandler(slots, banner, logger, ctrl.Status)
	var admin *handlers.AdminHandler
	if cfg.AdminToken != "" {
		admin = handlers.NewAdminHandler(ctrl.RunCycle, cfg.AdminToken, logger)
	}
	router := httpserver.NewRouter(handler, admin)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the poll loop and HTTP servers, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.controller.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.controller.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop dashboard controller", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}
	if !cfg.Metrics.Enabled {
		return metrics.NewRecorder(), nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
