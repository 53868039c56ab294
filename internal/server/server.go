package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/api/middleware"
	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	httpapi "github.com/mecattaf/web-shell-sub003/internal/http"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/config"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/monitoring"
	"github.com/mecattaf/web-shell-sub003/internal/providers/calendar"
	"github.com/mecattaf/web-shell-sub003/internal/providers/clipboard"
	"github.com/mecattaf/web-shell-sub003/internal/providers/filesystem"
	"github.com/mecattaf/web-shell-sub003/internal/providers/network"
	"github.com/mecattaf/web-shell-sub003/internal/providers/notifications"
	"github.com/mecattaf/web-shell-sub003/internal/providers/processes"
	"github.com/mecattaf/web-shell-sub003/internal/renderer"
	"github.com/mecattaf/web-shell-sub003/internal/shared/paths"
	"github.com/mecattaf/web-shell-sub003/internal/supervisor"
	"github.com/mecattaf/web-shell-sub003/internal/window"
	"github.com/mecattaf/web-shell-sub003/internal/ws"
)

// Server wraps the control API and all host subsystems.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	cfg        *config.Config
	log        *logging.Logger
	metrics    *monitoring.Metrics
	bus        *events.Bus
	caps       *capability.Registry
	windows    *window.Registry
	focus      *window.FocusCoordinator
	supervisor *supervisor.Supervisor
	bridge     *bridge.Bridge
	fsProvider *filesystem.Provider
	netProv    *network.Provider
}

// NewServer builds a fully wired host from configuration.
func NewServer(cfg *config.Config, log *logging.Logger) (*Server, error) {
	metrics := monitoring.NewMetrics()
	bus := events.NewBus()

	caps := capability.NewRegistry(bus, log).WithMetrics(metrics)
	windows := window.NewRegistry(log)
	focus := window.NewFocusCoordinator(windows, bus, log).
		WithMetrics(metrics).
		WithHistorySize(cfg.Focus.HistorySize)

	headless := renderer.NewHeadless()
	bundles := renderer.NewBundleServer()

	appsRoot := paths.ExpandHome(cfg.Apps.Root)
	if cfg.Apps.Root == "" {
		appsRoot = paths.AppsRoot()
	}
	supCfg := supervisor.Config{
		AppsRoot:         appsRoot,
		CandidateTimeout: cfg.Apps.DiscoveryTimeout,
		PerInstanceMB:    cfg.Apps.PerInstanceMB,
		BaselineMB:       cfg.Apps.BaselineMB,
	}
	sup := supervisor.New(supCfg, caps, windows, focus, headless, bus, log).
		WithMetrics(metrics).
		WithBundleServer(bundles)

	b := bridge.New(caps, log)
	fsProvider := filesystem.NewProvider(bus, log)
	netProvider := network.NewProvider()
	for _, p := range []bridge.Provider{
		calendar.NewProvider(),
		fsProvider,
		netProvider,
		notifications.NewProvider(bus),
		clipboard.NewProvider(),
		processes.NewProvider(),
	} {
		if err := b.Register(p); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(sup, caps, windows, focus, b)
	wsHandler := ws.NewHandler(bus, log).WithMetrics(metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/apps", handlers.ListApps)
	router.POST("/apps/scan", handlers.ScanApps)
	router.GET("/apps/:id", handlers.GetApp)
	router.POST("/apps/:id/launch", handlers.LaunchApp)
	router.POST("/apps/:id/reload", handlers.ReloadApp)
	router.DELETE("/apps/:id", handlers.CloseApp)

	router.GET("/capabilities/:id", handlers.GetCapabilities)
	router.GET("/capabilities/:id/audit", handlers.GetAudit)

	router.GET("/windows", handlers.ListWindows)
	router.POST("/windows/:id/focus", handlers.FocusWindow)
	router.GET("/focus", handlers.FocusState)
	router.POST("/focus/next", handlers.FocusNext)
	router.POST("/focus/prev", handlers.FocusPrev)

	router.GET("/services", handlers.ListServices)
	router.POST("/services/call", handlers.CallService)

	router.GET("/bundles/:id/*filepath", bundles.Handler)

	router.GET("/stream", wsHandler.Stream)

	return &Server{
		router:     router,
		cfg:        cfg,
		log:        log,
		metrics:    metrics,
		bus:        bus,
		caps:       caps,
		windows:    windows,
		focus:      focus,
		supervisor: sup,
		bridge:     b,
		fsProvider: fsProvider,
		netProv:    netProvider,
	}, nil
}

// Supervisor exposes the app supervisor for startup discovery.
func (s *Server) Supervisor() *supervisor.Supervisor {
	return s.supervisor
}

// Run serves the control API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("control API listening", zap.String("addr", addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Close releases provider resources.
func (s *Server) Close() error {
	if err := s.fsProvider.Close(); err != nil {
		s.log.Warn("closing filesystem watches", zap.Error(err))
	}
	if err := s.netProv.Close(); err != nil {
		s.log.Warn("closing network sockets", zap.Error(err))
	}
	return nil
}
