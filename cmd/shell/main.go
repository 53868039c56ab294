package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/config"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/server"
)

func main() {
	appsRoot := flag.String("apps", "", "Apps root directory (overrides APPS_ROOT)")
	port := flag.String("port", "", "Control API port (overrides PORT)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *appsRoot != "" {
		cfg.Apps.Root = *appsRoot
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Fatal("failed to build server", zap.Error(err))
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := srv.Supervisor().Discover(ctx)
	if err != nil {
		log.Warn("initial discovery failed", zap.Error(err))
	} else {
		log.Info("apps discovered",
			zap.Int("scanned", report.Scanned),
			zap.Int("loaded", len(report.Loaded)),
			zap.Int("failed", len(report.Failures)))
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
