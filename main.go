package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/FACorreiaa/aid-map/internal/pkg/config"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/internal/routes"
	"github.com/FACorreiaa/aid-map/internal/server"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration (.env files are read here)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), zap.String("service", cfg.Observability.ServiceName)); err != nil {
		return err
	}
	defer func() { _ = logger.Log.Sync() }()
	zl := logger.Log

	// Initialize observability
	otelShutdown, err := server.InitObservability(cfg.Observability, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			zl.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv := server.New(cfg, zl)
	router := server.SetupRouter(cfg, routes.NewAppHandlers(env.OS{}, zl), zl)
	srv.SetRouter(router)

	// Start pprof server (on separate port, not exposed publicly)
	if cfg.Observability.PprofEnabled {
		pprofServer := server.StartPprofServer(cfg.Observability.PprofAddr, zl)
		defer pprofServer.Close()
	}

	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(context.Background(), httpServer, zl, done)

	zl.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("env", cfg.AppEnv))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Error("Server error", zap.Error(err))
		return err
	}

	<-done
	zl.Info("Graceful shutdown complete")

	return nil
}
