package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ishagupta145/mcp-server/internal/api"
	"github.com/Ishagupta145/mcp-server/internal/app"
	"github.com/Ishagupta145/mcp-server/internal/config"
	"github.com/Ishagupta145/mcp-server/internal/logging"
	"github.com/Ishagupta145/mcp-server/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// @title MCP Server - Cryptocurrency Market Data
// @version 1.0.0
// @description A server to fetch real-time and historical crypto data from exchanges.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	marketHandler := api.NewMarketHandler(deps.Realtime, deps.Historical, deps.LogService, deps.Exchanges, cfg.Exchange.Default, logger)
	logHandler := api.NewLogHandler(deps.LogService)
	api.SetupRoutes(r, marketHandler, logHandler, deps.Prometheus)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "address", srv.Addr, "default_exchange", cfg.Exchange.Default)
		logger.Info("Swagger UI available", "url", cfg.BaseURL+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Gracefully shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}
}
