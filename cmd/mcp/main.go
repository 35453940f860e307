package main

import (
	"context"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Ishagupta145/mcp-server/internal/app"
	"github.com/Ishagupta145/mcp-server/internal/config"
	"github.com/Ishagupta145/mcp-server/internal/logging"
	"github.com/Ishagupta145/mcp-server/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// stdout carries the MCP protocol
	logger := logging.NewWithWriter(cfg.Env, os.Stderr)

	deps, err := app.NewDependencies(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	s := server.NewMCPServer(
		"Crypto Market Data MCP",
		"1.0.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	s.AddTool(tools.NewTickerTool(), tools.TickerHandler(deps.Realtime, cfg.Exchange.Default))
	s.AddTool(tools.NewHistoricalTool(), tools.HistoricalHandler(deps.Historical, cfg.Exchange.Default))
	logger.Info("Registered MCP tools", "default_exchange", cfg.Exchange.Default)

	logger.Info("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Error("server error", "error", err)
	}
}
