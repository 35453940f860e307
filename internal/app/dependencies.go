// Package app wires the services shared by the HTTP gateway and the MCP
// server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ishagupta145/mcp-server/internal/cache"
	"github.com/Ishagupta145/mcp-server/internal/config"
	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/metrics"
	"github.com/Ishagupta145/mcp-server/internal/models"
	"github.com/Ishagupta145/mcp-server/internal/repository"
	"github.com/Ishagupta145/mcp-server/internal/service"
)

const (
	mongoConnectTimeout = 10 * time.Second
	inMemoryLogCapacity = 1000
)

type Dependencies struct {
	Logger     *slog.Logger
	Exchanges  *exchange.Registry
	Prometheus *prometheus.Registry
	Metrics    *metrics.Metrics
	Realtime   service.RealtimeDataCache
	Historical service.HistoricalDataFetcher
	LogService service.LogService

	mongo *mongo.Client
}

func (d *Dependencies) Close() {
	if d == nil || d.mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	if err := d.mongo.Disconnect(ctx); err != nil {
		d.Logger.Warn("failed to disconnect from MongoDB", "error", err)
	}
}

func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Dependencies, err error) {
	deps := &Dependencies{Logger: logger}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	deps.Prometheus = prometheus.NewRegistry()
	deps.Prometheus.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.New(deps.Prometheus)

	deps.Exchanges = exchange.NewRegistry(exchange.Options{
		BinanceURL: cfg.Exchange.BinanceURL,
		BybitURL:   cfg.Exchange.BybitURL,
		Timeout:    cfg.Exchange.UpstreamTimeout,
	})
	if !deps.Exchanges.Supports(cfg.Exchange.Default) {
		return nil, fmt.Errorf("default exchange %q is not supported", cfg.Exchange.Default)
	}

	store := cache.New[string, models.TickerSnapshot](cache.Options{
		TTL:      cfg.Cache.TTL(),
		Capacity: cfg.Cache.Capacity,
	})
	deps.Realtime = service.NewRealtimeDataCache(deps.Exchanges, store, cfg.Exchange.UpstreamTimeout, deps.Metrics, logger)
	deps.Historical = service.NewHistoricalDataFetcher(deps.Exchanges, cfg.Exchange.UpstreamTimeout, deps.Metrics, logger)

	logRepo, err := deps.logRepository(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	deps.LogService = service.NewLogService(logRepo)

	return deps, nil
}

// logRepository uses MongoDB when a URI is configured and falls back to a
// bounded in-memory log otherwise.
func (d *Dependencies) logRepository(ctx context.Context, cfg config.MongoConfig) (repository.LogRepository, error) {
	if cfg.URI == "" {
		d.Logger.Info("MONGO_URI not set, keeping request logs in memory")
		return repository.NewInMemoryLogRepository(inMemoryLogCapacity), nil
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	d.mongo = client
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	d.Logger.Info("request logs stored in MongoDB", "database", cfg.Database, "collection", cfg.Collection)
	return repository.NewMongoLogRepository(client, cfg.Database, cfg.Collection), nil
}
