package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/cache"
	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/metrics"
	"github.com/Ishagupta145/mcp-server/internal/models"
)

// RealtimeDataCache serves ticker snapshots through a TTL cache and makes
// sure at most one upstream call per key is in flight. Misses are filled
// under a single cache-wide lock, so a slow upstream call for one key also
// delays misses for unrelated keys.
type RealtimeDataCache interface {
	Fetch(ctx context.Context, exchangeID, symbol string) (*models.TickerSnapshot, error)
	Len() int
	Purge()
}

// realtimeDataCache populates misses under a single cache-wide lock held for
// the whole upstream call. This serializes misses for unrelated keys as well,
// which is acceptable while misses are rare (one per key per TTL) and fast.
// The lock is a one-slot channel so that waiters can give up when their
// context ends.
type realtimeDataCache struct {
	factory exchange.Factory
	store   *cache.Store[string, models.TickerSnapshot]
	lock    chan struct{}
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewRealtimeDataCache(
	factory exchange.Factory,
	store *cache.Store[string, models.TickerSnapshot],
	upstreamTimeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) RealtimeDataCache {
	if upstreamTimeout <= 0 {
		upstreamTimeout = exchange.DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &realtimeDataCache{
		factory: factory,
		store:   store,
		lock:    make(chan struct{}, 1),
		timeout: upstreamTimeout,
		metrics: m,
		logger:  logger,
	}
}

func cacheKey(exchangeID, symbol string) string {
	return exchangeID + ":" + symbol
}

// Fetch expects symbol already normalized to "BASE/QUOTE".
func (c *realtimeDataCache) Fetch(ctx context.Context, exchangeID, symbol string) (*models.TickerSnapshot, error) {
	key := cacheKey(exchangeID, symbol)

	if snap, ok := c.store.Get(key); ok {
		c.metrics.CacheHitsTotal.WithLabelValues(exchangeID).Inc()
		return &snap, nil
	}

	select {
	case c.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, models.NewDataFetchError(fmt.Sprintf("Request cancelled while waiting for ticker refresh: %v", ctx.Err()))
	}
	defer func() { <-c.lock }()

	// another caller may have filled the key while we waited
	if snap, ok := c.store.Get(key); ok {
		c.metrics.CacheHitsTotal.WithLabelValues(exchangeID).Inc()
		return &snap, nil
	}
	c.metrics.CacheMissesTotal.WithLabelValues(exchangeID).Inc()
	c.logger.Debug("ticker cache miss", "exchange", exchangeID, "symbol", symbol)

	snap, err := c.fetchUpstream(ctx, exchangeID, symbol)
	if err != nil {
		c.logger.Warn("ticker fetch failed", "exchange", exchangeID, "symbol", symbol, "error", err)
		return nil, err
	}

	if c.store.Set(key, *snap) {
		c.metrics.CacheEvictions.Inc()
	}
	c.metrics.CacheEntries.Set(float64(c.store.Len()))
	return snap, nil
}

func (c *realtimeDataCache) fetchUpstream(ctx context.Context, exchangeID, symbol string) (snap *models.TickerSnapshot, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() { observeUpstream(c.metrics, exchangeID, "fetch_ticker", start, err) }()

	client, err := c.factory.NewClient(exchangeID)
	if err != nil {
		return nil, translateError(err, exchangeID, symbol)
	}
	defer closeClient(client, c.logger)

	if err := client.LoadMarkets(ctx); err != nil {
		return nil, translateError(err, exchangeID, symbol)
	}
	ticker, err := client.FetchTicker(ctx, symbol)
	if err != nil {
		return nil, translateError(err, exchangeID, symbol)
	}

	return &models.TickerSnapshot{
		Symbol:    ticker.Symbol,
		Timestamp: ticker.Timestamp,
		Datetime:  ticker.Datetime,
		Last:      ticker.Last,
		Volume:    ticker.BaseVolume,
	}, nil
}

func (c *realtimeDataCache) Len() int {
	return c.store.Len()
}

func (c *realtimeDataCache) Purge() {
	c.store.Purge()
	c.metrics.CacheEntries.Set(0)
}
