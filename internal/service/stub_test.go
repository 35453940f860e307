package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/metrics"
)

type stubClient struct {
	id         string
	markets    map[string]exchange.Market
	timeframes map[string]string
	ticker     func(symbol string) (*exchange.Ticker, error)
	ohlcv      []exchange.OHLCV
	ohlcvErr   error
	delay      time.Duration

	loadCalls   *atomic.Int32
	tickerCalls *atomic.Int32
	ohlcvCalls  *atomic.Int32
	closeCalls  *atomic.Int32
}

func (c *stubClient) ID() string { return c.id }

func (c *stubClient) LoadMarkets(ctx context.Context) error {
	c.loadCalls.Add(1)
	return nil
}

func (c *stubClient) Markets() map[string]exchange.Market { return c.markets }

func (c *stubClient) Timeframes() map[string]string { return c.timeframes }

func (c *stubClient) FetchTicker(ctx context.Context, symbol string) (*exchange.Ticker, error) {
	c.tickerCalls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, &exchange.NetworkError{Exchange: c.id, Err: ctx.Err()}
		}
	}
	return c.ticker(symbol)
}

func (c *stubClient) FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]exchange.OHLCV, error) {
	c.ohlcvCalls.Add(1)
	return c.ohlcv, c.ohlcvErr
}

func (c *stubClient) Close() error {
	c.closeCalls.Add(1)
	return nil
}

// stubFactory hands out clients built from template and aggregates their call
// counters.
type stubFactory struct {
	mu          sync.Mutex
	template    stubClient
	newCalls    atomic.Int32
	loadCalls   atomic.Int32
	tickerCalls atomic.Int32
	ohlcvCalls  atomic.Int32
	closeCalls  atomic.Int32
}

func (f *stubFactory) Exchanges() []string { return []string{"binance"} }

func (f *stubFactory) NewClient(id string) (exchange.Client, error) {
	if id != "binance" {
		return nil, exchange.ErrUnsupportedExchange
	}
	f.newCalls.Add(1)
	f.mu.Lock()
	c := f.template
	f.mu.Unlock()
	c.id = id
	c.loadCalls = &f.loadCalls
	c.tickerCalls = &f.tickerCalls
	c.ohlcvCalls = &f.ohlcvCalls
	c.closeCalls = &f.closeCalls
	return &c, nil
}

func (f *stubFactory) setTicker(fn func(symbol string) (*exchange.Ticker, error)) {
	f.mu.Lock()
	f.template.ticker = fn
	f.mu.Unlock()
}

func exampleTicker(symbol string) (*exchange.Ticker, error) {
	return &exchange.Ticker{
		Symbol:     symbol,
		Timestamp:  1678886400000,
		Datetime:   "2023-03-15T12:00:00.000Z",
		Last:       25000.0,
		BaseVolume: 1000.0,
	}, nil
}

func newStubFactory() *stubFactory {
	return &stubFactory{template: stubClient{
		markets: map[string]exchange.Market{
			"BTC/USDT": {ID: "BTCUSDT", Symbol: "BTC/USDT", Base: "BTC", Quote: "USDT", Active: true},
		},
		timeframes: map[string]string{"1m": "1m", "1h": "1h", "1d": "1d"},
		ticker:     exampleTicker,
	}}
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
