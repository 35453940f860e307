package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/metrics"
	"github.com/Ishagupta145/mcp-server/internal/models"
)

// HistoricalDataFetcher forwards OHLCV requests upstream. Results are not
// cached: since and limit make the key space unbounded.
type HistoricalDataFetcher interface {
	Fetch(ctx context.Context, exchangeID, symbol, timeframe string, since *int64, limit int) ([]models.Candle, error)
}

type historicalDataFetcher struct {
	factory exchange.Factory
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHistoricalDataFetcher(factory exchange.Factory, upstreamTimeout time.Duration, m *metrics.Metrics, logger *slog.Logger) HistoricalDataFetcher {
	if upstreamTimeout <= 0 {
		upstreamTimeout = exchange.DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &historicalDataFetcher{
		factory: factory,
		timeout: upstreamTimeout,
		metrics: m,
		logger:  logger,
	}
}

func (f *historicalDataFetcher) Fetch(ctx context.Context, exchangeID, symbol, timeframe string, since *int64, limit int) (candles []models.Candle, err error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	defer func() { observeUpstream(f.metrics, exchangeID, "fetch_ohlcv", start, err) }()

	client, err := f.factory.NewClient(exchangeID)
	if err != nil {
		return nil, translateError(err, exchangeID, symbol)
	}
	defer closeClient(client, f.logger)

	timeframes := client.Timeframes()
	if _, ok := timeframes[timeframe]; !ok {
		return nil, models.NewDataFetchError(fmt.Sprintf(
			"Timeframe '%s' not supported by %s. Supported: %s",
			timeframe, exchangeID, strings.Join(sortTimeframes(timeframes), ", "),
		))
	}

	rows, err := client.FetchOHLCV(ctx, symbol, timeframe, since, limit)
	if err != nil {
		f.logger.Warn("ohlcv fetch failed", "exchange", exchangeID, "symbol", symbol, "timeframe", timeframe, "error", err)
		return nil, translateError(err, exchangeID, symbol)
	}

	// An empty answer without a start time is ambiguous: tell "no data" apart
	// from "no such market".
	if len(rows) == 0 && since == nil {
		if err := client.LoadMarkets(ctx); err != nil {
			return nil, translateError(err, exchangeID, symbol)
		}
		if _, ok := client.Markets()[symbol]; !ok {
			return nil, translateError(exchange.ErrBadSymbol, exchangeID, symbol)
		}
	}

	candles = make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candles = append(candles, models.Candle{
			Timestamp: int64(row[0]),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
			Volume:    row[5],
		})
	}
	return candles, nil
}

var timeframeUnits = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 60 * 60,
	'd': 24 * 60 * 60,
	'w': 7 * 24 * 60 * 60,
	'M': 30 * 24 * 60 * 60,
	'y': 365 * 24 * 60 * 60,
}

// timeframeSeconds returns -1 for codes it cannot parse.
func timeframeSeconds(code string) int64 {
	if len(code) < 2 {
		return -1
	}
	unit, ok := timeframeUnits[code[len(code)-1]]
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(code[:len(code)-1], 10, 64)
	if err != nil {
		return -1
	}
	return n * unit
}

func sortTimeframes(timeframes map[string]string) []string {
	codes := make([]string, 0, len(timeframes))
	for code := range timeframes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		si, sj := timeframeSeconds(codes[i]), timeframeSeconds(codes[j])
		if si != sj {
			return si < sj
		}
		return codes[i] < codes[j]
	})
	return codes
}
