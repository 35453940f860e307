package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	BybitAPIBase       = "https://api.bybit.com"
	bybitInstruments   = "/v5/market/instruments-info"
	bybitTickers       = "/v5/market/tickers"
	bybitKline         = "/v5/market/kline"
	bybitSpotCategory  = "spot"
	bybitTradingStatus = "Trading"
)

var bybitTimeframes = map[string]string{
	"1m": "1", "3m": "3", "5m": "5", "15m": "15", "30m": "30",
	"1h": "60", "2h": "120", "4h": "240", "6h": "360", "12h": "720",
	"1d": "D", "1w": "W", "1M": "M",
}

type bybitEnvelope[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
	Time    int64  `json:"time"`
}

type bybitInstrumentsResult struct {
	List []struct {
		Symbol    string `json:"symbol"`
		BaseCoin  string `json:"baseCoin"`
		QuoteCoin string `json:"quoteCoin"`
		Status    string `json:"status"`
	} `json:"list"`
}

type bybitTickersResult struct {
	List []struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
		Volume24h string `json:"volume24h"`
	} `json:"list"`
}

type bybitKlineResult struct {
	List [][]any `json:"list"`
}

type BybitClient struct {
	*restClient
}

func NewBybitClient(baseURL string, timeout time.Duration) *BybitClient {
	if baseURL == "" {
		baseURL = BybitAPIBase
	}
	return &BybitClient{restClient: newRESTClient(Bybit, baseURL, timeout)}
}

func (b *BybitClient) Timeframes() map[string]string {
	return copyTimeframes(bybitTimeframes)
}

func (b *BybitClient) LoadMarkets(ctx context.Context) error {
	if b.marketsLoaded() {
		return nil
	}
	var env bybitEnvelope[bybitInstrumentsResult]
	query := url.Values{"category": {bybitSpotCategory}}
	if err := b.get(ctx, bybitInstruments, query, &env); err != nil {
		return err
	}
	if err := b.checkRetCode(env.RetCode, env.RetMsg); err != nil {
		return err
	}
	markets := make([]Market, 0, len(env.Result.List))
	for _, s := range env.Result.List {
		markets = append(markets, Market{
			ID:     s.Symbol,
			Symbol: s.BaseCoin + "/" + s.QuoteCoin,
			Base:   s.BaseCoin,
			Quote:  s.QuoteCoin,
			Active: s.Status == bybitTradingStatus,
		})
	}
	b.setMarkets(markets)
	return nil
}

func (b *BybitClient) FetchTicker(ctx context.Context, symbol string) (*Ticker, error) {
	if err := b.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := b.market(symbol)
	if err != nil {
		return nil, err
	}

	var env bybitEnvelope[bybitTickersResult]
	query := url.Values{"category": {bybitSpotCategory}, "symbol": {m.ID}}
	if err := b.get(ctx, bybitTickers, query, &env); err != nil {
		return nil, err
	}
	if err := b.checkRetCode(env.RetCode, env.RetMsg); err != nil {
		return nil, err
	}
	if len(env.Result.List) == 0 {
		return nil, fmt.Errorf("%w: bybit returned no ticker for %s", ErrBadSymbol, symbol)
	}
	raw := env.Result.List[0]
	last, err := parseFloat(raw.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("bybit lastPrice: %w", err)
	}
	volume, err := parseFloat(raw.Volume24h)
	if err != nil {
		return nil, fmt.Errorf("bybit volume24h: %w", err)
	}
	return &Ticker{
		Symbol:     m.Symbol,
		Timestamp:  env.Time,
		Datetime:   isoMillis(env.Time),
		Last:       last,
		BaseVolume: volume,
	}, nil
}

func (b *BybitClient) FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]OHLCV, error) {
	interval, ok := bybitTimeframes[timeframe]
	if !ok {
		return nil, fmt.Errorf("bybit does not support timeframe %s", timeframe)
	}
	if err := b.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := b.market(symbol)
	if err != nil {
		return nil, err
	}

	query := url.Values{"category": {bybitSpotCategory}, "symbol": {m.ID}, "interval": {interval}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if since != nil {
		query.Set("start", strconv.FormatInt(*since, 10))
	}
	var env bybitEnvelope[bybitKlineResult]
	if err := b.get(ctx, bybitKline, query, &env); err != nil {
		return nil, err
	}
	if err := b.checkRetCode(env.RetCode, env.RetMsg); err != nil {
		return nil, err
	}

	// bybit lists candles newest first
	rows := env.Result.List
	candles := make([]OHLCV, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		candle, err := parseCandle(rows[i])
		if err != nil {
			return nil, fmt.Errorf("bybit kline: %w", err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func (b *BybitClient) get(ctx context.Context, path string, query url.Values, out any) error {
	return b.getJSON(ctx, path, query, out, func(status int, _ []byte) error {
		return &ExchangeError{Exchange: Bybit, Status: status, Message: http.StatusText(status)}
	})
}

func (b *BybitClient) checkRetCode(code int, msg string) error {
	if code == 0 {
		return nil
	}
	return &ExchangeError{
		Exchange: Bybit,
		Status:   http.StatusOK,
		Code:     strconv.Itoa(code),
		Message:  msg,
	}
}
