package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	BinanceAPIBase       = "https://api.binance.com"
	binanceExchangeInfo  = "/api/v3/exchangeInfo"
	binanceTicker24h     = "/api/v3/ticker/24hr"
	binanceKlines        = "/api/v3/klines"
	binanceInvalidSymbol = -1121
)

var binanceTimeframes = map[string]string{
	"1s": "1s", "1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1h", "2h": "2h", "4h": "4h", "6h": "6h", "8h": "8h", "12h": "12h",
	"1d": "1d", "3d": "3d", "1w": "1w", "1M": "1M",
}

type binanceExchangeInfoResponse struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

type binanceTickerResponse struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	Volume    string `json:"volume"`
	CloseTime int64  `json:"closeTime"`
}

type binanceErrorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type BinanceClient struct {
	*restClient
}

func NewBinanceClient(baseURL string, timeout time.Duration) *BinanceClient {
	if baseURL == "" {
		baseURL = BinanceAPIBase
	}
	return &BinanceClient{restClient: newRESTClient(Binance, baseURL, timeout)}
}

func (b *BinanceClient) Timeframes() map[string]string {
	return copyTimeframes(binanceTimeframes)
}

func (b *BinanceClient) LoadMarkets(ctx context.Context) error {
	if b.marketsLoaded() {
		return nil
	}
	var info binanceExchangeInfoResponse
	if err := b.getJSON(ctx, binanceExchangeInfo, nil, &info, b.decodeError); err != nil {
		return err
	}
	markets := make([]Market, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		markets = append(markets, Market{
			ID:     s.Symbol,
			Symbol: s.BaseAsset + "/" + s.QuoteAsset,
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
			Active: s.Status == "TRADING",
		})
	}
	b.setMarkets(markets)
	return nil
}

func (b *BinanceClient) FetchTicker(ctx context.Context, symbol string) (*Ticker, error) {
	if err := b.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := b.market(symbol)
	if err != nil {
		return nil, err
	}

	var raw binanceTickerResponse
	query := url.Values{"symbol": {m.ID}}
	if err := b.getJSON(ctx, binanceTicker24h, query, &raw, b.decodeError); err != nil {
		return nil, err
	}
	last, err := parseFloat(raw.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("binance lastPrice: %w", err)
	}
	volume, err := parseFloat(raw.Volume)
	if err != nil {
		return nil, fmt.Errorf("binance volume: %w", err)
	}
	return &Ticker{
		Symbol:     m.Symbol,
		Timestamp:  raw.CloseTime,
		Datetime:   isoMillis(raw.CloseTime),
		Last:       last,
		BaseVolume: volume,
	}, nil
}

func (b *BinanceClient) FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]OHLCV, error) {
	interval, ok := binanceTimeframes[timeframe]
	if !ok {
		return nil, fmt.Errorf("binance does not support timeframe %s", timeframe)
	}
	if err := b.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := b.market(symbol)
	if err != nil {
		return nil, err
	}

	query := url.Values{"symbol": {m.ID}, "interval": {interval}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if since != nil {
		query.Set("startTime", strconv.FormatInt(*since, 10))
	}
	var rows [][]any
	if err := b.getJSON(ctx, binanceKlines, query, &rows, b.decodeError); err != nil {
		return nil, err
	}
	candles := make([]OHLCV, 0, len(rows))
	for _, row := range rows {
		candle, err := parseCandle(row)
		if err != nil {
			return nil, fmt.Errorf("binance kline: %w", err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func (b *BinanceClient) decodeError(status int, body []byte) error {
	var apiErr binanceErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Msg == "" {
		return &ExchangeError{Exchange: Binance, Status: status, Message: "unexpected response"}
	}
	if apiErr.Code == binanceInvalidSymbol {
		return fmt.Errorf("%w: %s", ErrBadSymbol, apiErr.Msg)
	}
	return &ExchangeError{
		Exchange: Binance,
		Status:   status,
		Code:     strconv.Itoa(apiErr.Code),
		Message:  apiErr.Msg,
	}
}
