// Package exchange provides the upstream exchange client capability: a
// registry of supported exchanges and REST clients that expose markets,
// tickers and OHLCV candles in a unified "BASE/QUOTE" symbol space.
package exchange

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnsupportedExchange = errors.New("exchange not supported")
	ErrBadSymbol           = errors.New("bad symbol")
)

// NetworkError wraps transport failures: dial errors, resets, timeouts.
type NetworkError struct {
	Exchange string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Exchange, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ExchangeError is an error reported by the exchange itself, or an
// unexpected HTTP status.
type ExchangeError struct {
	Exchange string
	Status   int
	Code     string
	Message  string
}

func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s (code %s, status %d)", e.Exchange, e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s %s (status %d)", e.Exchange, e.Message, e.Status)
}

type Market struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Active bool   `json:"active"`
}

type Ticker struct {
	Symbol     string
	Timestamp  int64
	Datetime   string
	Last       float64
	BaseVolume float64
}

// OHLCV is one candle: timestamp (ms), open, high, low, close, volume.
type OHLCV [6]float64

// Client is a single-use handle on one exchange. It must be closed after use.
type Client interface {
	ID() string
	LoadMarkets(ctx context.Context) error
	Markets() map[string]Market
	Timeframes() map[string]string
	FetchTicker(ctx context.Context, symbol string) (*Ticker, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, since *int64, limit int) ([]OHLCV, error)
	Close() error
}

type Factory interface {
	Exchanges() []string
	NewClient(id string) (Client, error)
}
