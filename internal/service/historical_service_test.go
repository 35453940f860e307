package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/models"
)

func TestHistoricalFetchMapsCandles(t *testing.T) {
	factory := newStubFactory()
	factory.template.ohlcv = []exchange.OHLCV{
		{1678886400000, 25000.0, 25100.0, 24900.0, 25050.0, 100.0},
	}
	f := NewHistoricalDataFetcher(factory, time.Second, testMetrics(), discardLogger())

	since := int64(12345)
	candles, err := f.Fetch(context.Background(), "binance", "BTC/USDT", "1d", &since, 50)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := models.Candle{Timestamp: 1678886400000, Open: 25000.0, High: 25100.0, Low: 24900.0, Close: 25050.0, Volume: 100.0}
	if len(candles) != 1 || candles[0] != want {
		t.Fatalf("candles = %+v, want [%+v]", candles, want)
	}
	if got := factory.closeCalls.Load(); got != 1 {
		t.Fatalf("close calls = %d, want 1", got)
	}
}

func TestHistoricalRejectsUnknownTimeframeBeforeNetwork(t *testing.T) {
	factory := newStubFactory()
	f := NewHistoricalDataFetcher(factory, time.Second, testMetrics(), discardLogger())

	_, err := f.Fetch(context.Background(), "binance", "BTC/USDT", "10y", nil, 100)
	var fe *models.FetchError
	if !errors.As(err, &fe) || fe.Kind != models.KindDataFetch {
		t.Fatalf("err = %v, want data fetch error", err)
	}
	if want := "Timeframe '10y' not supported by binance. Supported: 1m, 1h, 1d"; fe.Message != want {
		t.Fatalf("message = %q, want %q", fe.Message, want)
	}
	if got := factory.ohlcvCalls.Load(); got != 0 {
		t.Fatalf("ohlcv calls = %d, want 0", got)
	}
	if got := factory.loadCalls.Load(); got != 0 {
		t.Fatalf("load markets calls = %d, want 0", got)
	}
	if got := factory.closeCalls.Load(); got != 1 {
		t.Fatalf("close calls = %d, want 1", got)
	}
}

func TestHistoricalEmptyResultForUnknownSymbol(t *testing.T) {
	factory := newStubFactory()
	f := NewHistoricalDataFetcher(factory, time.Second, testMetrics(), discardLogger())

	_, err := f.Fetch(context.Background(), "binance", "FOO/BAR", "1h", nil, 100)
	if !errors.Is(err, models.ErrInvalidSymbol) {
		t.Fatalf("err = %v, want invalid symbol", err)
	}
	if !strings.Contains(err.Error(), "FOO/BAR") {
		t.Fatalf("message %q should name the symbol", err.Error())
	}
}

func TestHistoricalEmptyResultForKnownSymbol(t *testing.T) {
	factory := newStubFactory()
	f := NewHistoricalDataFetcher(factory, time.Second, testMetrics(), discardLogger())

	candles, err := f.Fetch(context.Background(), "binance", "BTC/USDT", "1h", nil, 100)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candles) != 0 {
		t.Fatalf("candles = %+v, want none", candles)
	}
}

func TestHistoricalEmptyResultWithSinceSkipsMarketCheck(t *testing.T) {
	factory := newStubFactory()
	f := NewHistoricalDataFetcher(factory, time.Second, testMetrics(), discardLogger())

	since := int64(1)
	if _, err := f.Fetch(context.Background(), "binance", "FOO/BAR", "1h", &since, 100); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := factory.loadCalls.Load(); got != 0 {
		t.Fatalf("load markets calls = %d, want 0", got)
	}
}

func TestHistoricalTranslatesErrors(t *testing.T) {
	tests := []struct {
		name     string
		exchange string
		err      error
		want     error
	}{
		{"bad symbol", "binance", exchange.ErrBadSymbol, models.ErrInvalidSymbol},
		{"network", "binance", &exchange.NetworkError{Exchange: "binance", Err: errors.New("reset")}, models.ErrExchange},
		{"exchange", "binance", &exchange.ExchangeError{Exchange: "binance", Status: 418, Message: "teapot"}, models.ErrExchange},
		{"unsupported", "kraken", nil, models.ErrExchange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newStubFactory()
			factory.template.ohlcvErr = tt.err
			f := NewHistoricalDataFetcher(factory, time.Second, testMetrics(), discardLogger())

			_, err := f.Fetch(context.Background(), tt.exchange, "BTC/USDT", "1h", nil, 100)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSortTimeframes(t *testing.T) {
	got := sortTimeframes(map[string]string{"1d": "", "1m": "", "4h": "", "1w": "", "30m": "", "1M": ""})
	want := []string{"1m", "30m", "4h", "1d", "1w", "1M"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sortTimeframes = %v, want %v", got, want)
	}
}
