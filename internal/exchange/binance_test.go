package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const binanceExchangeInfoBody = `{"symbols":[
	{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"},
	{"symbol":"ETHBTC","status":"BREAK","baseAsset":"ETH","quoteAsset":"BTC"}
]}`

func startBinanceServer(t *testing.T, handlers map[string]http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var infoCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(binanceExchangeInfo, func(w http.ResponseWriter, r *http.Request) {
		infoCalls.Add(1)
		w.Write([]byte(binanceExchangeInfoBody))
	})
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &infoCalls
}

func TestBinance_LoadMarkets(t *testing.T) {
	srv, infoCalls := startBinanceServer(t, nil)
	c := NewBinanceClient(srv.URL, time.Second)
	defer c.Close()

	ctx := context.Background()
	if err := c.LoadMarkets(ctx); err != nil {
		t.Fatalf("LoadMarkets: %v", err)
	}
	if err := c.LoadMarkets(ctx); err != nil {
		t.Fatalf("LoadMarkets: %v", err)
	}
	if got := infoCalls.Load(); got != 1 {
		t.Errorf("exchangeInfo calls = %d, want 1", got)
	}

	markets := c.Markets()
	btc, ok := markets["BTC/USDT"]
	if !ok || btc.ID != "BTCUSDT" || !btc.Active {
		t.Errorf("unexpected BTC/USDT market: %+v", btc)
	}
	if eth := markets["ETH/BTC"]; eth.Active {
		t.Errorf("ETH/BTC should be inactive")
	}
}

func TestBinance_FetchTicker(t *testing.T) {
	srv, _ := startBinanceServer(t, map[string]http.HandlerFunc{
		binanceTicker24h: func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
				t.Errorf("symbol query = %q, want BTCUSDT", got)
			}
			w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"25000.00","volume":"1000.5","closeTime":1678886400000}`))
		},
	})
	c := NewBinanceClient(srv.URL, time.Second)
	defer c.Close()

	ticker, err := c.FetchTicker(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("FetchTicker: %v", err)
	}
	want := Ticker{
		Symbol:     "BTC/USDT",
		Timestamp:  1678886400000,
		Datetime:   "2023-03-15T13:20:00.000Z",
		Last:       25000,
		BaseVolume: 1000.5,
	}
	if *ticker != want {
		t.Errorf("ticker = %+v, want %+v", *ticker, want)
	}
}

func TestBinance_FetchTickerUnknownSymbol(t *testing.T) {
	srv, _ := startBinanceServer(t, nil)
	c := NewBinanceClient(srv.URL, time.Second)
	defer c.Close()

	_, err := c.FetchTicker(context.Background(), "FOO/BAR")
	if !errors.Is(err, ErrBadSymbol) {
		t.Fatalf("err = %v, want ErrBadSymbol", err)
	}
}

func TestBinance_DecodesErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		badSymbol bool
	}{
		{"invalid symbol", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, true},
		{"rate limit", http.StatusTooManyRequests, `{"code":-1003,"msg":"Too many requests."}`, false},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := startBinanceServer(t, map[string]http.HandlerFunc{
				binanceTicker24h: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				},
			})
			c := NewBinanceClient(srv.URL, time.Second)
			defer c.Close()

			_, err := c.FetchTicker(context.Background(), "BTC/USDT")
			if tt.badSymbol {
				if !errors.Is(err, ErrBadSymbol) {
					t.Fatalf("err = %v, want ErrBadSymbol", err)
				}
				return
			}
			var exErr *ExchangeError
			if !errors.As(err, &exErr) {
				t.Fatalf("err = %v, want *ExchangeError", err)
			}
			if exErr.Status != tt.status {
				t.Errorf("status = %d, want %d", exErr.Status, tt.status)
			}
		})
	}
}

func TestBinance_FetchOHLCV(t *testing.T) {
	srv, _ := startBinanceServer(t, map[string]http.HandlerFunc{
		binanceKlines: func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("interval") != "1d" || q.Get("limit") != "2" || q.Get("startTime") != "12345" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[
				[1678886400000,"25000.0","25100.0","24900.0","25050.0","100.0",1678972799999,"0",10,"0","0","0"],
				[1678972800000,"25050.0","25200.0","25000.0","25150.0","90.0",1679059199999,"0",10,"0","0","0"]
			]`))
		},
	})
	c := NewBinanceClient(srv.URL, time.Second)
	defer c.Close()

	since := int64(12345)
	candles, err := c.FetchOHLCV(context.Background(), "BTC/USDT", "1d", &since, 2)
	if err != nil {
		t.Fatalf("FetchOHLCV: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("len = %d, want 2", len(candles))
	}
	want := OHLCV{1678886400000, 25000, 25100, 24900, 25050, 100}
	if candles[0] != want {
		t.Errorf("candles[0] = %v, want %v", candles[0], want)
	}
}

func TestBinance_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewBinanceClient(url, time.Second)
	defer c.Close()

	err := c.LoadMarkets(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestBinance_CloseIsIdempotent(t *testing.T) {
	c := NewBinanceClient("", time.Second)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
