package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 8 * 1024 * 1024
	userAgent      = "mcp-server/1.0"
)

type errorDecoder func(status int, body []byte) error

// restClient holds what the exchange clients share: one private transport per
// client, the loaded market table and the JSON GET helper.
type restClient struct {
	exchange  string
	baseURL   string
	transport *http.Transport
	client    *http.Client
	closeOnce sync.Once

	markets map[string]Market
	byID    map[string]Market
}

func newRESTClient(exchange, baseURL string, timeout time.Duration) *restClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &restClient{
		exchange:  exchange,
		baseURL:   baseURL,
		transport: transport,
		client:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (c *restClient) ID() string { return c.exchange }

func (c *restClient) Markets() map[string]Market {
	out := make(map[string]Market, len(c.markets))
	for k, v := range c.markets {
		out[k] = v
	}
	return out
}

func copyTimeframes(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (c *restClient) marketsLoaded() bool { return c.markets != nil }

func (c *restClient) setMarkets(list []Market) {
	c.markets = make(map[string]Market, len(list))
	c.byID = make(map[string]Market, len(list))
	for _, m := range list {
		c.markets[m.Symbol] = m
		c.byID[m.ID] = m
	}
}

func (c *restClient) market(symbol string) (Market, error) {
	m, ok := c.markets[symbol]
	if !ok {
		return Market{}, fmt.Errorf("%w: %s is not listed on %s", ErrBadSymbol, symbol, c.exchange)
	}
	return m, nil
}

// Close releases pooled connections. Safe to call more than once.
func (c *restClient) Close() error {
	c.closeOnce.Do(func() {
		c.transport.CloseIdleConnections()
	})
	return nil
}

func (c *restClient) getJSON(ctx context.Context, path string, query url.Values, out any, decodeErr errorDecoder) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Exchange: c.exchange, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &NetworkError{Exchange: c.exchange, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return decodeErr(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", c.exchange, err)
	}
	return nil
}

func parseFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		if t == "" {
			return 0, nil
		}
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	default:
		return 0, fmt.Errorf("unexpected numeric value %v", v)
	}
}

func parseCandle(row []any) (OHLCV, error) {
	var candle OHLCV
	if len(row) < len(candle) {
		return candle, fmt.Errorf("candle has %d fields, want at least %d", len(row), len(candle))
	}
	for i := range candle {
		f, err := parseFloat(row[i])
		if err != nil {
			return candle, err
		}
		candle[i] = f
	}
	return candle, nil
}

// isoMillis renders a millisecond timestamp as "2006-01-02T15:04:05.000Z".
func isoMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
