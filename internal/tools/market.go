package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Ishagupta145/mcp-server/internal/api"
	"github.com/Ishagupta145/mcp-server/internal/models"
	"github.com/Ishagupta145/mcp-server/internal/service"
)

const (
	defaultTimeframe = "1h"
	defaultLimit     = 100
	maxLimit         = 1000
)

type handlerFunc = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// NewTickerTool describes the "get-ticker" tool.
func NewTickerTool() mcp.Tool {
	return mcp.NewTool("get-ticker",
		mcp.WithDescription("Fetches the latest ticker (last price and base volume) for a trading pair. Results are cached briefly."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Trading pair, e.g. btc-usdt or BTC/USDT")),
		mcp.WithString("exchange", mcp.Description("Exchange id, e.g. binance or bybit")),
	)
}

// NewHistoricalTool describes the "get-historical" tool.
func NewHistoricalTool() mcp.Tool {
	return mcp.NewTool("get-historical",
		mcp.WithDescription("Fetches historical OHLCV candles for a trading pair."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Trading pair, e.g. btc-usdt or BTC/USDT")),
		mcp.WithString("timeframe", mcp.Description("Candle duration, e.g. 1m, 1h, 1d (default 1h)")),
		mcp.WithNumber("since", mcp.Description("Start time in milliseconds")),
		mcp.WithNumber("limit", mcp.Description("Number of candles, 1-1000 (default 100)")),
		mcp.WithString("exchange", mcp.Description("Exchange id, e.g. binance or bybit")),
	)
}

// TickerHandler returns the MCP tool handler for the "get-ticker" tool.
func TickerHandler(realtime service.RealtimeDataCache, defaultExchange string) handlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := req.RequireString("symbol")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		exchangeID := req.GetString("exchange", defaultExchange)
		if exchangeID == "" {
			exchangeID = defaultExchange
		}

		snap, err := realtime.Fetch(ctx, exchangeID, api.NormalizeSymbol(symbol))
		if err != nil {
			return fetchErrorResult(err), nil
		}
		return jsonResult(snap)
	}
}

// HistoricalHandler returns the MCP tool handler for the "get-historical" tool.
func HistoricalHandler(historical service.HistoricalDataFetcher, defaultExchange string) handlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := req.RequireString("symbol")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		timeframe := req.GetString("timeframe", defaultTimeframe)
		if timeframe == "" {
			timeframe = defaultTimeframe
		}
		exchangeID := req.GetString("exchange", defaultExchange)
		if exchangeID == "" {
			exchangeID = defaultExchange
		}
		limit := defaultLimit
		if raw, ok := req.GetArguments()["limit"]; ok && raw != nil {
			if limit, err = req.RequireInt("limit"); err != nil {
				return mcp.NewToolResultError("limit must be an integer"), nil
			}
		}
		if limit < 1 || limit > maxLimit {
			return mcp.NewToolResultError("limit must be between 1 and 1000"), nil
		}

		var since *int64
		if raw, ok := req.GetArguments()["since"]; ok && raw != nil {
			v, err := req.RequireFloat("since")
			if err != nil {
				return mcp.NewToolResultError("since must be a millisecond timestamp"), nil
			}
			ms := int64(v)
			since = &ms
		}

		candles, err := historical.Fetch(ctx, exchangeID, api.NormalizeSymbol(symbol), timeframe, since, limit)
		if err != nil {
			return fetchErrorResult(err), nil
		}
		if candles == nil {
			candles = []models.Candle{}
		}
		return jsonResult(candles)
	}
}

func fetchErrorResult(err error) *mcp.CallToolResult {
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return mcp.NewToolResultError(fe.Kind.String() + ": " + fe.Message)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
