package api

import (
	"log/slog"
	"net/http"

	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/middleware"
	"github.com/Ishagupta145/mcp-server/internal/models"
	"github.com/Ishagupta145/mcp-server/internal/service"
	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	realtime        service.RealtimeDataCache
	historical      service.HistoricalDataFetcher
	logService      service.LogService
	factory         exchange.Factory
	defaultExchange string
	logger          *slog.Logger
}

func NewMarketHandler(
	realtime service.RealtimeDataCache,
	historical service.HistoricalDataFetcher,
	logService service.LogService,
	factory exchange.Factory,
	defaultExchange string,
	logger *slog.Logger,
) *MarketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketHandler{
		realtime:        realtime,
		historical:      historical,
		logService:      logService,
		factory:         factory,
		defaultExchange: defaultExchange,
		logger:          logger,
	}
}

type historicalQuery struct {
	Timeframe string `form:"timeframe,default=1h"`
	Since     *int64 `form:"since"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=1000"`
	Exchange  string `form:"exchange"`
}

type ExchangesResponse struct {
	Exchanges []string `json:"exchanges"`
	Default   string   `json:"default"`
}

func (h *MarketHandler) exchangeOrDefault(id string) string {
	if id == "" {
		return h.defaultExchange
	}
	return id
}

// Root
// @Summary Welcome message
// @Tags Meta
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *MarketHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the MCP Server. See /swagger/index.html for API documentation."})
}

// GetTicker returns the latest ticker for a trading pair
// @Summary Get real-time ticker data
// @Description Latest price and volume for a trading pair. Results are cached briefly.
// @Tags Market
// @Produce json
// @Param symbol path string true "Trading pair, e.g. btc-usdt"
// @Param exchange query string false "Exchange id, e.g. binance"
// @Success 200 {object} models.TickerSnapshot
// @Failure 404 {object} map[string]string "Symbol not found"
// @Failure 502 {object} map[string]string "Exchange error"
// @Failure 500 {object} map[string]string "Internal error"
// @Router /ticker/{symbol} [get]
func (h *MarketHandler) GetTicker(c *gin.Context) {
	symbol := NormalizeSymbol(c.Param("symbol"))
	exchangeID := h.exchangeOrDefault(c.Query("exchange"))

	snap, err := h.realtime.Fetch(c.Request.Context(), exchangeID, symbol)
	if err != nil {
		writeFetchError(c, err)
		return
	}

	h.audit(c, "GetTicker", "Ticker data retrieved", map[string]interface{}{
		"symbol":   symbol,
		"exchange": exchangeID,
	})

	c.JSON(http.StatusOK, snap)
}

// GetHistorical returns OHLCV candles for a trading pair
// @Summary Get historical candlestick data
// @Description Open, high, low, close and volume candles for a trading pair.
// @Tags Market
// @Produce json
// @Param symbol path string true "Trading pair, e.g. btc-usdt"
// @Param timeframe query string false "Candle duration, e.g. 1m, 1h, 1d" default(1h)
// @Param since query int false "Start time in milliseconds"
// @Param limit query int false "Number of candles (1-1000)" default(100)
// @Param exchange query string false "Exchange id, e.g. binance"
// @Success 200 {array} models.Candle
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 404 {object} map[string]string "Symbol not found"
// @Failure 502 {object} map[string]string "Exchange error"
// @Failure 500 {object} map[string]string "Internal error"
// @Router /historical/{symbol} [get]
func (h *MarketHandler) GetHistorical(c *gin.Context) {
	var q historicalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	symbol := NormalizeSymbol(c.Param("symbol"))
	exchangeID := h.exchangeOrDefault(q.Exchange)

	candles, err := h.historical.Fetch(c.Request.Context(), exchangeID, symbol, q.Timeframe, q.Since, q.Limit)
	if err != nil {
		writeFetchError(c, err)
		return
	}
	if candles == nil {
		candles = []models.Candle{}
	}

	h.audit(c, "GetHistorical", "Historical data retrieved", map[string]interface{}{
		"symbol":    symbol,
		"exchange":  exchangeID,
		"timeframe": q.Timeframe,
		"limit":     q.Limit,
		"candles":   len(candles),
	})

	c.JSON(http.StatusOK, candles)
}

// ListExchanges
// @Summary List supported exchanges
// @Tags Market
// @Produce json
// @Success 200 {object} ExchangesResponse
// @Router /exchanges [get]
func (h *MarketHandler) ListExchanges(c *gin.Context) {
	c.JSON(http.StatusOK, ExchangesResponse{
		Exchanges: h.factory.Exchanges(),
		Default:   h.defaultExchange,
	})
}

// Health
// @Summary Liveness probe
// @Tags Meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *MarketHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cached_tickers": h.realtime.Len()})
}

func (h *MarketHandler) audit(c *gin.Context, action, description string, metadata map[string]interface{}) {
	if h.logService == nil {
		return
	}
	if err := h.logService.LogAction(middleware.RequestIDFrom(c), action, description, c.ClientIP(), metadata); err != nil {
		h.logger.Warn("failed to record request log", "action", action, "error", err)
	}
}
