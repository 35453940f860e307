package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/exchange"
	"github.com/Ishagupta145/mcp-server/internal/metrics"
	"github.com/Ishagupta145/mcp-server/internal/models"
)

// translateError maps an upstream failure onto the three domain error kinds.
func translateError(err error, exchangeID, symbol string) *models.FetchError {
	var (
		fetchErr *models.FetchError
		netErr   *exchange.NetworkError
		exErr    *exchange.ExchangeError
	)
	switch {
	case errors.As(err, &fetchErr):
		return fetchErr
	case errors.Is(err, exchange.ErrUnsupportedExchange):
		return models.NewExchangeError(fmt.Sprintf("Exchange '%s' is not supported.", exchangeID))
	case errors.Is(err, exchange.ErrBadSymbol):
		return models.NewInvalidSymbolError(fmt.Sprintf("The symbol '%s' was not found on %s.", symbol, exchangeID))
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return models.NewExchangeError(fmt.Sprintf("A network error occurred: %v", err))
	case errors.As(err, &exErr):
		return models.NewExchangeError(fmt.Sprintf("An exchange error occurred: %v", err))
	default:
		return models.NewDataFetchError(fmt.Sprintf("An unexpected error occurred: %v", err))
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var fetchErr *models.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind.String()
	}
	return models.KindDataFetch.String()
}

func observeUpstream(m *metrics.Metrics, exchangeID, operation string, start time.Time, err error) {
	m.UpstreamRequestsTotal.WithLabelValues(exchangeID, operation, outcome(err)).Inc()
	m.UpstreamRequestDuration.WithLabelValues(exchangeID, operation).Observe(time.Since(start).Seconds())
}

func closeClient(client exchange.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("failed to close exchange client", "exchange", client.ID(), "error", err)
	}
}
