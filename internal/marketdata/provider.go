package marketdata

import (
	"context"
	"errors"
	"time"

	"stock-backtester-go/internal/models"
)

// ErrNoData marks a fetch that succeeded at the transport level but
// returned no usable price history for the requested range.
var ErrNoData = errors.New("no historical data available")

// Provider is the narrow market-data surface the engine consumes.
type Provider interface {
	// GetHistoricalData returns daily bars ordered oldest to newest.
	// Unavailable data yields an error matchable against ErrNoData.
	GetHistoricalData(ctx context.Context, symbol, interval string, from, to time.Time) ([]models.PricePoint, error)

	// GetQuotes returns the current quote per symbol. Used by the
	// live-signal path only, never by the backtest loop.
	GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}
