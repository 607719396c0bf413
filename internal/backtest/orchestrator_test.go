package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-backtester-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockProvider is a mock implementation of the marketdata.Provider
// interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetHistoricalData(ctx context.Context, symbol, interval string, from, to time.Time) ([]models.PricePoint, error) {
	args := m.Called(symbol, interval, from, to)
	var points []models.PricePoint
	if v := args.Get(0); v != nil {
		points = v.([]models.PricePoint)
	}
	return points, args.Error(1)
}

func (m *MockProvider) GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	args := m.Called(symbols)
	var quotes map[string]models.Quote
	if v := args.Get(0); v != nil {
		quotes = v.(map[string]models.Quote)
	}
	return quotes, args.Error(1)
}

func series(start time.Time, prices []float64) []models.PricePoint {
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   p,
			High:   p + 1,
			Low:    p - 1,
			Close:  p,
			Volume: 1000,
		}
	}
	return out
}

func baseConfig(symbols ...string) models.BacktestConfig {
	return models.BacktestConfig{
		Symbols:             symbols,
		Strategy:            models.StrategyMeanReversion,
		StartDate:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital:      100000,
		PositionSizePercent: 10,
		MinConfidence:       0.5,
		MinRiskReward:       1.5,
	}
}

func TestRunValidation(t *testing.T) {
	t.Run("EmptySymbols", func(t *testing.T) {
		provider := new(MockProvider)
		o := NewOrchestrator(zap.NewNop(), provider)

		_, err := o.Run(context.Background(), baseConfig())

		var invalid *InvalidConfigError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, StateFailed, o.State())
		provider.AssertNotCalled(t, "GetHistoricalData", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StartNotBeforeEnd", func(t *testing.T) {
		cfg := baseConfig("AAPL")
		cfg.StartDate, cfg.EndDate = cfg.EndDate, cfg.StartDate
		o := NewOrchestrator(zap.NewNop(), new(MockProvider))

		_, err := o.Run(context.Background(), cfg)

		var invalid *InvalidConfigError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("UnsupportedStrategy", func(t *testing.T) {
		cfg := baseConfig("AAPL")
		cfg.Strategy = "martingale"
		o := NewOrchestrator(zap.NewNop(), new(MockProvider))

		_, err := o.Run(context.Background(), cfg)

		var invalid *InvalidConfigError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, StateFailed, o.State())
	})
}

func TestRunFetchFailureAbortsWholeRun(t *testing.T) {
	provider := new(MockProvider)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.On("GetHistoricalData", "AAPL", "1d", mock.Anything, mock.Anything).
		Return(series(start, []float64{100, 101, 102}), nil)
	provider.On("GetHistoricalData", "MSFT", "1d", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream unavailable"))

	o := NewOrchestrator(zap.NewNop(), provider)
	result, err := o.Run(context.Background(), baseConfig("AAPL", "MSFT"))

	assert.Nil(t, result)
	var fetchErr *DataFetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "MSFT", fetchErr.Symbol)
	assert.Equal(t, StateFailed, o.State())
	provider.AssertExpectations(t)
}

// meanReversionSeries declines long enough to push RSI to the floor,
// then rallies hard enough to push it past the overbought threshold:
// one full buy/sell round trip.
func meanReversionSeries(start time.Time) []models.PricePoint {
	prices := make([]float64, 45)
	for i := 0; i < 25; i++ {
		prices[i] = 200 - 2*float64(i)
	}
	for i := 25; i < 45; i++ {
		prices[i] = 152 + 4*float64(i-24)
	}
	return series(start, prices)
}

func TestRunMeanReversionRoundTrip(t *testing.T) {
	provider := new(MockProvider)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.On("GetHistoricalData", "AAPL", "1d", mock.Anything, mock.Anything).
		Return(meanReversionSeries(start), nil)

	o := NewOrchestrator(zap.NewNop(), provider)
	result, err := o.Run(context.Background(), baseConfig("AAPL"))

	assert.NoError(t, err)
	assert.Equal(t, StateDone, o.State())

	// every bar date is simulated, even the first 19 that only warm
	// up the indicators
	assert.Len(t, result.Equity, 45)
	assert.Len(t, result.DailyReturns, 45)

	// the decline opens a position, the rally closes it
	assert.Len(t, result.Trades, 2)
	assert.Equal(t, models.ActionBuy, result.Trades[0].Action)
	assert.Equal(t, models.ActionSell, result.Trades[1].Action)
	assert.Equal(t, 61.0, result.Trades[0].Quantity) // floor(10000 / 162)
	assert.NotNil(t, result.Trades[1].PnL)
	assert.Greater(t, *result.Trades[1].PnL, 0.0)

	assert.Equal(t, 1, result.Summary.CompletedTrades)
	assert.Equal(t, 100.0, result.Summary.WinRate)
	assert.Greater(t, result.Summary.FinalCapital, result.Config.InitialCapital)

	for _, point := range result.Equity {
		assert.GreaterOrEqual(t, point.Drawdown, 0.0)
	}
}

func TestRunDisjointCalendarsSimulateSortedUnion(t *testing.T) {
	provider := new(MockProvider)
	flat := make([]float64, 25)
	for i := range flat {
		flat[i] = 100
	}
	janStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	marStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	provider.On("GetHistoricalData", "AAPL", "1d", mock.Anything, mock.Anything).
		Return(series(janStart, flat), nil)
	provider.On("GetHistoricalData", "MSFT", "1d", mock.Anything, mock.Anything).
		Return(series(marStart, flat), nil)

	o := NewOrchestrator(zap.NewNop(), provider)
	result, err := o.Run(context.Background(), baseConfig("AAPL", "MSFT"))

	assert.NoError(t, err)
	assert.Len(t, result.Equity, 50)
	for i := 1; i < len(result.Equity); i++ {
		assert.True(t, result.Equity[i].Date.After(result.Equity[i-1].Date),
			"equity dates must ascend")
	}
	// flat prices never open a position
	assert.Empty(t, result.Trades)
	assert.Equal(t, 0.0, result.Summary.TotalPnL)
}

func TestRunHonorsDeadline(t *testing.T) {
	provider := new(MockProvider)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.On("GetHistoricalData", "AAPL", "1d", mock.Anything, mock.Anything).
		Return(meanReversionSeries(start), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already expired before the simulation starts

	o := NewOrchestrator(zap.NewNop(), provider)
	result, err := o.Run(ctx, baseConfig("AAPL"))

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "aborted")
	assert.Equal(t, StateFailed, o.State())
}
