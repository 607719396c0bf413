package live

import (
	"context"
	"fmt"
	"time"

	"stock-backtester-go/internal/indicators"
	"stock-backtester-go/internal/marketdata"
	"stock-backtester-go/internal/models"
	"stock-backtester-go/internal/risk"
	"stock-backtester-go/internal/strategy"
	"go.uber.org/zap"
)

const (
	// trailing window fetched to seed the indicators
	historyDays = 120
	minHistory  = 20

	rsiPeriod = 14
	smaShort  = 20
	smaLong   = 50
)

// Scanner evaluates the strategy rules against live quotes instead of
// a historical replay. It shares the Signal and MarketSnapshot types
// with the backtest loop but never touches its state.
type Scanner struct {
	logger    *zap.Logger
	provider  marketdata.Provider
	generator *strategy.Generator
	assessor  risk.RiskAssessor
}

// NewScanner wires a scanner from its collaborators.
func NewScanner(logger *zap.Logger, provider marketdata.Provider, generator *strategy.Generator, assessor risk.RiskAssessor) *Scanner {
	return &Scanner{
		logger:    logger,
		provider:  provider,
		generator: generator,
		assessor:  assessor,
	}
}

// Scan fetches current quotes plus a trailing history window per
// symbol and returns the risk-approved signals. Symbols with no quote
// or too little history are skipped with a warning, not an error.
func (s *Scanner) Scan(ctx context.Context, symbols []string) ([]models.Signal, error) {
	quotes, err := s.provider.GetQuotes(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("could not get quotes: %w", err)
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -historyDays)

	var signals []models.Signal
	for _, symbol := range symbols {
		quote, ok := quotes[symbol]
		if !ok {
			s.logger.Warn("No quote for symbol, skipping", zap.String("symbol", symbol))
			continue
		}

		history, err := s.provider.GetHistoricalData(ctx, symbol, "1d", from, now)
		if err != nil {
			return nil, fmt.Errorf("could not get history for %s: %w", symbol, err)
		}
		if len(history) < minHistory {
			s.logger.Warn("Insufficient history for symbol, skipping",
				zap.String("symbol", symbol),
				zap.Int("bars", len(history)),
			)
			continue
		}

		// Indicators run over the trailing closes with the live quote
		// appended as the latest price.
		closes := make([]float64, 0, len(history)+1)
		for _, p := range history {
			closes = append(closes, p.Close)
		}
		closes = append(closes, quote.Price)

		snap := models.MarketSnapshot{
			Symbol: symbol,
			Price:  quote.Price,
			Volume: quote.Volume,
			RSI:    indicators.RSI(closes, rsiPeriod),
			SMA20:  indicators.SMA(closes, smaShort),
			SMA50:  indicators.SMA(closes, smaLong),
		}
		signals = append(signals, s.generator.Generate(snap, now)...)
	}

	approved := s.assessor.AssessRisk(signals)
	s.logger.Info("Live scan complete",
		zap.Int("symbols", len(symbols)),
		zap.Int("signals", len(signals)),
		zap.Int("approved", len(approved)),
	)
	return approved, nil
}
