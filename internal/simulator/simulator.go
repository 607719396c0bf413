package simulator

import (
	"fmt"
	"math"
	"time"

	"stock-backtester-go/internal/models"
	"go.uber.org/zap"
)

// Simulator owns the mutable trading state of one backtest run: the
// open-position map, running capital, and the append-only trade log.
// It is not safe for concurrent use; every run constructs its own.
type Simulator struct {
	logger *zap.Logger

	positionSizePercent float64
	commissionPercent   float64
	slippagePercent     float64

	capital   float64
	positions map[string]models.Position
	trades    []models.Trade
	skipped   []models.SkippedSignal
	seq       int
}

// New creates a simulator seeded with the run's initial capital.
func New(logger *zap.Logger, cfg models.BacktestConfig) *Simulator {
	return &Simulator{
		logger:              logger,
		positionSizePercent: cfg.PositionSizePercent,
		commissionPercent:   cfg.CommissionPercent,
		slippagePercent:     cfg.SlippagePercent,
		capital:             cfg.InitialCapital,
		positions:           make(map[string]models.Position),
	}
}

// Capital returns the current cash balance, excluding open positions.
func (s *Simulator) Capital() float64 {
	return s.capital
}

// OpenPositions returns a copy of the open-position map.
func (s *Simulator) OpenPositions() map[string]models.Position {
	out := make(map[string]models.Position, len(s.positions))
	for sym, pos := range s.positions {
		out[sym] = pos
	}
	return out
}

// Trades returns the trade log in execution order.
func (s *Simulator) Trades() []models.Trade {
	return s.trades
}

// Skipped returns the signals that were approved but produced no
// trade.
func (s *Simulator) Skipped() []models.SkippedSignal {
	return s.skipped
}

// CanExecute reports whether a signal is executable against the
// current state: BUY needs a free symbol slot and a positive position
// budget, SELL needs an existing open position, HOLD never executes.
func (s *Simulator) CanExecute(sig models.Signal) bool {
	switch sig.Action {
	case models.ActionBuy:
		if _, open := s.positions[sig.Symbol]; open {
			return false
		}
		return s.capital*s.positionSizePercent/100 > 0
	case models.ActionSell:
		_, open := s.positions[sig.Symbol]
		return open
	default:
		return false
	}
}

// Execute fills an approved signal at the signal price adjusted for
// slippage. It returns the recorded trade, or nil when the fill was
// skipped (zero quantity). Callers should check CanExecute first;
// Execute re-checks and skips quietly otherwise.
func (s *Simulator) Execute(sig models.Signal, date time.Time) *models.Trade {
	if !s.CanExecute(sig) {
		return nil
	}
	switch sig.Action {
	case models.ActionBuy:
		return s.executeBuy(sig, date)
	case models.ActionSell:
		return s.executeSell(sig, date)
	}
	return nil
}

func (s *Simulator) executeBuy(sig models.Signal, date time.Time) *models.Trade {
	budget := s.capital * s.positionSizePercent / 100
	fill := sig.Price * (1 + s.slippagePercent/100)
	quantity := math.Floor(budget / fill)

	if quantity <= 0 {
		s.skipped = append(s.skipped, models.SkippedSignal{
			Signal: sig,
			Reason: "position size rounds to zero shares",
		})
		s.logger.Debug("Skipping zero-quantity buy",
			zap.String("symbol", sig.Symbol),
			zap.Float64("budget", budget),
			zap.Float64("fill_price", fill),
		)
		return nil
	}

	commission := fill * quantity * s.commissionPercent / 100
	s.capital -= fill*quantity + commission

	s.seq++
	trade := models.Trade{
		ID:         fmt.Sprintf("T%04d", s.seq),
		Date:       date,
		Symbol:     sig.Symbol,
		Action:     models.ActionBuy,
		Price:      fill,
		Quantity:   quantity,
		Commission: commission,
		Reason:     sig.Reason,
	}
	s.trades = append(s.trades, trade)

	s.positions[sig.Symbol] = models.Position{
		Symbol:     sig.Symbol,
		Quantity:   quantity,
		EntryPrice: fill,
		EntryDate:  date,
		EntryID:    trade.ID,
	}

	s.logger.Debug("Opened position",
		zap.String("symbol", sig.Symbol),
		zap.Float64("quantity", quantity),
		zap.Float64("entry_price", fill),
	)
	return &trade
}

func (s *Simulator) executeSell(sig models.Signal, date time.Time) *models.Trade {
	pos := s.positions[sig.Symbol]
	exit := sig.Price * (1 - s.slippagePercent/100)

	// Commission is charged on both legs: once on the entry notional,
	// once on the exit notional.
	entryCommission := pos.EntryPrice * pos.Quantity * s.commissionPercent / 100
	exitCommission := exit * pos.Quantity * s.commissionPercent / 100

	pnl := (exit-pos.EntryPrice)*pos.Quantity - entryCommission - exitCommission
	pnlPercent := 0.0
	if entryNotional := pos.EntryPrice * pos.Quantity; entryNotional > 0 {
		pnlPercent = pnl / entryNotional * 100
	}

	s.capital += exit*pos.Quantity - exitCommission
	delete(s.positions, sig.Symbol)

	s.seq++
	trade := models.Trade{
		ID:         fmt.Sprintf("T%04d", s.seq),
		Date:       date,
		Symbol:     sig.Symbol,
		Action:     models.ActionSell,
		Price:      exit,
		Quantity:   pos.Quantity,
		Commission: exitCommission,
		PnL:        &pnl,
		PnLPercent: &pnlPercent,
		Reason:     sig.Reason,
	}
	s.trades = append(s.trades, trade)

	s.logger.Debug("Closed position",
		zap.String("symbol", sig.Symbol),
		zap.Float64("exit_price", exit),
		zap.Float64("pnl", pnl),
	)
	return &trade
}

// MarketValue marks open positions to the given close prices and
// returns cash plus position value. Symbols missing a close are
// valued at their entry price. No trade is triggered.
func (s *Simulator) MarketValue(closes map[string]float64) float64 {
	value := s.capital
	for sym, pos := range s.positions {
		price, ok := closes[sym]
		if !ok {
			price = pos.EntryPrice
		}
		value += pos.Quantity * price
	}
	return value
}
