package models

import "time"

const (
	StrategyMeanReversion = "mean_reversion"
	StrategyMomentum      = "momentum"
	StrategyBoth          = "both"
)

// BacktestConfig is the full parameter set for one run. It is
// validated before the run starts and never mutated afterwards.
type BacktestConfig struct {
	Symbols             []string  `json:"symbols"`
	Strategy            string    `json:"strategy"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	InitialCapital      float64   `json:"initial_capital"`
	PositionSizePercent float64   `json:"position_size_percent"`
	CommissionPercent   float64   `json:"commission_percent"`
	SlippagePercent     float64   `json:"slippage_percent"`
	MinConfidence       float64   `json:"min_confidence"`
	MinRiskReward       float64   `json:"min_risk_reward"`
}

// EquityPoint is one day's portfolio value on the equity curve.
// Drawdown is the decline from the running peak, never negative.
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
}

// Summary aggregates a completed run's trade and equity history.
type Summary struct {
	TotalTrades        int     `json:"total_trades"`
	CompletedTrades    int     `json:"completed_trades"`
	WinningTrades      int     `json:"winning_trades"`
	LosingTrades       int     `json:"losing_trades"`
	WinRate            float64 `json:"win_rate"`
	TotalPnL           float64 `json:"total_pnl"`
	ReturnPercent      float64 `json:"return_percent"`
	FinalCapital       float64 `json:"final_capital"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	ProfitFactor       float64 `json:"profit_factor"`
	AverageWin         float64 `json:"average_win"`
	AverageLoss        float64 `json:"average_loss"`
	LargestWin         float64 `json:"largest_win"`
	LargestLoss        float64 `json:"largest_loss"`
}

// BacktestResult is the immutable outcome of one run.
type BacktestResult struct {
	Config       BacktestConfig  `json:"config"`
	Summary      Summary         `json:"summary"`
	Trades       []Trade         `json:"trades"`
	Equity       []EquityPoint   `json:"equity"`
	Signals      []Signal        `json:"signals"`
	Skipped      []SkippedSignal `json:"skipped_signals"`
	DailyReturns []float64       `json:"daily_returns"`
}
