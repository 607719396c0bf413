package analyzer

import (
	"math"

	"stock-backtester-go/internal/models"
)

// tradingDaysPerYear annualizes the Sharpe ratio of daily returns.
const tradingDaysPerYear = 252

// Summarize reduces a completed run's trade log, equity curve and
// daily returns into the summary statistics. Degenerate inputs (no
// completed trades, zero volatility, zero gross loss) produce the
// documented fallback values, never an error.
func Summarize(cfg models.BacktestConfig, trades []models.Trade, equity []models.EquityPoint, dailyReturns []float64, finalCapital float64) models.Summary {
	summary := models.Summary{
		TotalTrades:  len(trades),
		FinalCapital: finalCapital,
	}

	var grossProfit, grossLoss float64
	for _, trade := range trades {
		if trade.Action != models.ActionSell || trade.PnL == nil {
			continue
		}
		pnl := *trade.PnL
		summary.CompletedTrades++
		summary.TotalPnL += pnl
		if pnl > 0 {
			summary.WinningTrades++
			grossProfit += pnl
			if pnl > summary.LargestWin {
				summary.LargestWin = pnl
			}
		} else {
			grossLoss += -pnl
			if pnl < summary.LargestLoss {
				summary.LargestLoss = pnl
			}
		}
	}
	summary.LosingTrades = summary.CompletedTrades - summary.WinningTrades

	if summary.CompletedTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.CompletedTrades) * 100
	}
	if summary.WinningTrades > 0 {
		summary.AverageWin = grossProfit / float64(summary.WinningTrades)
	}
	if summary.LosingTrades > 0 {
		summary.AverageLoss = -grossLoss / float64(summary.LosingTrades)
	}
	if grossLoss > 0 {
		summary.ProfitFactor = grossProfit / grossLoss
	}

	if cfg.InitialCapital > 0 {
		summary.ReturnPercent = (finalCapital - cfg.InitialCapital) / cfg.InitialCapital * 100
	}

	for _, point := range equity {
		if point.Drawdown > summary.MaxDrawdown {
			summary.MaxDrawdown = point.Drawdown
		}
	}
	if cfg.InitialCapital > 0 {
		summary.MaxDrawdownPercent = summary.MaxDrawdown / cfg.InitialCapital * 100
	}

	summary.SharpeRatio = sharpe(dailyReturns)
	return summary
}

// sharpe annualizes mean daily return over its volatility. Zero
// volatility yields 0 rather than dividing by zero.
func sharpe(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	var sum float64
	for _, r := range dailyReturns {
		sum += r
	}
	mean := sum / float64(len(dailyReturns))

	var variance float64
	for _, r := range dailyReturns {
		d := r - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / float64(len(dailyReturns)))
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}
