package strategy

import (
	"fmt"
	"time"

	"stock-backtester-go/internal/models"
)

const (
	momentumConfidence    = 0.65
	momentumTargetPercent = 8.0
	momentumStopPercent   = 5.0
)

// MomentumRule trades moving-average crossovers: a golden cross with
// price above the short average buys, a death cross with price below
// it sells. Confidence is fixed.
type MomentumRule struct{}

func (r *MomentumRule) Name() string {
	return models.StrategyMomentum
}

func (r *MomentumRule) Evaluate(snap models.MarketSnapshot, now time.Time) *models.Signal {
	if snap.SMA20 > snap.SMA50 && snap.Price > snap.SMA20 {
		return &models.Signal{
			Symbol:      snap.Symbol,
			Action:      models.ActionBuy,
			Confidence:  momentumConfidence,
			Reason:      fmt.Sprintf("golden cross: SMA20 %.2f above SMA50 %.2f with price above SMA20", snap.SMA20, snap.SMA50),
			Price:       snap.Price,
			TargetPrice: snap.Price * (1 + momentumTargetPercent/100),
			StopLoss:    snap.Price * (1 - momentumStopPercent/100),
			Strategy:    r.Name(),
			Timestamp:   now,
		}
	}

	if snap.SMA20 < snap.SMA50 && snap.Price < snap.SMA20 {
		return &models.Signal{
			Symbol:      snap.Symbol,
			Action:      models.ActionSell,
			Confidence:  momentumConfidence,
			Reason:      fmt.Sprintf("death cross: SMA20 %.2f below SMA50 %.2f with price below SMA20", snap.SMA20, snap.SMA50),
			Price:       snap.Price,
			TargetPrice: snap.Price * (1 - momentumTargetPercent/100),
			StopLoss:    snap.Price * (1 + momentumStopPercent/100),
			Strategy:    r.Name(),
			Timestamp:   now,
		}
	}

	return nil
}
