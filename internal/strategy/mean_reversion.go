package strategy

import (
	"fmt"
	"time"

	"stock-backtester-go/internal/models"
)

const (
	oversoldRSI   = 30.0
	overboughtRSI = 70.0
	// confidence reaches 1.0 once RSI is this far past the threshold
	rsiConfidenceRange = 20.0

	reversionTargetPercent = 5.0
	reversionStopPercent   = 3.0
)

// MeanReversionRule trades RSI extremes: buy oversold, sell
// overbought. Confidence scales with how far past the threshold the
// RSI sits.
type MeanReversionRule struct{}

func (r *MeanReversionRule) Name() string {
	return models.StrategyMeanReversion
}

func (r *MeanReversionRule) Evaluate(snap models.MarketSnapshot, now time.Time) *models.Signal {
	if snap.RSI < oversoldRSI {
		confidence := (oversoldRSI - snap.RSI) / rsiConfidenceRange
		if confidence > 1 {
			confidence = 1
		}
		return &models.Signal{
			Symbol:      snap.Symbol,
			Action:      models.ActionBuy,
			Confidence:  confidence,
			Reason:      fmt.Sprintf("RSI %.2f below %.0f, oversold", snap.RSI, oversoldRSI),
			Price:       snap.Price,
			TargetPrice: snap.Price * (1 + reversionTargetPercent/100),
			StopLoss:    snap.Price * (1 - reversionStopPercent/100),
			Strategy:    r.Name(),
			Timestamp:   now,
		}
	}

	if snap.RSI > overboughtRSI {
		confidence := (snap.RSI - overboughtRSI) / rsiConfidenceRange
		if confidence > 1 {
			confidence = 1
		}
		return &models.Signal{
			Symbol:      snap.Symbol,
			Action:      models.ActionSell,
			Confidence:  confidence,
			Reason:      fmt.Sprintf("RSI %.2f above %.0f, overbought", snap.RSI, overboughtRSI),
			Price:       snap.Price,
			TargetPrice: snap.Price * (1 - reversionTargetPercent/100),
			StopLoss:    snap.Price * (1 + reversionStopPercent/100),
			Strategy:    r.Name(),
			Timestamp:   now,
		}
	}

	return nil
}
