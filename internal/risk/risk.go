package risk

import (
	"math"

	"stock-backtester-go/internal/models"
	"go.uber.org/zap"
)

// RiskAssessor decides which signals are allowed through to
// execution. Implementations must be stateless and must not mutate
// the signals they inspect.
type RiskAssessor interface {
	// AssessRisk returns the approved subset of signals, preserving
	// their original order.
	AssessRisk(signals []models.Signal) []models.Signal
}

// ThresholdFilter rejects signals below a minimum confidence and, for
// signals carrying both a target and a stop, below a minimum
// risk/reward ratio.
type ThresholdFilter struct {
	logger        *zap.Logger
	MinConfidence float64
	MinRiskReward float64
}

var _ RiskAssessor = (*ThresholdFilter)(nil)

// NewThresholdFilter builds the standard confidence + risk/reward
// filter. Construct one per run; the filter holds no per-run state.
func NewThresholdFilter(logger *zap.Logger, minConfidence, minRiskReward float64) *ThresholdFilter {
	return &ThresholdFilter{
		logger:        logger,
		MinConfidence: minConfidence,
		MinRiskReward: minRiskReward,
	}
}

func (f *ThresholdFilter) AssessRisk(signals []models.Signal) []models.Signal {
	approved := make([]models.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Confidence < f.MinConfidence {
			f.logger.Debug("Signal rejected on confidence",
				zap.String("symbol", sig.Symbol),
				zap.Float64("confidence", sig.Confidence),
				zap.Float64("min_confidence", f.MinConfidence),
			)
			continue
		}
		if sig.TargetPrice != 0 && sig.StopLoss != 0 {
			rr := riskReward(sig)
			if rr < f.MinRiskReward {
				f.logger.Debug("Signal rejected on risk/reward",
					zap.String("symbol", sig.Symbol),
					zap.Float64("risk_reward", rr),
					zap.Float64("min_risk_reward", f.MinRiskReward),
				)
				continue
			}
		}
		approved = append(approved, sig)
	}
	return approved
}

// riskReward is the distance to target over the distance to stop,
// both measured from the signal price.
func riskReward(sig models.Signal) float64 {
	risk := math.Abs(sig.Price - sig.StopLoss)
	if risk == 0 {
		return 0
	}
	return math.Abs(sig.TargetPrice-sig.Price) / risk
}
