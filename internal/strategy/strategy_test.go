package strategy

import (
	"testing"
	"time"

	"stock-backtester-go/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var evalTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestMeanReversionRule(t *testing.T) {
	rule := &MeanReversionRule{}

	t.Run("OversoldBuys", func(t *testing.T) {
		sig := rule.Evaluate(models.MarketSnapshot{Symbol: "AAPL", Price: 100, RSI: 25}, evalTime)

		assert.NotNil(t, sig)
		assert.Equal(t, models.ActionBuy, sig.Action)
		assert.InDelta(t, 0.25, sig.Confidence, 1e-9)
		assert.InDelta(t, 105, sig.TargetPrice, 1e-9)
		assert.InDelta(t, 97, sig.StopLoss, 1e-9)
		assert.Equal(t, models.StrategyMeanReversion, sig.Strategy)
	})

	t.Run("ConfidenceCapsAtOne", func(t *testing.T) {
		sig := rule.Evaluate(models.MarketSnapshot{Symbol: "AAPL", Price: 100, RSI: 2}, evalTime)

		assert.NotNil(t, sig)
		assert.Equal(t, 1.0, sig.Confidence)
	})

	t.Run("OverboughtSells", func(t *testing.T) {
		sig := rule.Evaluate(models.MarketSnapshot{Symbol: "AAPL", Price: 100, RSI: 78}, evalTime)

		assert.NotNil(t, sig)
		assert.Equal(t, models.ActionSell, sig.Action)
		assert.InDelta(t, 0.4, sig.Confidence, 1e-9)
		assert.InDelta(t, 95, sig.TargetPrice, 1e-9)
		assert.InDelta(t, 103, sig.StopLoss, 1e-9)
	})

	t.Run("NeutralRSIIsQuiet", func(t *testing.T) {
		sig := rule.Evaluate(models.MarketSnapshot{Symbol: "AAPL", Price: 100, RSI: 50}, evalTime)
		assert.Nil(t, sig)
	})
}

func TestMomentumRule(t *testing.T) {
	rule := &MomentumRule{}

	t.Run("GoldenCrossBuys", func(t *testing.T) {
		snap := models.MarketSnapshot{Symbol: "MSFT", Price: 110, SMA20: 105, SMA50: 100}
		sig := rule.Evaluate(snap, evalTime)

		assert.NotNil(t, sig)
		assert.Equal(t, models.ActionBuy, sig.Action)
		assert.Equal(t, 0.65, sig.Confidence)
		assert.InDelta(t, 118.8, sig.TargetPrice, 1e-9)
		assert.InDelta(t, 104.5, sig.StopLoss, 1e-9)
	})

	t.Run("DeathCrossSells", func(t *testing.T) {
		snap := models.MarketSnapshot{Symbol: "MSFT", Price: 90, SMA20: 95, SMA50: 100}
		sig := rule.Evaluate(snap, evalTime)

		assert.NotNil(t, sig)
		assert.Equal(t, models.ActionSell, sig.Action)
		assert.Equal(t, 0.65, sig.Confidence)
	})

	t.Run("PriceBelowShortAverageBlocksBuy", func(t *testing.T) {
		snap := models.MarketSnapshot{Symbol: "MSFT", Price: 101, SMA20: 105, SMA50: 100}
		assert.Nil(t, rule.Evaluate(snap, evalTime))
	})
}

func TestGenerator(t *testing.T) {
	t.Run("UnsupportedModeFails", func(t *testing.T) {
		_, err := NewGenerator(zap.NewNop(), "scalping")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported strategy mode")
	})

	t.Run("ModeSelectsRuleSet", func(t *testing.T) {
		gen, err := NewGenerator(zap.NewNop(), models.StrategyMomentum)
		assert.NoError(t, err)

		// oversold but no crossover: the momentum-only generator is quiet
		snap := models.MarketSnapshot{Symbol: "AAPL", Price: 100, RSI: 10, SMA20: 100, SMA50: 100}
		assert.Empty(t, gen.Generate(snap, evalTime))
	})

	t.Run("BothRulesFireIndependently", func(t *testing.T) {
		gen, err := NewGenerator(zap.NewNop(), models.StrategyBoth)
		assert.NoError(t, err)

		// oversold AND golden cross: two signals, no deduplication
		snap := models.MarketSnapshot{Symbol: "AAPL", Price: 110, RSI: 20, SMA20: 105, SMA50: 100}
		signals := gen.Generate(snap, evalTime)

		assert.Len(t, signals, 2)
		assert.Equal(t, models.StrategyMeanReversion, signals[0].Strategy)
		assert.Equal(t, models.StrategyMomentum, signals[1].Strategy)
		assert.NotEqual(t, signals[0].Reason, signals[1].Reason)
	})
}
