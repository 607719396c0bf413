package strategy

import (
	"fmt"
	"time"

	"stock-backtester-go/internal/models"
	"go.uber.org/zap"
)

// Rule is a single trading rule. Rules are stateless: one instance
// may safely serve any number of concurrent runs.
type Rule interface {
	// Name returns the unique name of the rule.
	Name() string

	// Evaluate inspects one market snapshot and returns a signal, or
	// nil when the rule does not fire.
	Evaluate(snap models.MarketSnapshot, now time.Time) *models.Signal
}

// Generator evaluates the configured rule set against snapshots.
// Rules are evaluated independently: if several fire for the same
// symbol on the same date, each produces its own signal. The
// generator does not deduplicate across rules.
type Generator struct {
	logger *zap.Logger
	rules  []Rule
}

// NewGenerator builds a generator for the given strategy mode.
func NewGenerator(logger *zap.Logger, mode string) (*Generator, error) {
	var rules []Rule
	switch mode {
	case models.StrategyMeanReversion:
		rules = []Rule{&MeanReversionRule{}}
	case models.StrategyMomentum:
		rules = []Rule{&MomentumRule{}}
	case models.StrategyBoth:
		rules = []Rule{&MeanReversionRule{}, &MomentumRule{}}
	default:
		return nil, fmt.Errorf("unsupported strategy mode %q", mode)
	}
	return &Generator{logger: logger, rules: rules}, nil
}

// Generate runs every configured rule against the snapshot and
// collects the signals that fired.
func (g *Generator) Generate(snap models.MarketSnapshot, now time.Time) []models.Signal {
	var signals []models.Signal
	for _, rule := range g.rules {
		sig := rule.Evaluate(snap, now)
		if sig == nil {
			continue
		}
		g.logger.Debug("Rule fired",
			zap.String("rule", rule.Name()),
			zap.String("symbol", snap.Symbol),
			zap.String("action", sig.Action),
			zap.Float64("confidence", sig.Confidence),
		)
		signals = append(signals, *sig)
	}
	return signals
}
