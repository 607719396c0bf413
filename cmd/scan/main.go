package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-backtester-go/internal/config"
	"stock-backtester-go/internal/live"
	"stock-backtester-go/internal/logger"
	"stock-backtester-go/internal/marketdata"
	"stock-backtester-go/internal/risk"
	"stock-backtester-go/internal/strategy"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	generator, err := strategy.NewGenerator(log, cfg.Backtest.Strategy)
	if err != nil {
		log.Fatal("Invalid strategy mode", zap.Error(err))
	}
	assessor := risk.NewThresholdFilter(log, cfg.Backtest.MinConfidence, cfg.Backtest.MinRiskReward)
	provider := marketdata.NewRestClient(&cfg.MarketData, log)
	scanner := live.NewScanner(log, provider, generator, assessor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		cancel()
	}()

	signals, err := scanner.Scan(ctx, cfg.Backtest.Symbols)
	if err != nil {
		log.Fatal("Live scan failed", zap.Error(err))
	}

	if len(signals) == 0 {
		log.Info("No signals at current prices")
		return
	}
	for _, sig := range signals {
		log.Info("Signal",
			zap.String("symbol", sig.Symbol),
			zap.String("action", sig.Action),
			zap.Float64("confidence", sig.Confidence),
			zap.Float64("price", sig.Price),
			zap.Float64("target", sig.TargetPrice),
			zap.Float64("stop", sig.StopLoss),
			zap.String("reason", sig.Reason),
		)
	}
}
