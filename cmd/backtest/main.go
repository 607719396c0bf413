package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-backtester-go/internal/backtest"
	"stock-backtester-go/internal/config"
	"stock-backtester-go/internal/database"
	"stock-backtester-go/internal/logger"
	"stock-backtester-go/internal/marketdata"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize results database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	runCfg, err := cfg.Backtest.BacktestConfig()
	if err != nil {
		log.Fatal("Invalid backtest configuration", zap.Error(err))
	}

	// Setup context for graceful shutdown and the run deadline
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Backtest.TimeoutSeconds)*time.Second)
	defer cancel()
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, aborting run...")
		cancel()
	}()

	provider := marketdata.NewRestClient(&cfg.MarketData, log)
	orchestrator := backtest.NewOrchestrator(log, provider)

	log.Info("Starting backtest",
		zap.Strings("symbols", runCfg.Symbols),
		zap.String("strategy", runCfg.Strategy),
		zap.Time("start", runCfg.StartDate),
		zap.Time("end", runCfg.EndDate),
	)

	result, err := orchestrator.Run(ctx, runCfg)
	if err != nil {
		log.Fatal("Backtest failed", zap.Error(err))
	}

	runID, err := database.SaveResult(db, result)
	if err != nil {
		log.Error("Failed to persist backtest result", zap.Error(err))
	} else {
		log.Info("Backtest result saved", zap.Uint("run_id", runID))
	}

	log.Info("Summary",
		zap.Int("total_trades", result.Summary.TotalTrades),
		zap.Int("completed_trades", result.Summary.CompletedTrades),
		zap.Float64("win_rate", result.Summary.WinRate),
		zap.Float64("total_pnl", result.Summary.TotalPnL),
		zap.Float64("return_percent", result.Summary.ReturnPercent),
		zap.Float64("max_drawdown", result.Summary.MaxDrawdown),
		zap.Float64("sharpe_ratio", result.Summary.SharpeRatio),
		zap.Float64("profit_factor", result.Summary.ProfitFactor),
		zap.Float64("final_capital", result.Summary.FinalCapital),
	)
}
