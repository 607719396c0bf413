package database

import (
	"fmt"
	"strings"
	"time"

	"stock-backtester-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// BacktestRecord is the persisted summary of one completed run.
type BacktestRecord struct {
	gorm.Model
	Strategy        string    `json:"strategy"`
	Symbols         string    `json:"symbols"` // comma-joined
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	InitialCapital  float64   `json:"initial_capital"`
	FinalCapital    float64   `json:"final_capital"`
	ReturnPercent   float64   `json:"return_percent"`
	WinRate         float64   `json:"win_rate"`
	SharpeRatio     float64   `json:"sharpe_ratio"`
	MaxDrawdown     float64   `json:"max_drawdown"`
	ProfitFactor    float64   `json:"profit_factor"`
	TotalTrades     int       `json:"total_trades"`
	CompletedTrades int       `json:"completed_trades"`
}

// TradeRecord is one persisted simulated fill, keyed to its run.
type TradeRecord struct {
	gorm.Model
	RunID      uint   `gorm:"index" json:"run_id"`
	TradeID    string `json:"trade_id"`
	Date       time.Time
	Symbol     string
	Action     string
	Price      float64
	Quantity   float64
	Commission float64
	PnL        *float64
	PnLPercent *float64
	Reason     string
}

// NewDatabase opens the results database and migrates the schema.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&BacktestRecord{}, &TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}

// SaveResult persists a completed run's summary and trades, returning
// the record id of the run.
func SaveResult(db *gorm.DB, result *models.BacktestResult) (uint, error) {
	record := BacktestRecord{
		Strategy:        result.Config.Strategy,
		Symbols:         strings.Join(result.Config.Symbols, ","),
		StartDate:       result.Config.StartDate,
		EndDate:         result.Config.EndDate,
		InitialCapital:  result.Config.InitialCapital,
		FinalCapital:    result.Summary.FinalCapital,
		ReturnPercent:   result.Summary.ReturnPercent,
		WinRate:         result.Summary.WinRate,
		SharpeRatio:     result.Summary.SharpeRatio,
		MaxDrawdown:     result.Summary.MaxDrawdown,
		ProfitFactor:    result.Summary.ProfitFactor,
		TotalTrades:     result.Summary.TotalTrades,
		CompletedTrades: result.Summary.CompletedTrades,
	}
	if err := db.Create(&record).Error; err != nil {
		return 0, fmt.Errorf("failed to save backtest record: %w", err)
	}

	for _, trade := range result.Trades {
		tr := TradeRecord{
			RunID:      record.ID,
			TradeID:    trade.ID,
			Date:       trade.Date,
			Symbol:     trade.Symbol,
			Action:     trade.Action,
			Price:      trade.Price,
			Quantity:   trade.Quantity,
			Commission: trade.Commission,
			PnL:        trade.PnL,
			PnLPercent: trade.PnLPercent,
			Reason:     trade.Reason,
		}
		if err := db.Create(&tr).Error; err != nil {
			return 0, fmt.Errorf("failed to save trade %s: %w", trade.ID, err)
		}
	}

	return record.ID, nil
}

// RecentRuns lists the most recently saved runs, newest first.
func RecentRuns(db *gorm.DB, limit int) ([]BacktestRecord, error) {
	var records []BacktestRecord
	if err := db.Order("created_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list backtest records: %w", err)
	}
	return records, nil
}

// TradesForRun returns the persisted trades of one run in execution
// order.
func TradesForRun(db *gorm.DB, runID uint) ([]TradeRecord, error) {
	var trades []TradeRecord
	if err := db.Where("run_id = ?", runID).Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades for run %d: %w", runID, err)
	}
	return trades, nil
}
