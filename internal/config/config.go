package config

import (
	"fmt"
	"strings"
	"time"

	"stock-backtester-go/internal/models"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	MarketData MarketData `mapstructure:"market_data"`
	Backtest   Backtest   `mapstructure:"backtest"`
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
}

// MarketData holds the configuration for the market-data provider.
type MarketData struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Backtest holds the run parameters. Dates are ISO-8601 strings in
// the file; BacktestConfig parses them into the run model.
type Backtest struct {
	Symbols             []string `mapstructure:"symbols"`
	Strategy            string   `mapstructure:"strategy"`
	StartDate           string   `mapstructure:"start_date"`
	EndDate             string   `mapstructure:"end_date"`
	InitialCapital      float64  `mapstructure:"initial_capital"`
	PositionSizePercent float64  `mapstructure:"position_size_percent"`
	CommissionPercent   float64  `mapstructure:"commission_percent"`
	SlippagePercent     float64  `mapstructure:"slippage_percent"`
	MinConfidence       float64  `mapstructure:"min_confidence"`
	MinRiskReward       float64  `mapstructure:"min_risk_reward"`
	TimeoutSeconds      int      `mapstructure:"timeout_seconds"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the results database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("market_data.rate_limit", 5)       // requests per second
	viper.SetDefault("market_data.rate_limit_burst", 2) // burst size
	viper.SetDefault("backtest.strategy", models.StrategyBoth)
	viper.SetDefault("backtest.initial_capital", 100000)
	viper.SetDefault("backtest.position_size_percent", 10)
	viper.SetDefault("backtest.commission_percent", 0.1)
	viper.SetDefault("backtest.slippage_percent", 0.05)
	viper.SetDefault("backtest.min_confidence", 0.6)
	viper.SetDefault("backtest.min_risk_reward", 1.5)
	viper.SetDefault("backtest.timeout_seconds", 300)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

// BacktestConfig converts the file-level section into the run model,
// parsing the ISO-8601 date bounds.
func (b Backtest) BacktestConfig() (models.BacktestConfig, error) {
	start, err := time.Parse("2006-01-02", b.StartDate)
	if err != nil {
		return models.BacktestConfig{}, fmt.Errorf("invalid start_date %q: %w", b.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", b.EndDate)
	if err != nil {
		return models.BacktestConfig{}, fmt.Errorf("invalid end_date %q: %w", b.EndDate, err)
	}
	return models.BacktestConfig{
		Symbols:             b.Symbols,
		Strategy:            b.Strategy,
		StartDate:           start,
		EndDate:             end,
		InitialCapital:      b.InitialCapital,
		PositionSizePercent: b.PositionSizePercent,
		CommissionPercent:   b.CommissionPercent,
		SlippagePercent:     b.SlippagePercent,
		MinConfidence:       b.MinConfidence,
		MinRiskReward:       b.MinRiskReward,
	}, nil
}
