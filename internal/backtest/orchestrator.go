package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"stock-backtester-go/internal/analyzer"
	"stock-backtester-go/internal/indicators"
	"stock-backtester-go/internal/marketdata"
	"stock-backtester-go/internal/models"
	"stock-backtester-go/internal/risk"
	"stock-backtester-go/internal/simulator"
	"stock-backtester-go/internal/strategy"
	"go.uber.org/zap"
)

// State is the orchestrator's lifecycle stage. DONE and FAILED are
// terminal; FAILED is reachable from any non-DONE state.
type State string

const (
	StateInit        State = "INIT"
	StateFetching    State = "FETCHING"
	StateSimulating  State = "SIMULATING"
	StateSummarizing State = "SUMMARIZING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

const (
	// interval of the bars the simulation replays
	historyInterval = "1d"
	// minimum trailing bars before a symbol is evaluated on a date
	minHistory = 20

	rsiPeriod   = 14
	smaShort    = 20
	smaLong     = 50
	dateKeyForm = "2006-01-02"
)

// Orchestrator drives one backtest run through its state machine:
// INIT -> FETCHING -> SIMULATING -> SUMMARIZING -> DONE. The date
// loop is strictly sequential; only the per-symbol fetch stage fans
// out. An orchestrator serves one run at a time.
type Orchestrator struct {
	logger   *zap.Logger
	provider marketdata.Provider
	state    State
}

// NewOrchestrator creates an orchestrator backed by the given
// market-data provider.
func NewOrchestrator(logger *zap.Logger, provider marketdata.Provider) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		provider: provider,
		state:    StateInit,
	}
}

// State returns the current lifecycle stage.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.logger.Debug("Backtest state transition", zap.String("from", string(o.state)), zap.String("to", string(s)))
	o.state = s
}

// Run executes one backtest. The context bounds the whole run: when
// its deadline expires mid-simulation the run fails with the context
// error instead of returning a silently truncated result.
func (o *Orchestrator) Run(ctx context.Context, cfg models.BacktestConfig) (*models.BacktestResult, error) {
	o.setState(StateInit)
	if err := validate(cfg); err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	generator, err := strategy.NewGenerator(o.logger, cfg.Strategy)
	if err != nil {
		// validate already vetted the mode; keep the guard anyway
		o.setState(StateFailed)
		return nil, &InvalidConfigError{Reason: err.Error()}
	}
	assessor := risk.NewThresholdFilter(o.logger, cfg.MinConfidence, cfg.MinRiskReward)

	o.setState(StateFetching)
	series, err := o.fetchAll(ctx, cfg)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	o.setState(StateSimulating)
	sim := simulator.New(o.logger, cfg)
	run, err := o.simulate(ctx, cfg, series, generator, assessor, sim)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	o.setState(StateSummarizing)
	finalCapital := cfg.InitialCapital
	if len(run.equity) > 0 {
		finalCapital = run.equity[len(run.equity)-1].Value
	}
	summary := analyzer.Summarize(cfg, sim.Trades(), run.equity, run.dailyReturns, finalCapital)

	result := &models.BacktestResult{
		Config:       cfg,
		Summary:      summary,
		Trades:       sim.Trades(),
		Equity:       run.equity,
		Signals:      run.signals,
		Skipped:      sim.Skipped(),
		DailyReturns: run.dailyReturns,
	}

	o.setState(StateDone)
	o.logger.Info("Backtest complete",
		zap.Int("simulated_dates", len(run.equity)),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_capital", summary.FinalCapital),
		zap.Float64("return_percent", summary.ReturnPercent),
	)
	return result, nil
}

// validate rejects unusable configs before any fetch happens.
func validate(cfg models.BacktestConfig) error {
	if len(cfg.Symbols) == 0 {
		return &InvalidConfigError{Reason: "symbol list is empty"}
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		return &InvalidConfigError{Reason: fmt.Sprintf(
			"start date %s is not before end date %s",
			cfg.StartDate.Format(dateKeyForm), cfg.EndDate.Format(dateKeyForm))}
	}
	switch cfg.Strategy {
	case models.StrategyMeanReversion, models.StrategyMomentum, models.StrategyBoth:
	default:
		return &InvalidConfigError{Reason: fmt.Sprintf("unsupported strategy mode %q", cfg.Strategy)}
	}
	return nil
}

type fetchResult struct {
	symbol string
	points []models.PricePoint
	err    error
}

// fetchAll requests every symbol's history concurrently and waits for
// all fetches. The first failure cancels the remaining fetches and
// fails the whole run; there is no partial backtest.
func (o *Orchestrator) fetchAll(ctx context.Context, cfg models.BacktestConfig) (map[string][]models.PricePoint, error) {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan fetchResult, len(cfg.Symbols))

	for _, symbol := range cfg.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			points, err := o.provider.GetHistoricalData(fetchCtx, symbol, historyInterval, cfg.StartDate, cfg.EndDate)
			if err != nil {
				cancel() // fail fast: abort the remaining fetches
			}
			results <- fetchResult{symbol: symbol, points: points, err: err}
		}(symbol)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	series := make(map[string][]models.PricePoint, len(cfg.Symbols))
	var fetchErr *DataFetchError
	for res := range results {
		if res.err != nil {
			// Prefer the root cause over fetches that merely saw the
			// cancellation.
			if fetchErr == nil || errors.Is(fetchErr.Err, context.Canceled) {
				fetchErr = &DataFetchError{Symbol: res.symbol, Err: res.err}
			}
			continue
		}
		series[res.symbol] = res.points
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	o.logger.Info("Historical data fetched", zap.Int("symbols", len(series)))
	return series, nil
}

// runState accumulates the per-date outputs of the simulation loop.
type runState struct {
	equity       []models.EquityPoint
	dailyReturns []float64
	signals      []models.Signal
}

// simulate replays the sorted union of all trading dates in order.
// Each date depends on the capital and position state left by the
// previous one, so this loop is strictly sequential.
func (o *Orchestrator) simulate(
	ctx context.Context,
	cfg models.BacktestConfig,
	series map[string][]models.PricePoint,
	generator *strategy.Generator,
	assessor risk.RiskAssessor,
	sim *simulator.Simulator,
) (*runState, error) {
	dates, barIndex := tradingCalendar(series)
	o.logger.Info("Simulation calendar built", zap.Int("dates", len(dates)))

	run := &runState{}
	lastClose := make(map[string]float64, len(cfg.Symbols))
	peak := cfg.InitialCapital
	prevEquity := cfg.InitialCapital

	for _, date := range dates {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("backtest aborted at %s: %w", date.Format(dateKeyForm), ctx.Err())
		default:
		}

		key := date.Format(dateKeyForm)
		var daySignals []models.Signal

		for _, symbol := range cfg.Symbols {
			idx, ok := barIndex[symbol][key]
			if !ok {
				continue // symbol has no bar on this date
			}
			bar := series[symbol][idx]
			lastClose[symbol] = bar.Close

			// Less than minHistory trailing bars is not an error; the
			// symbol just sits out this date.
			if idx+1 < minHistory {
				continue
			}

			window := series[symbol][:idx+1]
			closes := make([]float64, len(window))
			for i, p := range window {
				closes[i] = p.Close
			}
			snap := models.MarketSnapshot{
				Symbol: symbol,
				Price:  bar.Close,
				Volume: bar.Volume,
				RSI:    indicators.RSI(closes, rsiPeriod),
				SMA20:  indicators.SMA(closes, smaShort),
				SMA50:  indicators.SMA(closes, smaLong),
			}
			daySignals = append(daySignals, generator.Generate(snap, date)...)
		}

		run.signals = append(run.signals, daySignals...)

		for _, sig := range assessor.AssessRisk(daySignals) {
			if !sim.CanExecute(sig) {
				continue
			}
			sim.Execute(sig, date)
		}

		value := sim.MarketValue(lastClose)
		if value > peak {
			peak = value
		}
		run.equity = append(run.equity, models.EquityPoint{
			Date:     date,
			Value:    value,
			Drawdown: peak - value,
		})

		dailyReturn := 0.0
		if prevEquity != 0 {
			dailyReturn = (value - prevEquity) / prevEquity * 100
		}
		run.dailyReturns = append(run.dailyReturns, dailyReturn)
		prevEquity = value
	}

	return run, nil
}

// tradingCalendar builds the sorted union of all symbols' trading
// dates plus a per-symbol index from date key to bar position.
func tradingCalendar(series map[string][]models.PricePoint) ([]time.Time, map[string]map[string]int) {
	barIndex := make(map[string]map[string]int, len(series))
	union := make(map[string]time.Time)

	for symbol, points := range series {
		idx := make(map[string]int, len(points))
		for i, p := range points {
			key := p.Date.Format(dateKeyForm)
			idx[key] = i
			if _, seen := union[key]; !seen {
				union[key] = p.Date
			}
		}
		barIndex[symbol] = idx
	}

	dates := make([]time.Time, 0, len(union))
	for _, d := range union {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, barIndex
}
