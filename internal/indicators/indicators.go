package indicators

import (
	"math"

	"stock-backtester-go/internal/models"
)

// All functions take series ordered oldest to newest and never return
// an error: insufficient history degrades to a neutral or flat value
// so callers can treat every output as usable. Final values are
// rounded to 2 decimal places; intermediate accumulation keeps full
// precision.

// round2 rounds to 2 decimal places for display-stable output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RSI computes the Relative Strength Index using Wilder smoothing.
// The seed average gain/loss is the simple mean of the first `period`
// changes. Returns the neutral value 50 when fewer than period+1
// prices are available, and 100 when the average loss is zero.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return round2(100 - 100/(1+rs))
}

// SMA is the simple moving average of the last `period` prices. With
// insufficient history it returns the last available price rather
// than failing.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return round2(prices[len(prices)-1])
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return round2(sum / float64(period))
}

// EMA is the exponential moving average, seeded with the SMA of the
// first `period` prices and smoothed with multiplier 2/(period+1).
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return round2(prices[len(prices)-1])
	}
	return round2(emaValue(prices, period))
}

// emaValue is the unrounded EMA used by composite indicators.
func emaValue(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	if period <= 0 || len(series) < period {
		return series[len(series)-1]
	}
	var seed float64
	for _, v := range series[:period] {
		seed += v
	}
	ema := seed / float64(period)
	k := 2.0 / (float64(period) + 1.0)
	for _, v := range series[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// emaSeries returns the running EMA at every index. Values before the
// seed index carry the cumulative mean so composite indicators can
// index the series uniformly.
func emaSeries(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	var sum float64
	k := 2.0 / (float64(period) + 1.0)
	for i, v := range series {
		if i < period {
			sum += v
			out[i] = sum / float64(i+1)
			continue
		}
		out[i] = v*k + out[i-1]*(1-k)
	}
	return out
}

// BollingerBands holds the three band values for the latest price.
type BollingerBands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes bands as SMA ± mult × population standard
// deviation over the window. With insufficient history the bands
// collapse onto the last price.
func Bollinger(prices []float64, period int, mult float64) BollingerBands {
	if len(prices) == 0 {
		return BollingerBands{}
	}
	if period <= 0 || len(prices) < period {
		last := round2(prices[len(prices)-1])
		return BollingerBands{Upper: last, Middle: last, Lower: last}
	}

	window := prices[len(prices)-period:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / float64(period))

	return BollingerBands{
		Upper:  round2(mean + mult*stdDev),
		Middle: round2(mean),
		Lower:  round2(mean - mult*stdDev),
	}
}

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD is the 12/26 EMA difference with a 9-period signal line.
// Fewer than 26 prices yields an all-zero result.
func MACD(prices []float64) MACDResult {
	const (
		fastPeriod   = 12
		slowPeriod   = 26
		signalPeriod = 9
	)
	if len(prices) < slowPeriod {
		return MACDResult{}
	}

	fast := emaSeries(prices, fastPeriod)
	slow := emaSeries(prices, slowPeriod)

	line := make([]float64, 0, len(prices)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(prices); i++ {
		line = append(line, fast[i]-slow[i])
	}

	macd := line[len(line)-1]
	signal := emaValue(line, signalPeriod)
	return MACDResult{
		MACD:      round2(macd),
		Signal:    round2(signal),
		Histogram: round2(macd - signal),
	}
}

// ATR is the Average True Range with Wilder smoothing. Fewer than
// period+1 bars yields 0.
func ATR(points []models.PricePoint, period int) float64 {
	if period <= 0 || len(points) < period+1 {
		return 0
	}

	trueRanges := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		hl := points[i].High - points[i].Low
		hc := math.Abs(points[i].High - points[i-1].Close)
		lc := math.Abs(points[i].Low - points[i-1].Close)
		trueRanges = append(trueRanges, math.Max(hl, math.Max(hc, lc)))
	}

	var sum float64
	for _, tr := range trueRanges[:period] {
		sum += tr
	}
	atr := sum / float64(period)
	for _, tr := range trueRanges[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return round2(atr)
}

// StochasticResult holds the %K and %D oscillator values.
type StochasticResult struct {
	K float64
	D float64
}

// Stochastic computes %K over kPeriod bars and %D as the SMA of the
// last dPeriod %K values. Insufficient history or a flat high/low
// range yields the neutral value 50.
func Stochastic(points []models.PricePoint, kPeriod, dPeriod int) StochasticResult {
	if kPeriod <= 0 || len(points) < kPeriod {
		return StochasticResult{K: 50, D: 50}
	}

	kAt := func(end int) float64 {
		window := points[end-kPeriod : end]
		highest := window[0].High
		lowest := window[0].Low
		for _, p := range window[1:] {
			highest = math.Max(highest, p.High)
			lowest = math.Min(lowest, p.Low)
		}
		if highest == lowest {
			return 50
		}
		return (window[kPeriod-1].Close - lowest) / (highest - lowest) * 100
	}

	k := kAt(len(points))

	if dPeriod <= 0 {
		return StochasticResult{K: round2(k), D: round2(k)}
	}
	var sum float64
	var n int
	for end := len(points); end >= kPeriod && n < dPeriod; end-- {
		sum += kAt(end)
		n++
	}
	return StochasticResult{K: round2(k), D: round2(sum / float64(n))}
}
