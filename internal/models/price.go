package models

import "time"

// PricePoint is a single daily OHLCV bar. Series are always ordered
// oldest to newest per symbol.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is the latest traded price for a symbol, used by the live
// signal path only.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// MarketSnapshot is the per-date derived view of a symbol that the
// signal rules evaluate against.
type MarketSnapshot struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	RSI    float64 `json:"rsi"`
	SMA20  float64 `json:"sma20"`
	SMA50  float64 `json:"sma50"`
}
