package models

import "time"

// Trade is a simulated fill. SELL trades carry realized PnL; BUY
// trades do not. Trades are append-only and immutable once recorded.
type Trade struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Symbol     string    `json:"symbol"`
	Action     string    `json:"action"` // BUY or SELL
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	Commission float64   `json:"commission"`
	PnL        *float64  `json:"pnl,omitempty"`
	PnLPercent *float64  `json:"pnl_percent,omitempty"`
	Reason     string    `json:"reason"`
}

// SkippedSignal records an approved signal that produced no trade,
// e.g. position sizing rounded down to zero shares. Kept for
// debugging; a skip is never an error.
type SkippedSignal struct {
	Signal Signal `json:"signal"`
	Reason string `json:"reason"`
}
