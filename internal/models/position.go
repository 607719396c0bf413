package models

import "time"

// Position is an open holding created by an executed BUY. The
// simulator guarantees at most one open position per symbol.
type Position struct {
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`
	EntryID    string    `json:"entry_id"` // id of the opening trade
}
