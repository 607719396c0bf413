package models

import "time"

const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Signal is a single trading recommendation produced by one strategy
// rule. Several rules may fire for the same symbol on the same date,
// each producing its own signal with its own reason and confidence.
type Signal struct {
	Symbol      string    `json:"symbol"`
	Action      string    `json:"action"`
	Confidence  float64   `json:"confidence"` // [0,1]
	Reason      string    `json:"reason"`
	Price       float64   `json:"price"` // price the rule fired on
	TargetPrice float64   `json:"target_price,omitempty"`
	StopLoss    float64   `json:"stop_loss,omitempty"`
	Strategy    string    `json:"strategy"`
	Timestamp   time.Time `json:"timestamp"`
}
