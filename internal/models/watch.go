package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction constants for watch thresholds
const (
	DirectionAbove = "above"
	DirectionBelow = "below"
)

// Watch represents one user's threshold alert on one symbol
type Watch struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name,omitempty"`
	Threshold decimal.Decimal `json:"threshold"`
	Direction string          `json:"direction"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WatchWithQuote is a watch joined with the latest cached quote, for listings
type WatchWithQuote struct {
	Watch
	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	LastUpdated   *time.Time       `json:"last_updated,omitempty"`
}

// ActiveWatch is one row of the monitoring join: an active watch together
// with its owner's delivery destination. Users without a usable destination
// never appear here.
type ActiveWatch struct {
	WatchID     string
	UserID      string
	Symbol      string
	Name        string
	Threshold   decimal.Decimal
	Direction   string
	Destination Destination
}

// Triggered reports whether price crosses the watch threshold. Both sides
// are non-strict: a price exactly at the threshold triggers.
func (w *ActiveWatch) Triggered(price decimal.Decimal) bool {
	switch w.Direction {
	case DirectionBelow:
		return price.LessThanOrEqual(w.Threshold)
	case DirectionAbove:
		return price.GreaterThanOrEqual(w.Threshold)
	}
	return false
}
