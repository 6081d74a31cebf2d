package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a price snapshot for a symbol
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Timestamp     time.Time       `json:"timestamp"`
	// Stale marks a quote served from the durable fallback cache after a
	// failed live fetch.
	Stale bool `json:"stale,omitempty"`
}
