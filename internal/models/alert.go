package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert event types published to Kafka
const (
	EventAlertSent   = "ALERT_SENT"
	EventAlertFailed = "ALERT_FAILED"
)

// AlertRecord is one delivery attempt, successful or not. Records are
// immutable once written and double as the daily dedup key: one record per
// watch per calendar day, regardless of outcome.
type AlertRecord struct {
	ID               string          `json:"id"`
	WatchID          string          `json:"watch_id"`
	UserID           string          `json:"user_id"`
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	Threshold        decimal.Decimal `json:"threshold"`
	Direction        string          `json:"direction"`
	Message          string          `json:"message"`
	SentSuccessfully bool            `json:"sent_successfully"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	SentAt           time.Time       `json:"sent_at"`
}

// AlertEvent is the Kafka payload published after each ledger write
type AlertEvent struct {
	EventType string       `json:"event_type"`
	Symbol    string       `json:"symbol"`
	Alert     *AlertRecord `json:"alert"`
	Timestamp time.Time    `json:"timestamp"`
}
