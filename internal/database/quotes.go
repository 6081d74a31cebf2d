package database

import (
	"database/sql"
	"fmt"
	"time"

	"stockwatch/internal/models"
)

// UpsertQuote writes the durable last-known-good quote row for a symbol.
// Last write wins; there is one row per symbol and no expiry.
func (db *DB) UpsertQuote(q *models.Quote) error {
	query := `
		INSERT INTO quote_cache (symbol, price, change_percent, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET
			price = EXCLUDED.price,
			change_percent = EXCLUDED.change_percent,
			updated_at = EXCLUDED.updated_at
	`
	ts := q.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := db.conn.Exec(query, q.Symbol, q.Price, q.ChangePercent, ts)
	if err != nil {
		return fmt.Errorf("failed to upsert quote for %s: %w", q.Symbol, err)
	}
	return nil
}

// GetCachedQuote retrieves the durable fallback quote for a symbol, or nil
// if the symbol has never been fetched successfully
func (db *DB) GetCachedQuote(symbol string) (*models.Quote, error) {
	query := `
		SELECT symbol, price, change_percent, updated_at
		FROM quote_cache
		WHERE symbol = $1
	`
	var q models.Quote
	err := db.conn.QueryRow(query, symbol).Scan(&q.Symbol, &q.Price, &q.ChangePercent, &q.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached quote for %s: %w", symbol, err)
	}
	return &q, nil
}
