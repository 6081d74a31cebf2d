package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockwatch/internal/models"
)

// HasAlertedToday reports whether an alert was already attempted for the
// watch on the calendar day containing the given time. A failed delivery
// attempt counts: the dedup key is "attempted today", not "succeeded today".
func (db *DB) HasAlertedToday(watchID string, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM alert_history
			WHERE watch_id = $1 AND sent_at >= $2 AND sent_at < $3
		)
	`
	var exists bool
	if err := db.conn.QueryRow(query, watchID, dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check alert history: %w", err)
	}
	return exists, nil
}

// RecordAlert appends an alert record. Records are never updated or deleted
// by the monitoring cycle.
func (db *DB) RecordAlert(r *models.AlertRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SentAt.IsZero() {
		r.SentAt = time.Now()
	}

	query := `
		INSERT INTO alert_history (
			id, watch_id, user_id, symbol, price, threshold, direction,
			message, sent_successfully, error_message, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.conn.Exec(query,
		r.ID, r.WatchID, r.UserID, r.Symbol, r.Price, r.Threshold, r.Direction,
		r.Message, r.SentSuccessfully, nullString(r.ErrorMessage), r.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

// ListUserAlerts retrieves a user's alert history, most recent first
func (db *DB) ListUserAlerts(userID string, limit int) ([]*models.AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, watch_id, user_id, symbol, price, threshold, direction,
		       message, sent_successfully, error_message, sent_at
		FROM alert_history
		WHERE user_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	var alerts []*models.AlertRecord
	for rows.Next() {
		var r models.AlertRecord
		var errorMessage sql.NullString

		err := rows.Scan(
			&r.ID, &r.WatchID, &r.UserID, &r.Symbol, &r.Price, &r.Threshold,
			&r.Direction, &r.Message, &r.SentSuccessfully, &errorMessage, &r.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert record: %w", err)
		}

		r.ErrorMessage = errorMessage.String
		alerts = append(alerts, &r)
	}

	return alerts, nil
}
