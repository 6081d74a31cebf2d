package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"stockwatch/internal/models"
)

// ErrDuplicateWatch is returned when a user already has an active watch on
// the symbol.
var ErrDuplicateWatch = errors.New("user already has an active watch for this symbol")

// CreateWatch inserts a new active watch
func (db *DB) CreateWatch(w *models.Watch) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.Symbol = strings.ToUpper(w.Symbol)

	query := `
		INSERT INTO watches (id, user_id, symbol, name, threshold, direction, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	_, err := db.conn.Exec(query,
		w.ID, w.UserID, w.Symbol, nullString(w.Name), w.Threshold, w.Direction, true, now, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateWatch
		}
		return fmt.Errorf("failed to create watch: %w", err)
	}

	w.IsActive = true
	w.CreatedAt = now
	w.UpdatedAt = now
	return nil
}

// GetWatch retrieves a watch by ID
func (db *DB) GetWatch(id string) (*models.Watch, error) {
	query := `
		SELECT id, user_id, symbol, name, threshold, direction, is_active, created_at, updated_at
		FROM watches
		WHERE id = $1
	`
	var w models.Watch
	var name sql.NullString

	err := db.conn.QueryRow(query, id).Scan(
		&w.ID, &w.UserID, &w.Symbol, &name, &w.Threshold, &w.Direction,
		&w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watch not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %w", err)
	}

	w.Name = name.String
	return &w, nil
}

// ListUserWatches retrieves a user's active watches joined with the latest
// cached quote for each symbol
func (db *DB) ListUserWatches(userID string) ([]*models.WatchWithQuote, error) {
	query := `
		SELECT w.id, w.user_id, w.symbol, w.name, w.threshold, w.direction,
		       w.is_active, w.created_at, w.updated_at,
		       qc.price, qc.change_percent, qc.updated_at
		FROM watches w
		LEFT JOIN quote_cache qc ON w.symbol = qc.symbol
		WHERE w.user_id = $1 AND w.is_active = true
		ORDER BY w.created_at DESC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watches: %w", err)
	}
	defer rows.Close()

	var watches []*models.WatchWithQuote
	for rows.Next() {
		var w models.WatchWithQuote
		var name sql.NullString
		var price, changePercent sql.NullString
		var lastUpdated sql.NullTime

		err := rows.Scan(
			&w.ID, &w.UserID, &w.Symbol, &name, &w.Threshold, &w.Direction,
			&w.IsActive, &w.CreatedAt, &w.UpdatedAt,
			&price, &changePercent, &lastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch: %w", err)
		}

		w.Name = name.String
		if price.Valid {
			p, _ := decimal.NewFromString(price.String)
			w.CurrentPrice = &p
		}
		if changePercent.Valid {
			cp, _ := decimal.NewFromString(changePercent.String)
			w.ChangePercent = &cp
		}
		if lastUpdated.Valid {
			w.LastUpdated = &lastUpdated.Time
		}

		watches = append(watches, &w)
	}

	return watches, nil
}

// UpdateWatch updates a watch's name, threshold and direction, scoped to the
// owning user
func (db *DB) UpdateWatch(userID, watchID string, name string, threshold decimal.Decimal, direction string) error {
	query := `
		UPDATE watches SET
			name = $3, threshold = $4, direction = $5, updated_at = $6
		WHERE id = $2 AND user_id = $1
	`
	result, err := db.conn.Exec(query, userID, watchID, nullString(name), threshold, direction, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update watch: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watch not found: %s", watchID)
	}
	return nil
}

// DeactivateWatch soft-deletes a watch. The row stays behind so alert
// history keeps a valid reference.
func (db *DB) DeactivateWatch(userID, watchID string) error {
	query := `
		UPDATE watches SET is_active = false, updated_at = $3
		WHERE id = $2 AND user_id = $1
	`
	result, err := db.conn.Exec(query, userID, watchID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate watch: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watch not found: %s", watchID)
	}
	return nil
}

// ListActiveWatchesWithContact retrieves every active watch whose owner has
// a usable notification destination. Watches of users without phone+carrier
// are excluded, not errored.
func (db *DB) ListActiveWatchesWithContact() ([]*models.ActiveWatch, error) {
	query := `
		SELECT w.id, w.user_id, w.symbol, w.name, w.threshold, w.direction,
		       u.phone_number, u.carrier, u.email
		FROM watches w
		JOIN users u ON w.user_id = u.id
		WHERE w.is_active = true
		  AND u.phone_number IS NOT NULL
		  AND u.carrier IS NOT NULL
		ORDER BY w.symbol, w.created_at
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active watches: %w", err)
	}
	defer rows.Close()

	var watches []*models.ActiveWatch
	for rows.Next() {
		var w models.ActiveWatch
		var name sql.NullString

		err := rows.Scan(
			&w.WatchID, &w.UserID, &w.Symbol, &name, &w.Threshold, &w.Direction,
			&w.Destination.PhoneNumber, &w.Destination.Carrier, &w.Destination.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active watch: %w", err)
		}

		w.Name = name.String
		if w.Name == "" {
			w.Name = w.Symbol
		}
		watches = append(watches, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active watches: %w", err)
	}

	return watches, nil
}

// CountActiveWatches returns the number of active watches across all users
func (db *DB) CountActiveWatches() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM watches WHERE is_active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active watches: %w", err)
	}
	return count, nil
}
