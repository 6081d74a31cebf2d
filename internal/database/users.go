package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockwatch/internal/models"
)

// CreateUser inserts a new user
func (db *DB) CreateUser(u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, email, name, phone_number, carrier, email_reminders, email_summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	_, err := db.conn.Exec(query,
		u.ID, u.Email, nullString(u.Name), nullString(u.PhoneNumber), nullString(u.Carrier),
		u.EmailReminders, u.EmailSummary, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(id string) (*models.User, error) {
	query := `
		SELECT id, email, name, phone_number, carrier, email_reminders, email_summary, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return db.scanUser(db.conn.QueryRow(query, id))
}

// GetUserByEmail retrieves a user by email
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, name, phone_number, carrier, email_reminders, email_summary, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return db.scanUser(db.conn.QueryRow(query, email))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var name, phone, carrier sql.NullString

	err := row.Scan(&u.ID, &u.Email, &name, &phone, &carrier,
		&u.EmailReminders, &u.EmailSummary, &u.CreatedAt, &u.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Name = name.String
	u.PhoneNumber = phone.String
	u.Carrier = carrier.String
	return &u, nil
}

// UpdateContact updates a user's notification destination and preferences
func (db *DB) UpdateContact(userID string, phone, carrier, name string, emailReminders, emailSummary bool) error {
	query := `
		UPDATE users SET
			phone_number = $2, carrier = $3, name = $4,
			email_reminders = $5, email_summary = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := db.conn.Exec(query, userID,
		nullString(phone), nullString(carrier), nullString(name),
		emailReminders, emailSummary, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// DeleteUser removes a user and, via cascade, their watches and alert history
func (db *DB) DeleteUser(id string) error {
	result, err := db.conn.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// CountUsers returns the total number of users
func (db *DB) CountUsers() (int, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
