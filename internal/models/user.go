package models

import "time"

// User represents an account that owns watches and alert history
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	Carrier        string    `json:"carrier,omitempty"`
	EmailReminders bool      `json:"email_reminders"`
	EmailSummary   bool      `json:"email_summary"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasContact reports whether the user can receive alerts
func (u *User) HasContact() bool {
	return u.PhoneNumber != "" && u.Carrier != ""
}

// Destination is where an alert for a watch gets delivered.
// Phone+Carrier resolve to an email-to-SMS gateway address; Email is the
// plain fallback channel.
type Destination struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	Carrier     string `json:"carrier,omitempty"`
	Email       string `json:"email,omitempty"`
}
