package models

import "time"

// User is an account that owns dormitory records.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsSuperuser  bool      `db:"is_superuser" json:"is_superuser"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AccountSummary is the public projection returned by account listings.
type AccountSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// Principal is the authenticated account attached to a request.
type Principal struct {
	ID          int64
	Username    string
	IsSuperuser bool
	// SessionID is empty when the request authenticated with basic credentials.
	SessionID string
}
