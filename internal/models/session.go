package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a server-side login session referenced by the session token.
type Session struct {
	ID        string     `db:"id"`
	UserID    int64      `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	IPAddress string     `db:"ip_address"`
	UserAgent string     `db:"user_agent"`
	CreatedAt time.Time  `db:"created_at"`
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// LoginRequest holds the credentials submitted to the login endpoint.
type LoginRequest struct {
	Username  string `json:"user" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionInfo describes the caller of the info endpoint.
type SessionInfo struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Username        string `json:"username,omitempty"`
	UserID          *int64 `json:"user_id,omitempty"`
	IsSuperuser     *bool  `json:"is_superuser,omitempty"`
}

// SessionClaims is the payload of the signed session token. The registered
// ID claim carries the session id.
type SessionClaims struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}
