package model

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when no session row matches a lookup.
var ErrSessionNotFound = errors.New("session not found")

// Session is one authenticated browser. ID is the SHA-256 digest of the
// bearer token, never the token itself, so a leaked sessions table does not
// leak usable credentials.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExpiredAt reports whether the session is expired at the given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
