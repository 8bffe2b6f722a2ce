package repository

import (
	"context"
	"time"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// CreateUser inserts the user and fills its generated fields (ID,
	// avatar default, timestamps). Returns model.ErrEmailTaken when the
	// unique email constraint is violated.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail looks a user up by normalized email.
	// Returns model.ErrUserNotFound when no row matches.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	// UpdateUser persists the mutable profile fields (name, phone, avatar).
	UpdateUser(ctx context.Context, user *model.User) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// SessionRepository defines persistence for session rows.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	// GetSessionByID returns model.ErrSessionNotFound when no row matches.
	GetSessionByID(ctx context.Context, id string) (*model.Session, error)
	UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error
	// DeleteSession is idempotent: deleting an absent session is not an error.
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	// DeleteExpiredSessions removes rows whose expiry is at or before the
	// given instant and reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}
