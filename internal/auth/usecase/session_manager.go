package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/repository"
)

// SessionManagerInterface defines the session store contract consumed by the
// auth usecase and the HTTP middleware.
type SessionManagerInterface interface {
	Create(ctx context.Context, userID int64) (string, *model.Session, error)
	// Validate resolves a bearer token to its live session. A missing or
	// expired session yields (nil, nil): unauthenticated, not an error.
	Validate(ctx context.Context, token string) (*model.Session, error)
	// Invalidate deletes the session; invalidating an absent one is a no-op.
	Invalidate(ctx context.Context, sessionID string) error
	InvalidateUserSessions(ctx context.Context, userID int64) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionManager implements opaque sessions with sliding renewal. The store
// is keyed by the token's SHA-256 digest; the token itself is never persisted.
type SessionManager struct {
	sessions repository.SessionRepository
	tokens   repository.TokenSource
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(sessions repository.SessionRepository, tokens repository.TokenSource, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create mints a fresh token and persists its session with a full TTL.
func (m *SessionManager) Create(ctx context.Context, userID int64) (string, *model.Session, error) {
	token, err := m.tokens.Generate()
	if err != nil {
		return "", nil, err
	}

	now := m.now()
	session := &model.Session{
		ID:        m.tokens.SessionID(token),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// Validate looks the session up by the token's digest. When more than half
// the TTL has elapsed the expiry is pushed out to now+TTL and persisted,
// which bounds write frequency while keeping active users signed in.
// Concurrent renewals race benignly: the expiry only ever extends.
func (m *SessionManager) Validate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	session, err := m.sessions.GetSessionByID(ctx, m.tokens.SessionID(token))
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := m.now()
	if session.ExpiredAt(now) {
		// Lazy cleanup; the sweeper catches anything this misses.
		_ = m.sessions.DeleteSession(ctx, session.ID)
		return nil, nil
	}

	if now.Add(m.ttl / 2).After(session.ExpiresAt) {
		session.ExpiresAt = now.Add(m.ttl)
		if err := m.sessions.UpdateSessionExpiry(ctx, session.ID, session.ExpiresAt); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (m *SessionManager) Invalidate(ctx context.Context, sessionID string) error {
	return m.sessions.DeleteSession(ctx, sessionID)
}

func (m *SessionManager) InvalidateUserSessions(ctx context.Context, userID int64) error {
	return m.sessions.DeleteUserSessions(ctx, userID)
}

// PurgeExpired deletes every session whose expiry has passed.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpiredSessions(ctx, m.now())
}

var _ SessionManagerInterface = (*SessionManager)(nil)
