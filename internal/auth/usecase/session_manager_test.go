package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crstnmac/estate-broker-manager/internal/auth/adapter/security"
	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	args := m.Called(ctx, id, expiresAt)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func newTestSessionManager(repo *MockSessionRepository, now time.Time) *SessionManager {
	m := NewSessionManager(repo, security.NewSessionTokenSource(), 720*time.Hour)
	m.now = func() time.Time { return now }
	return m
}

func TestSessionManagerCreate(t *testing.T) {
	repo := new(MockSessionRepository)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := newTestSessionManager(repo, now)

	repo.On("CreateSession", mock.Anything, mock.MatchedBy(func(s *model.Session) bool {
		return s.UserID == 42 && s.ExpiresAt.Equal(now.Add(720*time.Hour))
	})).Return(nil)

	token, session, err := manager.Create(context.Background(), 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, session.ID)
	assert.Equal(t, security.NewSessionTokenSource().SessionID(token), session.ID)
	repo.AssertExpectations(t)
}

func TestSessionManagerValidate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 720 * time.Hour

	t.Run("empty token is unauthenticated, not an error", func(t *testing.T) {
		repo := new(MockSessionRepository)
		manager := newTestSessionManager(repo, now)

		session, err := manager.Validate(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, session)
		repo.AssertNotCalled(t, "GetSessionByID")
	})

	t.Run("unknown token is unauthenticated", func(t *testing.T) {
		repo := new(MockSessionRepository)
		manager := newTestSessionManager(repo, now)
		repo.On("GetSessionByID", mock.Anything, mock.Anything).Return(nil, model.ErrSessionNotFound)

		session, err := manager.Validate(context.Background(), "bogus-token")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("expired session is deleted and rejected", func(t *testing.T) {
		repo := new(MockSessionRepository)
		manager := newTestSessionManager(repo, now)
		stored := &model.Session{ID: "sid", UserID: 1, ExpiresAt: now.Add(-time.Minute)}
		repo.On("GetSessionByID", mock.Anything, mock.Anything).Return(stored, nil)
		repo.On("DeleteSession", mock.Anything, "sid").Return(nil)

		session, err := manager.Validate(context.Background(), "token")
		require.NoError(t, err)
		assert.Nil(t, session)
		repo.AssertCalled(t, "DeleteSession", mock.Anything, "sid")
	})

	t.Run("session expiring exactly now is already dead", func(t *testing.T) {
		repo := new(MockSessionRepository)
		manager := newTestSessionManager(repo, now)
		stored := &model.Session{ID: "sid", UserID: 1, ExpiresAt: now}
		repo.On("GetSessionByID", mock.Anything, mock.Anything).Return(stored, nil)
		repo.On("DeleteSession", mock.Anything, "sid").Return(nil)

		session, err := manager.Validate(context.Background(), "token")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("fresh session is not renewed", func(t *testing.T) {
		repo := new(MockSessionRepository)
		manager := newTestSessionManager(repo, now)
		// More than half the lifetime remains.
		stored := &model.Session{ID: "sid", UserID: 1, ExpiresAt: now.Add(ttl/2 + time.Hour)}
		repo.On("GetSessionByID", mock.Anything, mock.Anything).Return(stored, nil)

		session, err := manager.Validate(context.Background(), "token")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, now.Add(ttl/2+time.Hour), session.ExpiresAt)
		repo.AssertNotCalled(t, "UpdateSessionExpiry")
	})

	t.Run("stale session slides forward a full lifetime", func(t *testing.T) {
		repo := new(MockSessionRepository)
		manager := newTestSessionManager(repo, now)
		// Less than half the lifetime remains.
		stored := &model.Session{ID: "sid", UserID: 1, ExpiresAt: now.Add(ttl/2 - time.Hour)}
		repo.On("GetSessionByID", mock.Anything, mock.Anything).Return(stored, nil)
		repo.On("UpdateSessionExpiry", mock.Anything, "sid", now.Add(ttl)).Return(nil)

		session, err := manager.Validate(context.Background(), "token")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, now.Add(ttl), session.ExpiresAt)
		repo.AssertExpectations(t)
	})
}

func TestSessionManagerInvalidate(t *testing.T) {
	repo := new(MockSessionRepository)
	manager := newTestSessionManager(repo, time.Now())
	repo.On("DeleteSession", mock.Anything, "sid").Return(nil)

	// Invalidating twice must both succeed.
	require.NoError(t, manager.Invalidate(context.Background(), "sid"))
	require.NoError(t, manager.Invalidate(context.Background(), "sid"))
}

func TestSessionManagerPurgeExpired(t *testing.T) {
	repo := new(MockSessionRepository)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := newTestSessionManager(repo, now)
	repo.On("DeleteExpiredSessions", mock.Anything, now).Return(int64(3), nil)

	purged, err := manager.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
}
