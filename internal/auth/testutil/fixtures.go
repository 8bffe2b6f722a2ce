// Package testutil provides in-memory repository implementations and
// fixtures for exercising the auth flows without Postgres.
package testutil

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/repository"
)

// HashPassword hashes with the cheapest cost; test fixtures never need the
// production work factor.
func HashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// NewUser returns an active agent with sensible defaults.
func NewUser(id int64, email, password string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:           id,
		Name:         "Test Agent",
		Email:        email,
		PasswordHash: HashPassword(password),
		Role:         model.RoleAgent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MemoryUserRepo is a mutex-guarded map implementation of UserRepository.
type MemoryUserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{nextID: 1, byID: make(map[int64]*model.User)}
}

func (r *MemoryUserRepo) clone(u *model.User) *model.User {
	cp := *u
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		cp.LastLoginAt = &at
	}
	return &cp
}

func (r *MemoryUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return model.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = r.clone(user)
	return nil
}

func (r *MemoryUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			return r.clone(u), nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *MemoryUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return r.clone(u), nil
}

func (r *MemoryUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.byID[user.ID] = r.clone(user)
	return nil
}

func (r *MemoryUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// Seed inserts a user directly, bypassing CreateUser's ID assignment.
func (r *MemoryUserRepo) Seed(user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.byID[user.ID] = r.clone(user)
}

// MemorySessionRepo is a mutex-guarded map implementation of
// SessionRepository.
type MemorySessionRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.Session
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{byID: make(map[string]*model.Session)}
}

func (r *MemorySessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.byID[session.ID] = &cp
	return nil
}

func (r *MemorySessionRepo) GetSessionByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemorySessionRepo) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	s.ExpiresAt = expiresAt
	return nil
}

func (r *MemorySessionRepo) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *MemorySessionRepo) DeleteUserSessions(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.byID {
		if s.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *MemorySessionRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, s := range r.byID {
		if !before.Before(s.ExpiresAt) {
			delete(r.byID, id)
			purged++
		}
	}
	return purged, nil
}

// Count reports the number of stored sessions.
func (r *MemorySessionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

var (
	_ repository.UserRepository    = (*MemoryUserRepo)(nil)
	_ repository.SessionRepository = (*MemorySessionRepo)(nil)
)
