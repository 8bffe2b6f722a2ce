package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
)

// UserRepo implements repository.UserRepository over Postgres.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, role, COALESCE(phone, ''), avatar, is_active, last_login_at, created_at, updated_at`

// CreateUser inserts the user and fills the generated fields. The unique
// email constraint is the single source of truth for duplicates; a violation
// comes back as model.ErrEmailTaken rather than a raw driver error.
func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, phone)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	          RETURNING id, avatar, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name, model.NormalizeEmail(user.Email), user.PasswordHash, string(user.Role), user.Phone,
	).Scan(&user.ID, &user.Avatar, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	user.Email = model.NormalizeEmail(user.Email)
	return nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, model.NormalizeEmail(email)))
}

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdateUser persists the mutable profile fields.
func (r *UserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	query := `UPDATE users
	          SET name = $2, phone = NULLIF($3, ''), avatar = $4, updated_at = now()
	          WHERE id = $1
	          RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Phone, user.Avatar).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var role string
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role,
		&user.Phone, &user.Avatar, &user.IsActive, &lastLogin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = model.Role(role)
	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return user, nil
}
