package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/repository"
	apperrors "github.com/crstnmac/estate-broker-manager/internal/shared/errors"
)

var (
	// ErrInvalidCredentials is the single error for every login failure mode
	// (unknown email, wrong password, deactivated account), so responses
	// cannot be used to probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Password length bounds, enforced server-side.
const (
	minPasswordLength = 8
	maxPasswordLength = 255
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Signup(ctx context.Context, req SignupRequest) (*model.User, string, *model.Session, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, string, *model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateSession(ctx context.Context, token string) (*model.Session, *model.User, error)
	CurrentUser(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// SignupRequest represents the signup form.
type SignupRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role,omitempty" form:"role"`
	Phone    string `json:"phone,omitempty" form:"phone"`
}

// LoginRequest represents the login form. RemoteIP is filled in by the HTTP
// layer and feeds the attempt throttle key.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	RemoteIP string `json:"-" form:"-"`
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	Name   string `json:"name,omitempty" form:"name"`
	Phone  string `json:"phone,omitempty" form:"phone"`
	Avatar string `json:"avatar,omitempty" form:"avatar"`
}

// AuthUsecase implements the authentication flows.
type AuthUsecase struct {
	users    repository.UserRepository
	hasher   repository.PasswordHasher
	sessions SessionManagerInterface
	guard    repository.LoginGuard

	// dummyDigest keeps the unknown-email login path as expensive as the
	// wrong-password path.
	dummyDigest string
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	users repository.UserRepository,
	hasher repository.PasswordHasher,
	sessions SessionManagerInterface,
	guard repository.LoginGuard,
) *AuthUsecase {
	dummyDigest, _ := hasher.Hash("enumeration-safety-padding")
	return &AuthUsecase{
		users:       users,
		hasher:      hasher,
		sessions:    sessions,
		guard:       guard,
		dummyDigest: dummyDigest,
	}
}

func validateEmail(ve *apperrors.ValidationErrors, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		ve.Add("email", "email is required")
	case !emailRegex.MatchString(strings.TrimSpace(email)):
		ve.Add("email", "email must be a valid email address")
	}
}

func validatePassword(ve *apperrors.ValidationErrors, password string) {
	switch {
	case password == "":
		ve.Add("password", "password is required")
	case len(password) < minPasswordLength:
		ve.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	case len(password) > maxPasswordLength:
		ve.Add("password", fmt.Sprintf("password must be at most %d characters", maxPasswordLength))
	}
}

// Signup registers a new account and opens its first session. Duplicate
// emails surface as model.ErrEmailTaken straight from the unique constraint;
// there is no racy pre-check.
func (uc *AuthUsecase) Signup(ctx context.Context, req SignupRequest) (*model.User, string, *model.Session, error) {
	ve := apperrors.NewValidationErrors()
	if strings.TrimSpace(req.Name) == "" {
		ve.Add("name", "name is required")
	}
	validateEmail(ve, req.Email)
	validatePassword(ve, req.Password)

	role := model.RoleAgent
	if req.Role != "" {
		role = model.Role(req.Role)
		if !role.Valid() {
			ve.Add("role", "role must be one of admin, agent, assistant")
		}
	}
	if ve.HasErrors() {
		return nil, "", nil, ve.ToAppError()
	}

	passwordHash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        model.NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Role:         role,
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, "", nil, err
	}

	// A user without a live session is recoverable (they just log in), so
	// these two writes are deliberately not atomic.
	token, session, err := uc.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("creating session: %w", err)
	}

	return user.Sanitize(), token, session, nil
}

// Login authenticates by email and password and opens a session.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, string, *model.Session, error) {
	ve := apperrors.NewValidationErrors()
	if strings.TrimSpace(req.Email) == "" {
		ve.Add("email", "email is required")
	}
	if req.Password == "" {
		ve.Add("password", "password is required")
	}
	if ve.HasErrors() {
		return nil, "", nil, ve.ToAppError()
	}

	guardKey := model.NormalizeEmail(req.Email) + "|" + req.RemoteIP
	// The guard fails open: a throttle-store outage must not lock everyone out.
	if allowed, err := uc.guard.Allow(ctx, guardKey); err == nil && !allowed {
		return nil, "", nil, ErrTooManyAttempts
	}

	user, err := uc.users.GetUserByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Burn a compare so this path costs the same as a bad password.
			uc.hasher.Verify(req.Password, uc.dummyDigest)
			_ = uc.guard.RecordFailure(ctx, guardKey)
			return nil, "", nil, ErrInvalidCredentials
		}
		return nil, "", nil, err
	}

	if !uc.hasher.Verify(req.Password, user.PasswordHash) {
		_ = uc.guard.RecordFailure(ctx, guardKey)
		return nil, "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", nil, ErrInvalidCredentials
	}

	_ = uc.guard.Reset(ctx, guardKey)

	token, session, err := uc.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("creating session: %w", err)
	}

	now := session.CreatedAt
	// Best effort; a failed stamp must not fail the login.
	_ = uc.users.TouchLastLogin(ctx, user.ID, now)
	user.LastLoginAt = &now

	return user.Sanitize(), token, session, nil
}

// Logout invalidates the session. Repeating it for a gone session succeeds.
func (uc *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Invalidate(ctx, sessionID)
}

// ValidateSession resolves a bearer token to its session and owning user.
// Unauthenticated results (missing, expired, deactivated owner) are
// (nil, nil, nil); only infrastructure failures return an error.
func (uc *AuthUsecase) ValidateSession(ctx context.Context, token string) (*model.Session, *model.User, error) {
	session, err := uc.sessions.Validate(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, nil
	}

	user, err := uc.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			_ = uc.sessions.Invalidate(ctx, session.ID)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, nil
	}
	return session, user.Sanitize(), nil
}

// CurrentUser returns the public profile for an authenticated user.
func (uc *AuthUsecase) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdateProfile changes the mutable profile fields; empty fields keep their
// current value.
func (uc *AuthUsecase) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*model.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = phone
	}
	if avatar := strings.TrimSpace(req.Avatar); avatar != "" {
		user.Avatar = avatar
	}

	if err := uc.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// ChangePassword verifies the old password, stores a new digest and revokes
// every session of the user, forcing a fresh login everywhere.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	ve := apperrors.NewValidationErrors()
	validatePassword(ve, newPassword)
	if ve.HasErrors() {
		return ve.ToAppError()
	}

	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.hasher.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	passwordHash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := uc.users.UpdatePasswordHash(ctx, userID, passwordHash); err != nil {
		return err
	}
	return uc.sessions.InvalidateUserSessions(ctx, userID)
}

var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
