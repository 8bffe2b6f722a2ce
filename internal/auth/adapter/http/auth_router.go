package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/usecase"
	apperrors "github.com/crstnmac/estate-broker-manager/internal/shared/errors"
	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
	"github.com/crstnmac/estate-broker-manager/internal/shared/utils"
)

// AuthHTTPHandler exposes the authentication endpoints over Fiber.
type AuthHTTPHandler struct {
	authUC usecase.AuthUsecaseInterface
	cookie *SessionCookie
	logger logger.Logger
}

// AuthResponse is the success envelope for auth endpoints.
type AuthResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user,omitempty"`
}

// ErrorResponse is the error envelope for auth endpoints.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewAuthHTTPHandler creates a new AuthHTTPHandler.
func NewAuthHTTPHandler(authUC usecase.AuthUsecaseInterface, cookie *SessionCookie, log logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		authUC: authUC,
		cookie: cookie,
		logger: log.WithComponent("auth_http"),
	}
}

// SetupAuthRoutesWithMiddleware registers all auth routes on the router.
func SetupAuthRoutesWithMiddleware(router fiber.Router, handler *AuthHTTPHandler, mw *AuthMiddleware) {
	router.Post("/signup", handler.Signup)
	router.Post("/login", handler.Login)

	// Logout only needs the session when one exists; an anonymous or
	// replayed logout still clears the cookie and succeeds.
	router.Post("/logout", mw.OptionalAuth(), handler.Logout)
	router.Get("/logout", mw.OptionalAuth(), handler.Logout)

	protected := router.Group("", mw.RequireAuth())
	protected.Get("/me", handler.GetCurrentUser)
	protected.Put("/me", handler.UpdateCurrentUser)
	protected.Post("/change-password", handler.ChangePassword)
}

// Signup handles POST /auth/signup.
func (h *AuthHTTPHandler) Signup(c *fiber.Ctx) error {
	var req usecase.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
			Code:  string(apperrors.ErrorTypeValidation),
		})
	}

	user, token, session, err := h.authUC.Signup(c.UserContext(), req)
	if err != nil {
		return h.renderError(c, err)
	}

	// Only a durably stored session earns a cookie.
	h.cookie.Attach(c, token, session.ExpiresAt)
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Message: "Account created",
		User:    user,
	})
}

// Login handles POST /auth/login.
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
			Code:  string(apperrors.ErrorTypeValidation),
		})
	}
	req.RemoteIP = c.IP()

	user, token, session, err := h.authUC.Login(c.UserContext(), req)
	if err != nil {
		return h.renderError(c, err)
	}

	h.cookie.Attach(c, token, session.ExpiresAt)
	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Message: "Logged in",
		User:    user,
	})
}

// Logout handles POST /auth/logout and GET /auth/logout. It always clears
// the cookie and always succeeds, even for an already-dead session.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	sessionID, _ := utils.GetSessionIDFromContext(c.UserContext())
	if err := h.authUC.Logout(c.UserContext(), sessionID); err != nil {
		h.logger.WithContext(c.UserContext()).Errorf("Failed to delete session: %v", err)
	}
	h.cookie.Clear(c)
	return c.Status(fiber.StatusOK).JSON(AuthResponse{Message: "Logged out"})
}

// GetCurrentUser handles GET /auth/me.
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.renderError(c, apperrors.ErrUnauthorized)
	}

	user, err := h.authUC.CurrentUser(c.UserContext(), userID)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Message: "OK",
		User:    user,
	})
}

// UpdateCurrentUser handles PUT /auth/me.
func (h *AuthHTTPHandler) UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.renderError(c, apperrors.ErrUnauthorized)
	}

	var req usecase.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
			Code:  string(apperrors.ErrorTypeValidation),
		})
	}

	user, err := h.authUC.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Message: "Profile updated",
		User:    user,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// ChangePassword handles POST /auth/change-password. On success every
// session of the user is revoked, including this one, so the cookie is
// cleared and the client must log in again.
func (h *AuthHTTPHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.renderError(c, apperrors.ErrUnauthorized)
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
			Code:  string(apperrors.ErrorTypeValidation),
		})
	}

	if err := h.authUC.ChangePassword(c.UserContext(), userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "Current password is incorrect",
				Code:  string(apperrors.ErrorTypeAuthentication),
			})
		}
		return h.renderError(c, err)
	}

	h.cookie.Clear(c)
	return c.Status(fiber.StatusOK).JSON(AuthResponse{Message: "Password changed, please log in again"})
}

// renderError maps domain and application errors onto HTTP responses.
// Anything unclassified is logged with its cause and returned as an opaque
// 500 so internals never leak to clients.
func (h *AuthHTTPHandler) renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Invalid email or password",
			Code:  string(apperrors.ErrorTypeAuthentication),
		})
	case errors.Is(err, usecase.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Error: "Too many login attempts, try again later",
			Code:  string(apperrors.ErrorTypeAuthentication),
		})
	case errors.Is(err, model.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: "Email already registered",
			Code:  string(apperrors.ErrorTypeConflict),
		})
	case errors.Is(err, model.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "User not found",
			Code:  string(apperrors.ErrorTypeNotFound),
		})
	case errors.Is(err, apperrors.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Authentication required",
			Code:  string(apperrors.ErrorTypeAuthentication),
		})
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPCode).JSON(ErrorResponse{
			Error:   appErr.Message,
			Code:    string(appErr.Type),
			Details: appErr.Details,
		})
	}

	h.logger.WithContext(c.UserContext()).Errorf("Unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Internal server error",
		Code:  string(apperrors.ErrorTypeInternal),
	})
}
