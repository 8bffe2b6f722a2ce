package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/usecase"
	"github.com/crstnmac/estate-broker-manager/internal/shared/contextkeys"
	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
)

// AuthMiddleware resolves the session cookie into an authenticated identity.
type AuthMiddleware struct {
	authUC usecase.AuthUsecaseInterface
	cookie *SessionCookie
	logger logger.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecaseInterface, cookie *SessionCookie, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authUC: authUC,
		cookie: cookie,
		logger: log.WithComponent("auth_middleware"),
	}
}

func (m *AuthMiddleware) bind(c *fiber.Ctx, session *model.Session, user *model.User) {
	ctx := c.UserContext()
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
	ctx = context.WithValue(ctx, contextkeys.UserEmailKey, user.Email)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, string(user.Role))
	ctx = context.WithValue(ctx, contextkeys.SessionIDKey, session.ID)
	c.SetUserContext(ctx)
	c.Locals("currentUser", user)
	c.Locals("currentSession", session)
}

// RequireAuth rejects requests without a live session. Invalid and expired
// cookies are cleared so clients stop replaying them.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.cookie.Extract(c)
		session, user, err := m.authUC.ValidateSession(c.UserContext(), token)
		if err != nil {
			m.logger.WithContext(c.UserContext()).Errorf("Session validation failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: "Internal server error",
			})
		}
		if session == nil {
			if token != "" {
				m.cookie.Clear(c)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "Authentication required",
			})
		}

		m.bind(c, session, user)
		return c.Next()
	}
}

// OptionalAuth binds the identity when a valid session is present but lets
// anonymous requests through.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.cookie.Extract(c)
		session, user, err := m.authUC.ValidateSession(c.UserContext(), token)
		if err == nil && session != nil {
			m.bind(c, session, user)
		}
		return c.Next()
	}
}

// RequireRole allows only the listed roles past. It must run after
// RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("currentUser").(*model.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error: "Authentication required",
			})
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error: "Insufficient permissions",
		})
	}
}

// CORS returns the CORS middleware for browser clients. Credentials are on
// because the session rides in a cookie.
func CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
	})
}

// SecurityHeaders sets baseline response headers.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter bounds request volume per client IP.
func RateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "Too many requests",
			})
		},
	})
}

// RequestID tags every request with a UUID, echoes it in the X-Request-ID
// header and mirrors it into the request context for log correlation.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, rid)
		c.SetUserContext(context.WithValue(c.UserContext(), contextkeys.RequestIDKey, rid))
		return c.Next()
	}
}
