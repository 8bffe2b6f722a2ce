// Package auth wires the authentication module: credential hashing, opaque
// session management, the session cookie and the HTTP surface.
package auth

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	authhttp "github.com/crstnmac/estate-broker-manager/internal/auth/adapter/http"
	"github.com/crstnmac/estate-broker-manager/internal/auth/adapter/persistence"
	"github.com/crstnmac/estate-broker-manager/internal/auth/adapter/persistence/postgres"
	"github.com/crstnmac/estate-broker-manager/internal/auth/adapter/security"
	"github.com/crstnmac/estate-broker-manager/internal/auth/config"
	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/repository"
	"github.com/crstnmac/estate-broker-manager/internal/auth/usecase"
	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
)

// AuthModule bundles the module's use cases, HTTP handler and middleware.
type AuthModule struct {
	Usecase    usecase.AuthUsecaseInterface
	Handler    *authhttp.AuthHTTPHandler
	Middleware *authhttp.AuthMiddleware

	sweeper *usecase.SessionSweeper
}

// NewAuthModule wires the module against Postgres, with an optional Redis
// client for login throttling. A nil Redis client disables throttling.
func NewAuthModule(db *sql.DB, redisClient *redis.Client, cfg *config.Config, log logger.Logger) *AuthModule {
	var guard repository.LoginGuard = persistence.NoopLoginGuard{}
	if redisClient != nil {
		guard = persistence.NewRedisLoginGuard(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
	}
	return newAuthModule(
		postgres.NewUserRepo(db),
		postgres.NewSessionRepo(db),
		guard,
		cfg,
		log,
	)
}

// NewAuthModuleWithRepos wires the module against caller-supplied
// repositories. Tests use it with in-memory implementations.
func NewAuthModuleWithRepos(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	guard repository.LoginGuard,
	cfg *config.Config,
	log logger.Logger,
) *AuthModule {
	return newAuthModule(users, sessions, guard, cfg, log)
}

func newAuthModule(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	guard repository.LoginGuard,
	cfg *config.Config,
	log logger.Logger,
) *AuthModule {
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewSessionTokenSource()
	sessionMgr := usecase.NewSessionManager(sessions, tokens, cfg.SessionTTL)
	authUC := usecase.NewAuthUsecase(users, hasher, sessionMgr, guard)
	cookie := authhttp.NewSessionCookie(cfg)

	return &AuthModule{
		Usecase:    authUC,
		Handler:    authhttp.NewAuthHTTPHandler(authUC, cookie, log),
		Middleware: authhttp.NewAuthMiddleware(authUC, cookie, log),
		sweeper:    usecase.NewSessionSweeper(sessionMgr, cfg.SessionSweepInterval, log),
	}
}

// RegisterRoutes mounts the auth endpoints on the given router group.
func (m *AuthModule) RegisterRoutes(router fiber.Router) {
	authhttp.SetupAuthRoutesWithMiddleware(router, m.Handler, m.Middleware)
}

// Sweeper returns the background expired-session sweeper.
func (m *AuthModule) Sweeper() *usecase.SessionSweeper {
	return m.sweeper
}
