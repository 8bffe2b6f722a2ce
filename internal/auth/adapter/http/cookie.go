package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/crstnmac/estate-broker-manager/internal/auth/config"
)

// SessionCookie writes and reads the session token cookie. The token never
// appears anywhere else in a response: no body, no header, no log line.
type SessionCookie struct {
	Name     string
	Path     string
	Domain   string
	SameSite string
	Secure   bool
	HTTPOnly bool
}

// NewSessionCookie builds the binder from configuration.
func NewSessionCookie(cfg *config.Config) *SessionCookie {
	return &SessionCookie{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		SameSite: cfg.CookieSameSite,
		Secure:   cfg.CookieSecure,
		HTTPOnly: cfg.CookieHTTPOnly,
	}
}

// Attach sets the session cookie on the response, expiring alongside the
// session itself.
func (sc *SessionCookie) Attach(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     sc.Path,
		Domain:   sc.Domain,
		Expires:  expiresAt,
		Secure:   sc.Secure,
		HTTPOnly: sc.HTTPOnly,
		SameSite: sc.SameSite,
	})
}

// Extract returns the raw session token, or "" when the cookie is absent.
func (sc *SessionCookie) Extract(c *fiber.Ctx) string {
	return c.Cookies(sc.Name)
}

// Clear expires the cookie immediately. The attributes must match Attach or
// browsers will keep the original cookie alive.
func (sc *SessionCookie) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     sc.Path,
		Domain:   sc.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   sc.Secure,
		HTTPOnly: sc.HTTPOnly,
		SameSite: sc.SameSite,
	})
}
