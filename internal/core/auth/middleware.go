package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookie holds the dashboard session token
	SessionCookie = "rigbot_session"
	// LoginPath is where signed-out users are sent
	LoginPath = "/client/login"

	identityKey = "identity"
)

// SessionMiddleware resolves the session token from the cookie or the
// Authorization header. Requests without a valid token continue anonymously.
func SessionMiddleware(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			parts := strings.Split(c.Get("Authorization"), " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}

		if token != "" {
			if ident, err := authService.ValidateToken(token); err == nil {
				c.Locals(identityKey, ident)
			}
		}

		return c.Next()
	}
}

// RequireIdentity rejects anonymous requests with the access-denied view
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c) == nil {
			return AccessDenied(c)
		}
		return c.Next()
	}
}

// AccessDenied writes the access-denied view with a link to login
func AccessDenied(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":     FriendlyMessage(ErrUnauthenticated),
		"login_url": LoginPath,
	})
}

// IdentityFrom returns the identity resolved by SessionMiddleware, or nil
func IdentityFrom(c *fiber.Ctx) *Identity {
	ident, _ := c.Locals(identityKey).(*Identity)
	return ident
}
