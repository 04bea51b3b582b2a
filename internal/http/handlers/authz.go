package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "hoteldesk/internal/log"
	"hoteldesk/internal/sessions"
)

const sessionKey = "session"

// LoadSession resolves the session cookie once per request and stores the result in Locals.
// Anonymous requests pass through; the Require* guards decide what to do with them.
func LoadSession(mgr *sessions.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := mgr.Load(c)
		switch {
		case err == nil:
			c.Locals(sessionKey, s)
			c.Locals(applog.UserIDKey, s.UserID)
		case errors.Is(err, sessions.ErrNoSession):
		case errors.Is(err, sessions.ErrInvalidToken):
			applog.Security(c, "session.invalid", nil)
		default:
			return err
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentSession(c) == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireUserJSON is RequireUser for the fetch-driven endpoints.
func RequireUserJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentSession(c) == nil {
			applog.Security(c, "access.denied", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgLoginRequired})
		}
		return c.Next()
	}
}
