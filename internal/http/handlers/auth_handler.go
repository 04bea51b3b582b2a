package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "hoteldesk/internal/log"
	"hoteldesk/internal/services"
	"hoteldesk/internal/sessions"
	"hoteldesk/internal/validate"
)

const (
	msgMissingFields    = "All fields are required!"
	msgPasswordMismatch = "Passwords must match!"
	msgPasswordTooLong  = "Password must be at most 72 bytes long!"
	msgUserExists       = "A user with that username already exists!"
	msgBadCreds         = "Invalid username or password!"
	msgLoginRequired    = "Login required!"
)

type AuthHandler struct {
	Auth     *services.AuthService
	Sessions *sessions.Manager
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Title": "Register", "Err": "", "Form": services.RegisterInput{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return h.registerFail(c, fiber.StatusBadRequest, msgMissingFields, in, "bad_body")
	}

	u, err := h.Auth.Register(c.UserContext(), in)
	switch {
	case err == nil:
	case errors.Is(err, validate.ErrMissingFields):
		return h.registerFail(c, fiber.StatusBadRequest, msgMissingFields, in, "missing_fields")
	case errors.Is(err, validate.ErrPasswordMismatch):
		return h.registerFail(c, fiber.StatusBadRequest, msgPasswordMismatch, in, "password_mismatch")
	case errors.Is(err, validate.ErrTooLong):
		return h.registerFail(c, fiber.StatusBadRequest, msgPasswordTooLong, in, "password_too_long")
	case errors.Is(err, services.ErrUserExists):
		return h.registerFail(c, fiber.StatusConflict, msgUserExists, in, "duplicate")
	default:
		return err
	}

	applog.Audit(c, "auth.register", map[string]any{"username": u.Username, "new_user_id": u.ID})
	return c.Redirect("/login")
}

func (h *AuthHandler) registerFail(c *fiber.Ctx, status int, msg string, in services.RegisterInput, reason string) error {
	applog.Info(c, "auth.register.fail", map[string]any{"username": in.Username, "reason": reason})
	in.Password, in.ConfirmPassword = "", ""
	return renderStatus(c, status, "register", fiber.Map{"Title": "Register", "Err": msg, "Form": in})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Title": "Log in", "Err": "", "Username": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return h.loginFail(c, fiber.StatusBadRequest, msgMissingFields, "", "bad_body")
	}

	u, err := h.Auth.Login(c.UserContext(), in)
	switch {
	case err == nil:
	case errors.Is(err, validate.ErrMissingFields):
		return h.loginFail(c, fiber.StatusBadRequest, msgMissingFields, in.Username, "missing_fields")
	case errors.Is(err, services.ErrBadCreds):
		applog.Security(c, "auth.login.fail", map[string]any{"username": in.Username})
		return renderStatus(c, fiber.StatusUnauthorized, "login", fiber.Map{"Title": "Log in", "Err": msgBadCreds, "Username": in.Username})
	default:
		return err
	}

	s, err := h.Sessions.Start(c, u)
	if err != nil {
		return err
	}
	c.Locals(applog.UserIDKey, s.UserID)
	applog.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	return c.Redirect("/index")
}

func (h *AuthHandler) loginFail(c *fiber.Ctx, status int, msg, username, reason string) error {
	applog.Info(c, "auth.login.fail", map[string]any{"username": username, "reason": reason})
	return renderStatus(c, status, "login", fiber.Map{"Title": "Log in", "Err": msg, "Username": username})
}

// Logout always succeeds, with or without a live session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Sessions.Destroy(c); err != nil {
		applog.Error(c, "auth.logout.fail", err, nil)
	}
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}
