package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hoteldesk/internal/domain"
	applog "hoteldesk/internal/log"
	"hoteldesk/internal/services"
	"hoteldesk/internal/sessions"
)

type PagesHandler struct {
	Auth     *services.AuthService
	Sessions *sessions.Manager
}

func (h *PagesHandler) Index(c *fiber.Ctx) error {
	s := currentSession(c)
	return render(c, "index", fiber.Map{"Title": "Home", "Username": s.Username})
}

func (h *PagesHandler) Profile(c *fiber.Ctx) error {
	s := currentSession(c)
	u, err := h.Auth.UserByID(c.UserContext(), s.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		// session outlived its user row
		applog.Security(c, "profile.user.missing", nil)
		_ = h.Sessions.Destroy(c)
		return c.Redirect("/login")
	}
	if err != nil {
		return err
	}
	return render(c, "profile", fiber.Map{"Title": "Profile", "User": u})
}

func (h *PagesHandler) Hotel1(c *fiber.Ctx) error {
	return render(c, "hotel1", fiber.Map{"Title": "Featured hotel"})
}
