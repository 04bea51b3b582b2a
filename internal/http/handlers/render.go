package handlers

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"hoteldesk/internal/domain"
	"hoteldesk/web"
)

// NewViews loads templates from dir with hot reload, or from the embedded set when dir is empty.
func NewViews(dir string) (fiber.Views, error) {
	if dir != "" {
		engine := html.New(dir, ".html")
		engine.Reload(true)
		return engine, nil
	}
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return html.NewFileSystem(http.FS(sub), ".html"), nil
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Session"] = currentSession(c)
	tok, _ := c.Locals(csrfContextKey).(string)
	data["CSRFToken"] = tok
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	return c.Render(tmpl, data)
}

func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

func notFound(c *fiber.Ctx) error {
	return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{
		"Title":   "Not found",
		"Heading": "Not found",
		"Message": "Page not found",
	})
}

func currentSession(c *fiber.Ctx) *domain.Session {
	s, _ := c.Locals(sessionKey).(*domain.Session)
	return s
}
