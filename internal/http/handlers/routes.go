package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"hoteldesk/internal/config"
	applog "hoteldesk/internal/log"
)

const csrfContextKey = "csrf"

const accessFormat = `{"ts":"${time}","level":"ACCESS","action":"http.access","req_id":"${locals:requestid}",` +
	`"ip":"${ip}","method":"${method}","path":"${path}","status":${status},"latency":"${latency}"}` + "\n"

// NewApp assembles the middleware chain and routes around deps.
func NewApp(cfg config.Config, d *Deps) (*fiber.App, error) {
	views, err := NewViews(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		Views:                 views,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     accessFormat,
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Output:     applog.Output(),
	}))
	app.Use(helmet.New())
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
			},
		}))
	}
	app.Use(LoadSession(d.Sessions))

	// csrf sits behind the session guards on protected routes
	protect := csrfGuard(cfg)

	// ---------- Public ----------
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/index") })
	app.Get("/healthz", health(d))

	auth := d.AuthHandler
	app.Get("/register", protect, auth.RegisterForm)
	app.Post("/register", protect, auth.Register)
	app.Get("/login", protect, auth.LoginForm)
	app.Post("/login", append(loginThrottle(cfg), protect, auth.Login)...)
	app.Get("/logout", auth.Logout)

	// ---------- Logged-in pages ----------
	user := RequireUser()
	app.Get("/index", user, protect, d.PagesHandler.Index)
	app.Get("/profile", user, protect, d.PagesHandler.Profile)
	app.Get("/hotel1", user, protect, d.PagesHandler.Hotel1)
	app.Get("/hotels", user, protect, d.HotelHandler.List)
	app.Get("/hotels/export", user, d.HotelHandler.Export)
	app.Post("/delete/:id", user, protect, d.HotelHandler.Delete)

	// ---------- JSON ----------
	api := RequireUserJSON()
	app.Post("/add", api, protect, d.HotelHandler.Create)
	app.Put("/edit/:id", api, protect, d.HotelHandler.Update)
	app.Get("/api/hotels", api, d.HotelHandler.ListJSON)

	app.Use(notFound)
	return app, nil
}

// csrfGuard returns one shared csrf handler (one token store for every route), or a
// pass-through when CSRF_ENABLED=false.
func csrfGuard(cfg config.Config) fiber.Handler {
	if !cfg.CSRFEnabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return csrf.New(csrf.Config{
		Extractor:      csrfExtractor,
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		ContextKey:     csrfContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			if wantsJSON(c) {
				return jsonError(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
			}
			return renderStatus(c, fiber.StatusForbidden, "notfound", fiber.Map{
				"Title":   "Forbidden",
				"Message": "Security check failed. Please refresh and try again.",
			})
		},
	})
}

func loginThrottle(cfg config.Config) []fiber.Handler {
	if cfg.LoginRateLimit <= 0 {
		return nil
	}
	return []fiber.Handler{limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "login", fiber.Map{
				"Title": "Log in", "Err": "Too many attempts. Please try again later.", "Username": "",
			})
		},
	})}
}

// csrfExtractor accepts the token from the X-Csrf-Token header (fetch calls) or the csrf form field.
func csrfExtractor(c *fiber.Ctx) (string, error) {
	if tok := c.Get(csrf.HeaderName); tok != "" {
		return tok, nil
	}
	return csrf.CsrfFromForm("csrf")(c)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) ||
		strings.HasPrefix(c.Path(), "/api/")
}

func health(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			applog.Error(c, "health.db.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	internal := true
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, msg, internal = fe.Code, fe.Message, false
	}
	c.Status(code)
	if internal {
		applog.Error(c, "server.error", err, nil)
	}
	if wantsJSON(c) {
		return jsonError(c, code, msg)
	}
	if rerr := renderStatus(c, code, "notfound", fiber.Map{"Title": "Error", "Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
