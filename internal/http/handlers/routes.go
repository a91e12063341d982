package handlers

import (
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

	applog "freshtrack/internal/log"
)

// AppOptions tunes middleware. Zero limits fall back to the production values.
type AppOptions struct {
	Views      fiber.Views
	AccessLog  bool
	APIRateMax int // requests per minute per IP on /api/v1
	AuthMax    int // login/register attempts per 10 minutes per IP
}

func isAPI(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") }

// NewApp builds the fiber app with every route and middleware mounted.
func NewApp(d *Deps, opt AppOptions) *fiber.App {
	if opt.APIRateMax == 0 {
		opt.APIRateMax = 120
	}
	if opt.AuthMax == 0 {
		opt.AuthMax = 10
	}

	app := fiber.New(fiber.Config{
		Views:     opt.Views,
		BodyLimit: 1 << 20, // 1 MiB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Something went wrong. Please try again."
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < 500 {
				code, msg = fe.Code, fe.Message
			} else {
				applog.Error(c, "server.error", err, nil)
			}
			if isAPI(c) || opt.Views == nil {
				return c.Status(code).JSON(fiber.Map{"error": msg})
			}
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
				return c.Status(code).SendString(msg)
			}
			return nil
		},
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("started", time.Now())
		return c.Next()
	})
	if opt.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// ---------- API ----------
	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        opt.APIRateMax,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|api"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}))
	authLimiter := limiter.New(limiter.Config{
		Max:        opt.AuthMax,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "too many attempts, please try again later")
		},
	})
	user := RequireUser(d.Auth)

	api.Post("/auth/register", authLimiter, d.AuthHandler.Register)
	api.Post("/auth/login", authLimiter, d.AuthHandler.Login)
	api.Post("/auth/logout", user, d.AuthHandler.Logout)
	api.Get("/auth/me", user, d.AuthHandler.Me)

	cats := api.Group("/categories", user)
	cats.Get("/", d.CategoryHandler.List)
	cats.Get("/:id", d.CategoryHandler.Get)
	cats.Post("/", RequireAdmin(), d.CategoryHandler.Create)
	cats.Put("/:id", RequireAdmin(), d.CategoryHandler.Update)
	cats.Delete("/:id", RequireAdmin(), d.CategoryHandler.Delete)

	items := api.Group("/items", user)
	items.Get("/", d.ItemHandler.List)
	items.Post("/", d.ItemHandler.Create)
	items.Get("/:id", d.ItemHandler.Get)
	items.Put("/:id", d.ItemHandler.Update)
	items.Delete("/:id", d.ItemHandler.Delete)
	items.Post("/:id/consume", d.ItemHandler.Consume)
	items.Post("/:id/restock", d.ItemHandler.Restock)
	items.Post("/:id/waste", d.ItemHandler.Waste)

	exp := api.Group("/expiry", user)
	exp.Get("/summary", d.ExpiryHandler.Summary)
	exp.Get("/soon", d.ExpiryHandler.Soon)
	exp.Get("/expired", d.ExpiryHandler.Expired)
	exp.Post("/notify", d.ExpiryHandler.Notify)

	inv := api.Group("/inventory", user)
	inv.Get("/low-stock", d.InventoryHandler.LowStock)
	inv.Get("/stats", d.InventoryHandler.Stats)

	notifs := api.Group("/notifications", user)
	notifs.Get("/", d.NotificationHandler.List)
	notifs.Get("/unread-count", d.NotificationHandler.UnreadCount)
	notifs.Post("/", d.NotificationHandler.Create)
	notifs.Put("/read-all", d.NotificationHandler.MarkAllRead)
	notifs.Put("/:id/read", d.NotificationHandler.MarkRead)
	notifs.Delete("/", d.NotificationHandler.Clear)
	notifs.Delete("/:id", d.NotificationHandler.Delete)

	api.Use(func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusNotFound, "not found")
	})

	// ---------- HTML ----------
	if opt.Views != nil {
		mountWeb(app, d, opt)
	}
	app.Use(func(c *fiber.Ctx) error {
		if opt.Views == nil {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		c.Status(fiber.StatusNotFound)
		return render(c, "notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}

func mountWeb(app *fiber.App, d *Deps, opt AppOptions) {
	csrfMW := csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			c.Status(fiber.StatusForbidden)
			return render(c, "notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	})
	exposeCSRF := func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	}
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/dashboard") })
	app.Get("/login", csrfMW, exposeCSRF, d.AuthHandler.LoginForm)
	app.Post("/login", csrfMW, exposeCSRF, limiter.New(limiter.Config{
		Max:        opt.AuthMax,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.LoginWeb)
	app.Post("/logout", csrfMW, d.AuthHandler.LogoutWeb)
	app.Get("/dashboard", csrfMW, exposeCSRF, RequireWebUser(d.Auth), d.DashboardHandler.Show)
}
