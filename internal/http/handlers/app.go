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

	applog "campusmart/internal/log"
)

type AppOptions struct {
	AccessLog bool
	CSRF      bool
	// RequestsPerMinute caps each client; 0 uses 60.
	RequestsPerMinute int
	// AvailabilityPer30s caps the availability API per client; 0 uses 15.
	AvailabilityPer30s int
}

// NewApp builds the fiber app with middleware and every route mounted.
func NewApp(d *Deps, opt AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := msgInternal
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < 500 {
				code, msg = fe.Code, fe.Message
			} else {
				applog.Error(c, "server.error", err, nil)
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(recover.New())
	app.Use(requestid.New())
	if opt.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        orDefault(opt.RequestsPerMinute, 60),
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests. Please slow down."})
		},
	}))
	if opt.CSRF {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "header:X-CSRF-Token",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			// header-authenticated callers are not cookie-driven
			Next: func(c *fiber.Ctx) bool { return c.Get(HeaderAdminToken) != "" },
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				applog.Security(c, "csrf.fail", nil)
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Please refresh and try again."})
			},
		}))
	}
	app.Use(Identity())

	// Cart & orders
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)
	app.Get("/checkout", d.OrderHandler.Summary)
	app.Post("/orders", RequireUser(), d.OrderHandler.Place)
	app.Get("/order/:id", RequireUser(), d.OrderHandler.View)
	app.Get("/orders", RequireUser(), d.OrderHandler.History)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        orDefault(opt.AvailabilityPer30s, 15),
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, d.InventoryHandler.Check)
	api.Get("/locations", d.LocationHandler.List)
	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)

	// Admin
	admin := app.Group("/admin", RequireAdmin(d.AdminTokenHash))
	admin.Get("/products", d.AdminHandler.Products)
	admin.Post("/products", d.AdminHandler.CreateProduct)
	admin.Get("/inventory", d.AdminHandler.Inventory)
	admin.Post("/inventory", d.AdminHandler.UpdateInventory)
	admin.Get("/orders", d.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.Post("/orders/:id/payment", d.AdminHandler.UpdatePaymentStatus)
	admin.Post("/orders/:id/delete", d.AdminHandler.DeleteOrder)
	admin.Get("/stats", d.AdminHandler.Stats)
	admin.Post("/locations", d.AdminHandler.AddLocation)
	admin.Post("/locations/:id", d.AdminHandler.UpdateLocation)
	admin.Post("/locations/:id/delete", d.AdminHandler.DeleteLocation)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	})
	return app
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
