package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"campusmart/internal/domain"
	applog "campusmart/internal/log"
	"campusmart/internal/validate"
)

// Identity headers are set by the upstream session layer and trusted as-is.
const (
	HeaderUserID     = "X-User-ID"
	HeaderUserName   = "X-User-Name"
	HeaderAdminToken = "X-Admin-Token"
)

// Identity attaches the upstream user, if any, to the request.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderUserID)
		if raw == "" {
			return c.Next()
		}
		id, ok := validate.ID(raw)
		if !ok {
			applog.Security(c, "identity.invalid", nil)
			return c.Next()
		}
		name := strings.TrimSpace(c.Get(HeaderUserName))
		if name == "" {
			name = id
		}
		c.Locals("user", domain.User{ID: id, Name: name})
		c.Locals(applog.OwnerKey, id)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) (domain.User, bool) {
	u, ok := c.Locals("user").(domain.User)
	return u, ok
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := currentUser(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please sign in first."})
		}
		return c.Next()
	}
}

// RequireAdmin checks the admin token against a bcrypt hash. With no hash
// configured the admin area is closed.
func RequireAdmin(tokenHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Get(HeaderAdminToken)
		if tokenHash == "" || tok == "" ||
			bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(tok)) != nil {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		if u, ok := currentUser(c); ok {
			u.Admin = true
			c.Locals("user", u)
		}
		return c.Next()
	}
}
