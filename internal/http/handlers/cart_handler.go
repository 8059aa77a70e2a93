package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "campusmart/internal/log"
	"campusmart/internal/services"
	"campusmart/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// ensureSID returns the visitor's cart session, minting one when the cookie
// is missing or not a uuid.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Locals(applog.SessionKey, sid)
	return sid
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return c.JSON(h.Cart.View(ensureSID(c)))
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return badRequest(c, "productId", "missing or invalid productId")
	}
	qty := 1
	if raw := strings.TrimSpace(c.FormValue("qty")); raw != "" {
		if qty, ok = validate.Qty(raw, h.Cart.MaxQty); !ok {
			return badRequest(c, "qty", "quantity must be a positive whole number")
		}
	}
	cv, err := h.Cart.Add(sid, productID, qty)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.JSON(cv)
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return badRequest(c, "productId", "missing or invalid productId")
	}
	cv, err := h.Cart.Remove(sid, productID)
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	applog.Info(c, "cart.remove", map[string]any{"product": productID})
	return c.JSON(cv)
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.Clear(sid); err != nil {
		return fail(c, "cart.clear", err)
	}
	return c.JSON(h.Cart.View(sid))
}
