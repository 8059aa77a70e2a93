package handlers

import (
	"github.com/gofiber/fiber/v2"

	"campusmart/internal/domain"
	applog "campusmart/internal/log"
	"campusmart/internal/services"
	"campusmart/internal/validate"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Pickups  *services.PickupService
}

type orderView struct {
	domain.Order
	PickupLocationName string `json:"pickup_location_name"`
}

func (h *OrderHandler) view(o domain.Order) orderView {
	return orderView{Order: o, PickupLocationName: h.Pickups.Name(o.PickupLocation)}
}

// GET /checkout
func (h *OrderHandler) Summary(c *fiber.Ctx) error {
	return c.JSON(h.Checkout.Summary(ensureSID(c)))
}

// POST /orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	u, _ := currentUser(c)

	var form validate.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "form", "could not read the checkout form")
	}
	o, err := h.Checkout.Place(sid, u, form)
	if err != nil {
		return fail(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.Total,
		"items":    len(o.Items),
		"pickup":   o.PickupLocation,
	})
	return c.Status(fiber.StatusCreated).JSON(h.view(o))
}

// GET /order/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	u, _ := currentUser(c)
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	o, err := h.Orders.Get(oid)
	if err != nil {
		return fail(c, "order.view", err)
	}
	// someone else's order looks exactly like a missing one
	if o.UserID != u.ID {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return c.JSON(h.view(o))
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := currentUser(c)
	orders := h.Orders.ListByOwner(u.ID)
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = h.view(o)
	}
	return c.JSON(fiber.Map{"orders": out})
}
