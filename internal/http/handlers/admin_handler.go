package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusmart/internal/log"
	"campusmart/internal/services"
	"campusmart/internal/validate"
)

type AdminHandler struct {
	Inv     *services.InventoryService
	Orders  *services.OrderService
	Pickups *services.PickupService
}

// GET /admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"products": h.Inv.Products()})
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var f validate.ProductForm
	if err := c.BodyParser(&f); err != nil {
		return badRequest(c, "form", "could not read the product form")
	}
	p, err := h.Inv.CreateProduct(f)
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": p.ID, "price": p.Price, "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GET /admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"rows": h.Inv.Stock()})
}

// POST /admin/inventory
func (h *AdminHandler) UpdateInventory(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		return badRequest(c, "product_id", "missing or invalid product_id")
	}
	qty, ok := validate.Amount(c.FormValue("qty"), validate.MaxStock)
	if !ok {
		return badRequest(c, "qty", "stock must be a whole number from 0 to 1000000000")
	}
	if err := h.Inv.SetStock(pid, int(qty)); err != nil {
		return fail(c, "admin.inventory.save", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": pid, "qty": qty})
	return c.JSON(fiber.Map{"product_id": pid, "qty": qty})
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"orders": h.Orders.ListAll()})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, status := c.Params("id"), c.FormValue("status")
	if status == "" {
		return badRequest(c, "status", "missing status")
	}
	o, err := h.Orders.UpdateStatus(id, status)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}

// POST /admin/orders/:id/payment
func (h *AdminHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, status := c.Params("id"), c.FormValue("payment_status")
	if status == "" {
		return badRequest(c, "payment_status", "missing payment_status")
	}
	o, err := h.Orders.UpdatePaymentStatus(id, status)
	if err != nil {
		return fail(c, "admin.orders.payment", err)
	}
	applog.Audit(c, "admin.orders.payment", map[string]any{"order_id": id, "payment_status": o.PaymentStatus})
	return c.JSON(o)
}

// POST /admin/orders/:id/delete
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Orders.Delete(id); err != nil {
		return fail(c, "admin.orders.delete", err)
	}
	applog.Audit(c, "admin.orders.delete", map[string]any{"order_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.Orders.Statistics())
}

// POST /admin/locations
func (h *AdminHandler) AddLocation(c *fiber.Ctx) error {
	var f validate.LocationForm
	if err := c.BodyParser(&f); err != nil {
		return badRequest(c, "form", "could not read the location form")
	}
	l, err := h.Pickups.Add(f)
	if err != nil {
		return fail(c, "admin.locations.add", err)
	}
	applog.Audit(c, "admin.locations.add", map[string]any{"location": l.ID})
	return c.Status(fiber.StatusCreated).JSON(l)
}

// POST /admin/locations/:id
func (h *AdminHandler) UpdateLocation(c *fiber.Ctx) error {
	var p validate.LocationPatch
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "form", "could not read the location form")
	}
	l, err := h.Pickups.Update(c.Params("id"), p)
	if err != nil {
		return fail(c, "admin.locations.update", err)
	}
	applog.Audit(c, "admin.locations.update", map[string]any{"location": l.ID})
	return c.JSON(l)
}

// POST /admin/locations/:id/delete
func (h *AdminHandler) DeleteLocation(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Pickups.Delete(id); err != nil {
		return fail(c, "admin.locations.delete", err)
	}
	applog.Audit(c, "admin.locations.delete", map[string]any{"location": id})
	return c.SendStatus(fiber.StatusNoContent)
}
