package handlers

import (
	"github.com/gofiber/fiber/v2"

	"campusmart/internal/services"
	"campusmart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products?q=&page=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := c.Query("q")
	if len(q) > 64 {
		return badRequest(c, "q", "search text is too long")
	}
	page := c.QueryInt("page", 1)
	items, total := h.Catalog.Search(q, page, 0)
	return c.JSON(fiber.Map{"products": items, "total": total, "page": page})
}

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, "product.detail", err)
	}
	return c.JSON(p)
}
