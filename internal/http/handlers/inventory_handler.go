package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"campusmart/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	avail, err := h.Inv.CheckAvailability(productID)
	if err != nil {
		return fail(c, "availability", err)
	}
	return c.JSON(avail)
}

type LocationHandler struct {
	Pickups *services.PickupService
}

func (h *LocationHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"locations": h.Pickups.List()})
}
