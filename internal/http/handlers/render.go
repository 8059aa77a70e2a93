package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"campusmart/internal/domain"
	applog "campusmart/internal/log"
)

const msgInternal = "Something went wrong. Please try again."

// fail maps a service error onto a JSON response. Rejections carry the
// reason; anything else is logged and answered with a generic 500.
func fail(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		c.Status(status)
		applog.Error(c, action+".fail", err, nil)
		return c.JSON(fiber.Map{"error": msgInternal})
	}
	body := fiber.Map{"error": err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
		body["error"] = ve.Reason
		applog.Security(c, "validation.fail", map[string]any{"action": action, "field": ve.Field})
	} else {
		applog.Warn(c, action+".reject", err, nil)
	}
	return c.Status(status).JSON(body)
}

func statusFor(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, domain.ErrCartEmpty):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrLocationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrCartFull),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrDuplicateProduct),
		errors.Is(err, domain.ErrDuplicateOrder):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func badRequest(c *fiber.Ctx, field, reason string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reason, "field": field})
}
