package handlers

import (
	"voltcart/internal/apperr"
	"voltcart/internal/http/api"
	"voltcart/internal/services"
	"voltcart/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/availability?product_id=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("product_id"))
	if !ok {
		return apperr.BadRequest("Invalid product ID format")
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, avail, "")
}
