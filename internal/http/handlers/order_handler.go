package handlers

import (
	"voltcart/internal/http/api"
	"voltcart/internal/log"
	"voltcart/internal/services"
	"voltcart/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders *services.OrderService
	Cart   *services.CartService
	Log    *log.Logger
}

// POST /api/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateCheckout)
	if err != nil {
		return err
	}
	conf, err := h.Orders.Place(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Log.Audit(c, "order.place", map[string]any{
		"order_id":     conf.OrderID,
		"order_number": conf.OrderNumber,
		"total":        conf.Total.StringFixed(2),
		"lines":        len(conf.Items),
	})

	// The order stands even if the cart cannot be emptied.
	if sid := c.Cookies(sidCookie); sid != "" {
		if _, err := h.Cart.Clear(c.UserContext(), sid); err != nil {
			h.Log.Warn(c, "cart not cleared after checkout", map[string]any{"order_id": conf.OrderID, "error": err.Error()})
		}
	}
	return api.Success(c, fiber.StatusCreated, conf, "Order placed successfully")
}
