package handlers

import (
	"voltcart/internal/http/api"
	"voltcart/internal/services"
	"voltcart/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sidCookie = "sid"

type CartHandler struct {
	Cart   *services.CartService
	Secure bool
}

// ensureSID returns the shopper's session id, issuing the cookie on first use.
func (h *CartHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if _, ok := validate.ID(sid); ok {
		return sid
	}
	sid = uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.Secure,
	})
	return sid
}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), h.ensureSID(c))
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, cv, "Cart retrieved successfully")
}

// POST /api/cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateCartItem)
	if err != nil {
		return err
	}
	cv, err := h.Cart.Add(c.UserContext(), h.ensureSID(c), in.ProductID)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, cv, "Item added to cart")
}

// PATCH /api/cart/items/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, err := api.PathID(c, "id", "product")
	if err != nil {
		return err
	}
	in, err := api.ParseBody(c, validate.ValidateCartQuantity)
	if err != nil {
		return err
	}
	cv, err := h.Cart.UpdateQuantity(c.UserContext(), h.ensureSID(c), id, *in.Quantity)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, cv, "Cart updated successfully")
}

// DELETE /api/cart/items/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := api.PathID(c, "id", "product")
	if err != nil {
		return err
	}
	cv, err := h.Cart.Remove(c.UserContext(), h.ensureSID(c), id)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, cv, "Item removed from cart")
}

// PATCH /api/cart
func (h *CartHandler) Panel(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateCartPanel)
	if err != nil {
		return err
	}
	cv, err := h.Cart.SetOpen(c.UserContext(), h.ensureSID(c), *in.IsOpen)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, cv, "")
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cv, err := h.Cart.Clear(c.UserContext(), h.ensureSID(c))
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, cv, "Cart cleared")
}
