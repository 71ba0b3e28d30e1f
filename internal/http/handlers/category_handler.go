package handlers

import (
	"voltcart/internal/http/api"
	"voltcart/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) Categories(c *fiber.Ctx) error {
	out, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, out, "Categories retrieved successfully")
}

// GET /api/brands
func (h *CategoryHandler) Brands(c *fiber.Ctx) error {
	out, err := h.Catalog.ListBrands(c.UserContext())
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, out, "Brands retrieved successfully")
}
