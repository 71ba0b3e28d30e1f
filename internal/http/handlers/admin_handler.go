package handlers

import (
	"voltcart/internal/http/api"
	"voltcart/internal/log"
	"voltcart/internal/services"
	"voltcart/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Admin  *services.AdminCatalogService
	Orders *services.OrderService
	Log    *log.Logger
}

// GET /api/admin/brands
func (h *AdminHandler) ListBrands(c *fiber.Ctx) error {
	out, err := h.Admin.ListBrands(c.UserContext())
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, out, "Brands retrieved successfully")
}

// POST /api/admin/brands
func (h *AdminHandler) CreateBrand(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateBrand)
	if err != nil {
		return err
	}
	b, err := h.Admin.CreateBrand(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Log.Audit(c, "admin.brand.create", map[string]any{"brand_id": b.ID, "slug": b.Slug})
	return api.Success(c, fiber.StatusCreated, b, "Brand created successfully")
}

// GET /api/admin/categories
func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.Admin.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, out, "Categories retrieved successfully")
}

// POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateCategory)
	if err != nil {
		return err
	}
	cat, err := h.Admin.CreateCategory(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Log.Audit(c, "admin.category.create", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return api.Success(c, fiber.StatusCreated, cat, "Category created successfully")
}

// GET /api/admin/products
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	res := validate.ValidateProductSearch(api.ParseQuery(c))
	if !res.Success {
		return validationOf(res.Issues)
	}
	out, err := h.Admin.ListProducts(c.UserContext(), res.Data)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, out, "Products retrieved successfully")
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateProduct)
	if err != nil {
		return err
	}
	p, err := h.Admin.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Log.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID, "sku": p.SKU})
	return api.Success(c, fiber.StatusCreated, p, "Product created successfully")
}

// GET /api/admin/products/:id
func (h *AdminHandler) GetProduct(c *fiber.Ctx) error {
	id, err := api.PathID(c, "id", "product")
	if err != nil {
		return err
	}
	p, err := h.Admin.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, p, "Product retrieved successfully")
}

// PUT /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := api.PathID(c, "id", "product")
	if err != nil {
		return err
	}
	in, err := api.ParseBody(c, validate.ValidateProduct)
	if err != nil {
		return err
	}
	p, err := h.Admin.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	h.Log.Audit(c, "admin.product.update", map[string]any{"product_id": p.ID})
	return api.Success(c, fiber.StatusOK, p, "Product updated successfully")
}

// DELETE /api/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := api.PathID(c, "id", "product")
	if err != nil {
		return err
	}
	p, err := h.Admin.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	h.Log.Audit(c, "admin.product.delete", map[string]any{"product_id": p.ID, "name": p.Name})
	return api.Success(c, fiber.StatusOK, fiber.Map{"id": p.ID, "name": p.Name}, "Product deleted successfully")
}

// GET /api/admin/orders/:id
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := api.PathID(c, "id", "order")
	if err != nil {
		return err
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, o, "Order retrieved successfully")
}
