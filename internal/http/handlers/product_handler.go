package handlers

import (
	"encoding/json"

	"voltcart/internal/apperr"
	"voltcart/internal/http/api"
	"voltcart/internal/services"
	"voltcart/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	res := validate.ValidateProductSearch(api.ParseQuery(c))
	if !res.Success {
		return validationOf(res.Issues)
	}
	out, err := h.Catalog.ListProducts(c.UserContext(), res.Data)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusOK, out, "Products retrieved successfully")
}

// GET /api/products/:slug
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	d, err := h.Catalog.ProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	if !d.Product.IsActive {
		return apperr.NotFound("Product")
	}
	return api.Success(c, fiber.StatusOK, d, "Product retrieved successfully")
}

// POST /api/products/:slug/reviews
//
// The product comes from the path; a product_id in the body is overridden.
func (h *ProductHandler) SubmitReview(c *fiber.Ctx) error {
	d, err := h.Catalog.ProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	productID := d.Product.ID
	in, err := api.ParseBody(c, func(raw []byte) validate.Result[validate.ReviewInput] {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil || body == nil {
			return validate.ValidateReview(raw)
		}
		body["product_id"] = productID
		withID, _ := json.Marshal(body)
		return validate.ValidateReview(withID)
	})
	if err != nil {
		return err
	}

	var userID *string
	if u := api.CurrentUser(c); u != nil {
		userID = &u.ID
	}
	rv, err := h.Reviews.Submit(c.UserContext(), in, userID)
	if err != nil {
		return err
	}
	return api.Success(c, fiber.StatusCreated, rv, "Review submitted for moderation")
}

func validationOf(issues []apperr.FieldError) error {
	return apperr.Validation("Invalid query parameters", issues...)
}
