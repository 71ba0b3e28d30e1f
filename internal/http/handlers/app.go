package handlers

import (
	"time"

	"voltcart/internal/apperr"
	"voltcart/internal/http/api"
	"voltcart/internal/log"
	"voltcart/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const maxBody = 1 << 20 // 1 MiB

// NewApp builds the HTTP surface: process-wide middleware, the admin API
// behind the pipeline, auth, and the public storefront.
func NewApp(d *Deps) *fiber.App {
	p := d.Pipeline
	app := fiber.New(fiber.Config{
		AppName:      "voltcart",
		ErrorHandler: p.ErrorHandler,
		BodyLimit:    maxBody,
	})

	app.Use(requestid.New())
	app.Use(recover.New(recover.Config{EnableStackTrace: d.Cfg.IsDevelopment()}))
	app.Use(api.SecurityHeaders())

	r := app.Group("/api", api.CORS())
	r.Get("/health", d.Health.Check)

	// Admin
	admin := r.Group("/admin", api.NoCache)
	p.Mount(admin, "/brands", map[string]api.Endpoint{
		fiber.MethodGet:  {Limit: ratelimit.Read, Access: api.Admin, Handler: d.Admin.ListBrands},
		fiber.MethodPost: {Limit: ratelimit.Write, Access: api.Admin, Handler: d.Admin.CreateBrand},
	})
	p.Mount(admin, "/categories", map[string]api.Endpoint{
		fiber.MethodGet:  {Limit: ratelimit.Read, Access: api.Admin, Handler: d.Admin.ListCategories},
		fiber.MethodPost: {Limit: ratelimit.Write, Access: api.Admin, Handler: d.Admin.CreateCategory},
	})
	p.Mount(admin, "/products", map[string]api.Endpoint{
		fiber.MethodGet:  {Limit: ratelimit.Read, Access: api.Admin, Handler: d.Admin.ListProducts},
		fiber.MethodPost: {Limit: ratelimit.Write, Access: api.Admin, Handler: d.Admin.CreateProduct},
	})
	p.Mount(admin, "/products/:id", map[string]api.Endpoint{
		fiber.MethodGet:    {Limit: ratelimit.Read, Access: api.Admin, Handler: d.Admin.GetProduct},
		fiber.MethodPut:    {Limit: ratelimit.Write, Access: api.Admin, Handler: d.Admin.UpdateProduct},
		fiber.MethodDelete: {Limit: ratelimit.Delete, Access: api.Admin, Handler: d.Admin.DeleteProduct},
	})
	p.Mount(admin, "/orders/:id", map[string]api.Endpoint{
		fiber.MethodGet: {Limit: ratelimit.Read, Access: api.Admin, Handler: d.Admin.GetOrder},
	})

	// Auth (login throttled)
	auth := r.Group("/auth")
	auth.Post("/login", limit(5, 10*time.Minute, "login", "Too many login attempts. Please try again later."),
		p.Route(api.RouteOpts{Methods: []string{fiber.MethodPost}}, d.Auth.Login))
	auth.Post("/logout", p.Route(api.RouteOpts{Methods: []string{fiber.MethodPost}, Access: api.Authenticated}, d.Auth.Logout))
	auth.Get("/session", p.Route(api.RouteOpts{Methods: []string{fiber.MethodGet}}, d.Auth.Session))

	// Storefront
	shop := limit(60, time.Minute, "shop", "")
	pub := func(h fiber.Handler) fiber.Handler { return p.Route(api.RouteOpts{}, h) }
	r.Get("/products", shop, pub(d.Products.List))
	r.Get("/products/:slug", shop, pub(d.Products.Detail))
	r.Post("/products/:slug/reviews", shop, p.Route(api.RouteOpts{Access: api.Optional}, d.Products.SubmitReview))
	r.Get("/categories", shop, pub(d.Categories.Categories))
	r.Get("/brands", shop, pub(d.Categories.Brands))
	r.Get("/availability", shop, pub(d.Inventory.Check))
	r.Post("/checkout", shop, pub(d.Orders.Checkout))

	r.Get("/cart", shop, pub(d.Cart.View))
	r.Patch("/cart", shop, pub(d.Cart.Panel))
	r.Delete("/cart", shop, pub(d.Cart.Clear))
	r.Post("/cart/items", shop, pub(d.Cart.Add))
	r.Patch("/cart/items/:id", shop, pub(d.Cart.Update))
	r.Delete("/cart/items/:id", shop, pub(d.Cart.Remove))

	return app
}

// limit is the fixed-window limiter for routes outside the admin policies.
// Hitting it raises a RateLimit error for the app error handler.
func limit(n int, window time.Duration, name, msg string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        n,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return log.ClientIP(c) + "|" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperr.RateLimit(msg)
		},
	})
}
