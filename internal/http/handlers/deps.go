package handlers

import (
	"time"

	"voltcart/internal/config"
	"voltcart/internal/http/api"
	"voltcart/internal/log"
	"voltcart/internal/ratelimit"
	"voltcart/internal/repos"
	"voltcart/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Cfg      config.Config
	Log      *log.Logger
	Pipeline *api.Pipeline

	Admin      *AdminHandler
	Auth       *AuthHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Cart       *CartHandler
	Orders     *OrderHandler
	Inventory  *InventoryHandler
	Health     *HealthHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, l *log.Logger) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	brandRepo := repos.NewBrandRepo(db)
	prodRepo := repos.NewProductRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	cartRepo := repos.NewCartRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, brandRepo, prodRepo, reviewRepo)
	adminSvc := services.NewAdminCatalogService(catRepo, brandRepo, prodRepo, orderRepo, l)
	orderSvc := services.NewOrderService(prodRepo, orderRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	invSvc := services.NewInventoryService(prodRepo)
	reviewSvc := services.NewReviewService(prodRepo, reviewRepo)

	return &Deps{
		Cfg: cfg,
		Log: l,
		Pipeline: &api.Pipeline{
			Limiter:    ratelimit.New(),
			Auth:       auth,
			Log:        l,
			Production: cfg.IsProduction(),
			Timeout:    cfg.RequestTimeout,
		},
		Admin:      &AdminHandler{Admin: adminSvc, Orders: orderSvc, Log: l},
		Auth:       &AuthHandler{Auth: auth, Log: l},
		Products:   &ProductHandler{Catalog: catalogSvc, Reviews: reviewSvc},
		Categories: &CategoryHandler{Catalog: catalogSvc},
		Cart:       &CartHandler{Cart: cartSvc, Secure: cfg.IsProduction()},
		Orders:     &OrderHandler{Orders: orderSvc, Cart: cartSvc, Log: l},
		Inventory:  &InventoryHandler{Inv: invSvc},
		Health:     &HealthHandler{DB: db, Cfg: cfg, Log: l, Started: time.Now()},
	}
}
