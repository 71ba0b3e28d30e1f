package services

import (
	"context"
	"strings"
	"time"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/log"
	"voltcart/internal/repos"
	"voltcart/internal/validate"
)

const (
	msgSlugTaken      = "A product with this slug already exists"
	msgSKUTaken       = "A product with this SKU already exists"
	msgProductOrdered = "Cannot delete product that has been ordered. Consider deactivating it instead."
)

// AdminCatalogService performs catalog writes for the back office. Inputs
// arrive validated; sanitizing happens here, before any lookup or write.
// Uniqueness pre-checks give friendly messages, the unique indexes decide.
type AdminCatalogService struct {
	Cats   *repos.CategoryRepo
	Brands *repos.BrandRepo
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
	Log    *log.Logger
}

func NewAdminCatalogService(cats *repos.CategoryRepo, brands *repos.BrandRepo, prods *repos.ProductRepo, orders *repos.OrderRepo, l *log.Logger) *AdminCatalogService {
	return &AdminCatalogService{Cats: cats, Brands: brands, Prods: prods, Orders: orders, Log: l}
}

func (s *AdminCatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out, err := s.Cats.List(ctx, false)
	if err != nil {
		return nil, apperr.MapDB(err)
	}
	return out, nil
}

func (s *AdminCatalogService) CreateCategory(ctx context.Context, in validate.CategoryInput) (domain.Category, error) {
	in = in.Sanitized()
	if err := requireFields(field{"name", "Name", in.Name}, field{"slug", "Slug", in.Slug}); err != nil {
		return domain.Category{}, err
	}
	taken, err := s.Cats.SlugTaken(ctx, in.Slug)
	if err != nil {
		return domain.Category{}, apperr.MapDB(err)
	}
	if taken {
		return domain.Category{}, apperr.Conflict("A category with this slug already exists")
	}
	c := domain.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		IsActive:    *in.IsActive,
	}
	if err := s.track("insert", "categories", func() error { return s.Cats.Create(ctx, &c) }); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *AdminCatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	out, err := s.Brands.List(ctx, false)
	if err != nil {
		return nil, apperr.MapDB(err)
	}
	return out, nil
}

func (s *AdminCatalogService) CreateBrand(ctx context.Context, in validate.BrandInput) (domain.Brand, error) {
	in = in.Sanitized()
	if err := requireFields(field{"name", "Name", in.Name}, field{"slug", "Slug", in.Slug}); err != nil {
		return domain.Brand{}, err
	}
	taken, err := s.Brands.SlugTaken(ctx, in.Slug)
	if err != nil {
		return domain.Brand{}, apperr.MapDB(err)
	}
	if taken {
		return domain.Brand{}, apperr.Conflict("A brand with this slug already exists")
	}
	b := domain.Brand{
		Name:     in.Name,
		Slug:     in.Slug,
		LogoURL:  in.LogoURL,
		IsActive: *in.IsActive,
	}
	if err := s.track("insert", "brands", func() error { return s.Brands.Create(ctx, &b) }); err != nil {
		return domain.Brand{}, err
	}
	return b, nil
}

// ListProducts sees inactive products too.
func (s *AdminCatalogService) ListProducts(ctx context.Context, in validate.SearchInput) ([]domain.ProductWithRefs, error) {
	out, err := s.Prods.List(ctx, filterFrom(in))
	if err != nil {
		return nil, apperr.MapDB(err)
	}
	return out, nil
}

func (s *AdminCatalogService) GetProduct(ctx context.Context, id string) (domain.ProductWithRefs, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.ProductWithRefs{}, notFoundOr(err, "Product")
	}
	return p, nil
}

func (s *AdminCatalogService) CreateProduct(ctx context.Context, in validate.ProductInput) (domain.ProductWithRefs, error) {
	in = in.Sanitized()
	if err := requireProductFields(in); err != nil {
		return domain.ProductWithRefs{}, err
	}
	if err := s.checkIdentifiers(ctx, in.Slug, in.SKU, "", true, true); err != nil {
		return domain.ProductWithRefs{}, err
	}
	if err := s.checkRefs(ctx, in.CategoryID, in.BrandID); err != nil {
		return domain.ProductWithRefs{}, err
	}
	p := productFrom(in)
	if err := s.track("insert", "products", func() error { return s.Prods.Create(ctx, &p) }); err != nil {
		return domain.ProductWithRefs{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

// UpdateProduct replaces every mutable field of id. Slug and SKU are only
// re-checked when they change.
func (s *AdminCatalogService) UpdateProduct(ctx context.Context, id string, in validate.ProductInput) (domain.ProductWithRefs, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.ProductWithRefs{}, err
	}
	in = in.Sanitized()
	if err := requireProductFields(in); err != nil {
		return domain.ProductWithRefs{}, err
	}
	slugChanged, skuChanged := in.Slug != existing.Slug, in.SKU != existing.SKU
	if err := s.checkIdentifiers(ctx, in.Slug, in.SKU, id, slugChanged, skuChanged); err != nil {
		return domain.ProductWithRefs{}, err
	}
	if err := s.checkRefs(ctx, in.CategoryID, in.BrandID); err != nil {
		return domain.ProductWithRefs{}, err
	}
	p := productFrom(in)
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	err = s.track("update", "products", func() error { return s.Prods.Update(ctx, &p) })
	if err != nil {
		return domain.ProductWithRefs{}, notFoundOr(err, "Product")
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct refuses products that appear on any order line.
func (s *AdminCatalogService) DeleteProduct(ctx context.Context, id string) (domain.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	ordered, err := s.Orders.HasItemsForProduct(ctx, id)
	if err != nil {
		return domain.Product{}, apperr.MapDB(err)
	}
	if ordered {
		return domain.Product{}, apperr.Validation(msgProductOrdered)
	}
	if err := s.track("delete", "products", func() error { return s.Prods.Delete(ctx, id) }); err != nil {
		return domain.Product{}, notFoundOr(err, "Product")
	}
	return existing.Product, nil
}

// checkIdentifiers looks up only the identifiers flagged for checking.
func (s *AdminCatalogService) checkIdentifiers(ctx context.Context, slug, sku, excludeID string, checkSlug, checkSKU bool) error {
	if checkSlug {
		taken, err := s.Prods.SlugTaken(ctx, slug, excludeID)
		if err != nil {
			return apperr.MapDB(err)
		}
		if taken {
			return apperr.Conflict(msgSlugTaken)
		}
	}
	if checkSKU {
		taken, err := s.Prods.SKUTaken(ctx, sku, excludeID)
		if err != nil {
			return apperr.MapDB(err)
		}
		if taken {
			return apperr.Conflict(msgSKUTaken)
		}
	}
	return nil
}

type field struct{ path, label, value string }

// requireFields rejects values that sanitizing left empty, such as a slug of
// only dashes.
func requireFields(fs ...field) error {
	for _, f := range fs {
		if strings.TrimSpace(f.value) == "" {
			msg := f.label + " is required"
			return apperr.Validation(msg, apperr.FieldError{Path: f.path, Message: msg})
		}
	}
	return nil
}

func requireProductFields(in validate.ProductInput) error {
	return requireFields(field{"name", "Name", in.Name}, field{"slug", "Slug", in.Slug}, field{"sku", "SKU", in.SKU})
}

func (s *AdminCatalogService) checkRefs(ctx context.Context, categoryID, brandID string) error {
	ok, err := s.Cats.Exists(ctx, categoryID)
	if err != nil {
		return apperr.MapDB(err)
	}
	if !ok {
		return apperr.Validation("Category not found")
	}
	ok, err = s.Brands.Exists(ctx, brandID)
	if err != nil {
		return apperr.MapDB(err)
	}
	if !ok {
		return apperr.Validation("Brand not found")
	}
	return nil
}

// track runs one write, logs it as a database operation and maps its error.
func (s *AdminCatalogService) track(op, table string, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.Log != nil {
		s.Log.DatabaseOperation(op, table, err == nil, time.Since(start), err)
	}
	if err != nil {
		return apperr.MapDB(err)
	}
	return nil
}

func productFrom(in validate.ProductInput) domain.Product {
	return domain.Product{
		Name:             in.Name,
		Slug:             in.Slug,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            *in.Price,
		OriginalPrice:    in.OriginalPrice,
		StockQuantity:    *in.StockQuantity,
		SKU:              in.SKU,
		Images:           domain.StringList(in.Images),
		Specifications:   domain.JSONMap(in.Specifications),
		WarrantyInfo:     in.WarrantyInfo,
		MetaTitle:        in.MetaTitle,
		MetaDescription:  in.MetaDescription,
		IsActive:         *in.IsActive,
		IsFeatured:       *in.IsFeatured,
		CategoryID:       in.CategoryID,
		BrandID:          in.BrandID,
	}
}
