package services

import (
	"context"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/repos"
	"voltcart/internal/validate"
)

const relatedLimit = 4

// CatalogService is the read-only storefront view of the catalog.
type CatalogService struct {
	Cats    *repos.CategoryRepo
	Brands  *repos.BrandRepo
	Prods   *repos.ProductRepo
	Reviews *repos.ReviewRepo
}

func NewCatalogService(cats *repos.CategoryRepo, brands *repos.BrandRepo, prods *repos.ProductRepo, reviews *repos.ReviewRepo) *CatalogService {
	return &CatalogService{Cats: cats, Brands: brands, Prods: prods, Reviews: reviews}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out, err := s.Cats.List(ctx, true)
	if err != nil {
		return nil, apperr.MapDB(err)
	}
	return out, nil
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	out, err := s.Brands.List(ctx, true)
	if err != nil {
		return nil, apperr.MapDB(err)
	}
	return out, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, in validate.SearchInput) ([]domain.ProductWithRefs, error) {
	f := filterFrom(in)
	f.ActiveOnly = true
	out, err := s.Prods.List(ctx, f)
	if err != nil {
		return nil, apperr.MapDB(err)
	}
	return out, nil
}

type ProductDetail struct {
	Product domain.ProductWithRefs   `json:"product"`
	Related []domain.ProductWithRefs `json:"related"`
	Reviews []domain.Review          `json:"reviews"`
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (ProductDetail, error) {
	p, err := s.Prods.BySlug(ctx, validate.Slug(slug))
	if err != nil {
		return ProductDetail{}, notFoundOr(err, "Product")
	}
	related, err := s.Prods.Related(ctx, p.CategoryID, p.ID, relatedLimit)
	if err != nil {
		return ProductDetail{}, apperr.MapDB(err)
	}
	reviews, err := s.Reviews.Approved(ctx, p.ID)
	if err != nil {
		return ProductDetail{}, apperr.MapDB(err)
	}
	return ProductDetail{Product: p, Related: related, Reviews: reviews}, nil
}

func filterFrom(in validate.SearchInput) repos.ProductFilter {
	return repos.ProductFilter{
		Search:       in.Search,
		CategorySlug: in.Category,
		BrandSlug:    in.Brand,
		MinPrice:     in.MinPrice,
		MaxPrice:     in.MaxPrice,
		Featured:     in.Featured,
		Sort:         in.Sort,
		Order:        in.Order,
		Limit:        in.Limit,
		Offset:       in.Offset,
	}
}

// notFoundOr names the missing resource instead of the generic "Record".
func notFoundOr(err error, resource string) error {
	e := apperr.MapDB(err)
	if e.Kind == apperr.KindNotFound {
		return apperr.NotFound(resource)
	}
	return e
}
