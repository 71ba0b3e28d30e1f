package services

import (
	"context"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/repos"
)

const lowStockBelow = 5

type InventoryService struct {
	Prods *repos.ProductRepo
}

func NewInventoryService(prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Prods: prods}
}

// CheckAvailability converts stock to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
// Unknown and inactive products read as out of stock.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		if e := apperr.MapDB(err); e.Kind != apperr.KindNotFound {
			return domain.Availability{}, e
		}
		return domain.Availability{Status: "OUT_OF_STOCK"}, nil
	}
	if !p.IsActive {
		return domain.Availability{Status: "OUT_OF_STOCK"}, nil
	}
	return Availability(p.StockQuantity), nil
}

func Availability(qty int) domain.Availability {
	status := "OUT_OF_STOCK"
	switch {
	case qty >= lowStockBelow:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}
}
