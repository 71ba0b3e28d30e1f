package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"voltcart/internal/apperr"
	"voltcart/internal/cart"
	"voltcart/internal/repos"
)

// CartService keeps one cart.Store per shopper session in Storage.
type CartService struct {
	Storage cart.Storage
	Prods   *repos.ProductRepo

	mu sync.Mutex // serializes load-modify-save
}

func NewCartService(storage cart.Storage, prods *repos.ProductRepo) *CartService {
	return &CartService{Storage: storage, Prods: prods}
}

type CartView struct {
	cart.State
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	st, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return view(st), nil
}

// Add puts one unit of an active, in-stock product in the cart.
func (s *CartService) Add(ctx context.Context, sessionID, productID string) (CartView, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return CartView{}, notFoundOr(err, "Product")
	}
	if !p.IsActive {
		return CartView{}, apperr.NotFound("Product")
	}
	if p.StockQuantity <= 0 {
		return CartView{}, apperr.Validation("Product is out of stock")
	}
	return s.mutate(ctx, sessionID, func(st *cart.Store) { st.AddItem(p) })
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, qty int) (CartView, error) {
	return s.mutate(ctx, sessionID, func(st *cart.Store) { st.UpdateQuantity(productID, qty) })
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (CartView, error) {
	return s.mutate(ctx, sessionID, func(st *cart.Store) { st.RemoveItem(productID) })
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutate(ctx, sessionID, func(st *cart.Store) { st.Clear() })
}

func (s *CartService) SetOpen(ctx context.Context, sessionID string, open bool) (CartView, error) {
	return s.mutate(ctx, sessionID, func(st *cart.Store) { st.SetOpen(open) })
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*cart.Store)) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	fn(st)
	if err := st.Save(ctx); err != nil {
		return CartView{}, apperr.MapDB(err)
	}
	return view(st), nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cart.Store, error) {
	st := cart.New(s.Storage, cart.Key(sessionID))
	if err := st.Load(ctx); err != nil {
		return nil, apperr.MapDB(err)
	}
	return st, nil
}

func view(st *cart.Store) CartView {
	return CartView{State: st.Snapshot(), TotalItems: st.TotalItems(), TotalPrice: st.TotalPrice()}
}
