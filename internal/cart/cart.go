// Package cart is the shopper's cart: line items plus drawer state, saved to
// and loaded from a key-value Storage under one key.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"voltcart/internal/domain"
)

const (
	StorageKey       = "cart-storage"
	PlaceholderImage = "/placeholder.svg"
)

var ErrNotFound = errors.New("cart: no saved state")

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
}

type Item struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image"`
	Quantity      int              `json:"quantity"`
	Brand         string           `json:"brand"`
	Category      string           `json:"category"`
	StockQuantity int              `json:"stockQuantity"`
}

type State struct {
	Items  []Item `json:"items"`
	IsOpen bool   `json:"isOpen"`
}

type persisted struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// Store is safe for concurrent use.
type Store struct {
	storage Storage
	key     string

	mu    sync.Mutex
	state State
}

// New returns an empty store persisted under key (StorageKey when empty).
func New(storage Storage, key string) *Store {
	if key == "" {
		key = StorageKey
	}
	return &Store{storage: storage, key: key, state: State{Items: []Item{}}}
}

// AddItem adds one unit of p. An existing line grows by one only while it is
// below the product's stock.
func (s *Store) AddItem(p domain.ProductWithRefs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Items {
		it := &s.state.Items[i]
		if it.ID != p.ID {
			continue
		}
		if it.Quantity < p.StockQuantity {
			it.Quantity++
		}
		return
	}
	img := PlaceholderImage
	if len(p.Images) > 0 && p.Images[0] != "" {
		img = p.Images[0]
	}
	s.state.Items = append(s.state.Items, Item{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         img,
		Quantity:      1,
		Brand:         p.Brand.Name,
		Category:      p.Category.Name,
		StockQuantity: p.StockQuantity,
	})
}

func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

func (s *Store) remove(id string) {
	kept := s.state.Items[:0]
	for _, it := range s.state.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.state.Items = kept
}

// UpdateQuantity sets a line's quantity, capped at its stock. Zero or less
// removes the line.
func (s *Store) UpdateQuantity(id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		s.remove(id)
		return
	}
	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			s.state.Items[i].Quantity = min(qty, s.state.Items[i].StockQuantity)
		}
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.state.Items = []Item{}
	s.mu.Unlock()
}

func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	s.state.IsOpen = open
	s.mu.Unlock()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.state.Items {
		n += it.Quantity
	}
	return n
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.state.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.state.Items))
	copy(items, s.state.Items)
	return State{Items: items, IsOpen: s.state.IsOpen}
}

// Load replaces the state with what was last saved. A missing entry leaves an
// empty cart.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	if p.State.Items == nil {
		p.State.Items = []Item{}
	}
	s.mu.Lock()
	s.state = p.State
	s.mu.Unlock()
	return nil
}

func (s *Store) Save(ctx context.Context) error {
	raw, err := json.Marshal(persisted{State: s.Snapshot()})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Key scopes StorageKey to one shopper session.
func Key(sessionID string) string { return StorageKey + ":" + sessionID }
