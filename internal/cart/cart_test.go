package cart_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltcart/internal/cart"
	"voltcart/internal/domain"
)

func product(id string, price string, stock int) domain.ProductWithRefs {
	p := domain.ProductWithRefs{}
	p.ID = id
	p.Name = "Item " + id
	p.Slug = "item-" + id
	p.Price = decimal.RequireFromString(price)
	p.StockQuantity = stock
	p.Brand.Name = "Volt"
	p.Category.Name = "Audio"
	return p
}

func TestAddItemCapsAtStock(t *testing.T) {
	s := cart.New(cart.NewMemoryStorage(), "")
	p := product("a", "10.00", 2)

	s.AddItem(p)
	s.AddItem(p)
	s.AddItem(p)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, cart.PlaceholderImage, snap.Items[0].Image)
	assert.Equal(t, "Volt", snap.Items[0].Brand)
}

func TestUpdateQuantity(t *testing.T) {
	s := cart.New(cart.NewMemoryStorage(), "")
	s.AddItem(product("a", "10.00", 5))
	s.AddItem(product("b", "2.50", 5))

	s.UpdateQuantity("a", 50)
	assert.Equal(t, 5, s.Snapshot().Items[0].Quantity)

	s.UpdateQuantity("a", 0)
	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "b", snap.Items[0].ID)

	s.UpdateQuantity("missing", 3)
	assert.Equal(t, 1, s.TotalItems())
}

func TestTotalsUseExactDecimals(t *testing.T) {
	s := cart.New(cart.NewMemoryStorage(), "")
	a := product("a", "0.10", 10)
	b := product("b", "0.20", 10)
	for i := 0; i < 3; i++ {
		s.AddItem(a)
	}
	s.AddItem(b)

	assert.Equal(t, 4, s.TotalItems())
	assert.True(t, s.TotalPrice().Equal(decimal.RequireFromString("0.50")), s.TotalPrice().String())

	s.Clear()
	assert.Zero(t, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := cart.NewMemoryStorage()

	s := cart.New(mem, cart.Key("sid-1"))
	require.NoError(t, s.Load(ctx), "missing state loads as empty")
	s.AddItem(product("a", "19.99", 3))
	s.SetOpen(true)
	require.NoError(t, s.Save(ctx))

	raw, err := mem.Get(ctx, "cart-storage:sid-1")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "state")
	assert.Equal(t, float64(0), doc["version"])

	other := cart.New(mem, cart.Key("sid-1"))
	require.NoError(t, other.Load(ctx))
	snap := other.Snapshot()
	assert.True(t, snap.IsOpen)
	require.Len(t, snap.Items, 1)
	assert.True(t, snap.Items[0].Price.Equal(decimal.RequireFromString("19.99")))

	fresh := cart.New(mem, cart.Key("sid-2"))
	require.NoError(t, fresh.Load(ctx))
	assert.Empty(t, fresh.Snapshot().Items)
}
