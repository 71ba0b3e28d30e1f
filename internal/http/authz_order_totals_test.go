package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltcart/internal/repos"
)

func sidFrom(t *testing.T, h http.Header) string {
	t.Helper()
	for _, c := range (&http.Response{Header: h}).Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	t.Fatal("no sid cookie issued")
	return ""
}

func TestCartCheckoutFlow(t *testing.T) {
	ta := newTestApp(t)

	r := ta.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": repos.SeedProductBuds})
	require.Equal(t, http.StatusOK, r.status, r.raw)
	sid := sidFrom(t, r.header)
	cookie := header("Cookie", "sid="+sid)

	r = ta.do(t, http.MethodPatch, "/api/cart/items/"+repos.SeedProductBuds, map[string]any{"quantity": 3}, cookie)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.EqualValues(t, 3, r.data()["total_items"])
	assert.EqualValues(t, 449.97, r.data()["total_price"])

	r = ta.do(t, http.MethodPost, "/api/checkout",
		checkoutPayload("449.97", map[string]any{"product_id": repos.SeedProductBuds, "quantity": 3}), cookie)
	require.Equal(t, http.StatusCreated, r.status, r.raw)
	conf := r.data()
	assert.Regexp(t, `^MD\d{6}$`, conf["order_number"])
	assert.Equal(t, "pending", conf["status"])
	assert.Equal(t, "pending", conf["payment_status"])
	assert.NotEmpty(t, conf["order_id"])

	r = ta.do(t, http.MethodGet, "/api/cart", nil, cookie)
	require.Equal(t, http.StatusOK, r.status)
	assert.EqualValues(t, 0, r.data()["total_items"])

	r = ta.do(t, http.MethodGet, "/api/availability?product_id="+repos.SeedProductBuds, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.EqualValues(t, 57, r.data()["qty"])
	assert.Equal(t, "IN_STOCK", r.data()["status"])

	tok := ta.token(t, "admin@voltcart.test", true)
	r = ta.do(t, http.MethodGet, "/api/admin/orders/"+conf["order_id"].(string), nil, bearer(tok))
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Len(t, r.data()["items"], 1)
}

func TestCheckoutTotalMustMatch(t *testing.T) {
	ta := newTestApp(t)
	before := countRows(t, ta.db, "orders")

	r := ta.do(t, http.MethodPost, "/api/checkout",
		checkoutPayload("0.01", map[string]any{"product_id": repos.SeedProductPhone, "quantity": 1}))
	require.Equal(t, http.StatusBadRequest, r.status, r.raw)
	assert.Equal(t, "Order total does not match cart total", r.errMessage())
	assert.Equal(t, before, countRows(t, ta.db, "orders"))

	r = ta.do(t, http.MethodPost, "/api/checkout",
		checkoutPayload("1249.99", map[string]any{"product_id": repos.SeedProductLaptop, "quantity": 5}))
	// 5 x 1249.99 against 4 in stock
	assert.Equal(t, http.StatusBadRequest, r.status)
}

func TestCartRejectsOutOfStock(t *testing.T) {
	ta := newTestApp(t)
	r := ta.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": repos.SeedProductSpeaker})
	require.Equal(t, http.StatusBadRequest, r.status, r.raw)
	assert.Equal(t, "Product is out of stock", r.errMessage())

	r = ta.do(t, http.MethodPatch, "/api/cart/items/nope", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Invalid product ID format", r.errMessage())
}

func TestCartPanelState(t *testing.T) {
	ta := newTestApp(t)

	r := ta.do(t, http.MethodPatch, "/api/cart", map[string]any{"is_open": true})
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, true, r.data()["isOpen"])
	cookie := header("Cookie", "sid="+sidFrom(t, r.header))

	r = ta.do(t, http.MethodGet, "/api/cart", nil, cookie)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, true, r.data()["isOpen"])

	r = ta.do(t, http.MethodPatch, "/api/cart", map[string]any{}, cookie)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION_ERROR", r.errCode())
}
