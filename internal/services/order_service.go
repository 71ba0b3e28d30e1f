package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/repos"
	"voltcart/internal/validate"
)

type OrderService struct {
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
	Now    func() time.Time
}

func NewOrderService(prods *repos.ProductRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Prods: prods, Orders: orders, Now: time.Now}
}

// Confirmation is what the shopper sees after checkout.
type Confirmation struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      string             `json:"status"`
	Payment     string             `json:"payment_status"`
	Total       decimal.Decimal    `json:"total_amount"`
	ClientTotal decimal.Decimal    `json:"-"`
	Items       []domain.OrderItem `json:"items"`
}

// OrderNumber is "MD" followed by the last six digits of the unix-millis time.
func OrderNumber(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "MD" + ms
}

// Place prices every line from the catalog, rejects a client total that
// disagrees, and stores the order with stock taken in one transaction.
func (s *OrderService) Place(ctx context.Context, in validate.CheckoutInput) (Confirmation, error) {
	in.OrderInput = in.OrderInput.Sanitized()

	qty := map[string]int{}
	var ids []string
	for _, l := range in.Items {
		if _, seen := qty[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		qty[l.ProductID] += *l.Quantity
	}
	prods, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return Confirmation{}, apperr.MapDB(err)
	}

	orderID := uuid.NewString()
	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(ids))
	for i, id := range ids {
		p, ok := prods[id]
		if !ok || !p.IsActive {
			return Confirmation{}, apperr.Validation("Product not available",
				apperr.FieldError{Path: fmt.Sprintf("items.%d.product_id", i), Message: "Product not found"})
		}
		n := qty[id]
		if n > p.StockQuantity {
			return Confirmation{}, insufficientStock(p.Name)
		}
		line := p.Price.Mul(decimal.NewFromInt(int64(n)))
		if r := validate.CheckOrderItem(validate.OrderItemInput{
			OrderID:    orderID,
			ProductID:  id,
			Quantity:   &n,
			UnitPrice:  &p.Price,
			TotalPrice: &line,
		}); !r.Success {
			return Confirmation{}, r.Err()
		}
		total = total.Add(line)
		items = append(items, domain.OrderItem{ProductID: id, Quantity: n, UnitPrice: p.Price, TotalPrice: line})
	}

	client := *in.TotalAmount
	if !client.Equal(total) {
		return Confirmation{}, apperr.Validation("Order total does not match cart total",
			apperr.FieldError{Path: "total_amount", Message: "Expected " + total.StringFixed(2)})
	}

	o := &domain.Order{
		ID:              orderID,
		OrderNumber:     OrderNumber(s.Now()),
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ShippingAddress: domain.Address(in.ShippingAddress),
		BillingAddress:  domain.Address(in.BillingAddress),
		TotalAmount:     total,
		Status:          "pending",
		PaymentStatus:   "pending",
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
		Items:           items,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		if errors.Is(err, repos.ErrInsufficientStock) {
			return Confirmation{}, insufficientStock("one or more items")
		}
		return Confirmation{}, apperr.MapDB(err)
	}
	return Confirmation{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Payment:     o.PaymentStatus,
		Total:       total,
		ClientTotal: client,
		Items:       o.Items,
	}, nil
}

// Get loads an order with its lines.
func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, notFoundOr(err, "Order")
	}
	return o, nil
}

func insufficientStock(what string) error {
	return apperr.Validation("Insufficient stock for " + what)
}
