package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"voltcart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  id, order_number, customer_name, customer_email, customer_phone, shipping_address, billing_address,
  total_amount, status, payment_status, payment_method, notes, created_at, updated_at`

// Create inserts the order header and its items and takes the items out of
// stock, all in one transaction. Timestamps, item ids and a missing order id
// are assigned here.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO orders(`+orderCols+`)
		VALUES(
		  :id, :order_number, :customer_name, :customer_email, :customer_phone, :shipping_address,
		  :billing_address, :total_amount, :status, :payment_status, :payment_method, :notes,
		  :created_at, :updated_at
		)`, o); err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.ID = uuid.NewString()
		it.OrderID = o.ID
		it.CreatedAt = o.CreatedAt
		if err := DecrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO order_items(id, order_id, product_id, quantity, unit_price, total_price, created_at)
			VALUES(:id, :order_id, :product_id, :quantity, :unit_price, :total_price, :created_at)`, it); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, err
	}
	if err := r.db.SelectContext(ctx, &o.Items, r.db.Rebind(`
		SELECT id, order_id, product_id, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY created_at, id`), id); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// HasItemsForProduct reports whether any order line references the product.
func (r *OrderRepo) HasItemsForProduct(ctx context.Context, productID string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM order_items WHERE product_id = ?`, productID)
}
