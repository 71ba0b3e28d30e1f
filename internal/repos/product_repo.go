package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"voltcart/internal/domain"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = `
  SELECT
    p.id, p.name, p.slug, p.description, p.short_description, p.price, p.original_price,
    p.stock_quantity, p.sku, p.images, p.specifications, p.warranty_info, p.meta_title,
    p.meta_description, p.is_active, p.is_featured, p.category_id, p.brand_id,
    p.created_at, p.updated_at,
    c.id AS "categories.id", c.name AS "categories.name", c.slug AS "categories.slug",
    b.id AS "brands.id", b.name AS "brands.name", b.slug AS "brands.slug"
  FROM products p
  JOIN categories c ON c.id = p.category_id
  JOIN brands b ON b.id = p.brand_id`

// ProductFilter narrows List. Zero values mean "no filter".
type ProductFilter struct {
	Search       string
	CategorySlug string
	BrandSlug    string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Featured     *bool
	ActiveOnly   bool
	Sort         string // name | price | created_at | rating
	Order        string // asc | desc
	Limit        int
	Offset       int
}

var sortColumns = map[string]string{
	"name":       "p.name",
	"price":      "p.price",
	"created_at": "p.created_at",
	"rating":     "p.created_at", // products carry no rating column
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.ProductWithRefs, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.ActiveOnly {
		where = append(where, "p.is_active = TRUE")
	}
	if f.Search != "" {
		where = append(where, "LOWER(p.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}
	if f.CategorySlug != "" {
		where = append(where, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.BrandSlug != "" {
		where = append(where, "b.slug = ?")
		args = append(args, f.BrandSlug)
	}
	if f.MinPrice != nil {
		where = append(where, "p.price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Featured != nil {
		where = append(where, "p.is_featured = ?")
		args = append(args, *f.Featured)
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		col = "p.created_at"
	}
	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}

	q := productSelect + `
  WHERE ` + strings.Join(where, " AND ") + `
  ORDER BY ` + col + ` ` + dir + `, p.id
  LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	out := []domain.ProductWithRefs{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.ProductWithRefs, error) {
	var p domain.ProductWithRefs
	err := r.db.GetContext(ctx, &p, r.db.Rebind(productSelect+` WHERE p.id = ?`), id)
	return p, err
}

// BySlug returns an active product by slug.
func (r *ProductRepo) BySlug(ctx context.Context, slug string) (domain.ProductWithRefs, error) {
	var p domain.ProductWithRefs
	err := r.db.GetContext(ctx, &p, r.db.Rebind(productSelect+` WHERE p.slug = ? AND p.is_active = TRUE`), slug)
	return p, err
}

// Related lists other active products in the same category, newest first.
func (r *ProductRepo) Related(ctx context.Context, categoryID, excludeID string, limit int) ([]domain.ProductWithRefs, error) {
	out := []domain.ProductWithRefs{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(productSelect+`
  WHERE p.category_id = ? AND p.id <> ? AND p.is_active = TRUE
  ORDER BY p.created_at DESC
  LIMIT ?`), categoryID, excludeID, limit)
	return out, err
}

// ByIDs loads products keyed by id. Missing ids are simply absent.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(productSelect+` WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.ProductWithRefs
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p.Product
	}
	return out, nil
}

const productWriteCols = `
  name = :name, slug = :slug, description = :description, short_description = :short_description,
  price = :price, original_price = :original_price, stock_quantity = :stock_quantity, sku = :sku,
  images = :images, specifications = :specifications, warranty_info = :warranty_info,
  meta_title = :meta_title, meta_description = :meta_description, is_active = :is_active,
  is_featured = :is_featured, category_id = :category_id, brand_id = :brand_id, updated_at = :updated_at`

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products(
			id, name, slug, description, short_description, price, original_price, stock_quantity, sku,
			images, specifications, warranty_info, meta_title, meta_description, is_active, is_featured,
			category_id, brand_id, created_at, updated_at
		)
		VALUES(
			:id, :name, :slug, :description, :short_description, :price, :original_price, :stock_quantity, :sku,
			:images, :specifications, :warranty_info, :meta_title, :meta_description, :is_active, :is_featured,
			:category_id, :brand_id, :created_at, :updated_at
		)`, p)
	return err
}

// Update overwrites every mutable column of p.ID. sql.ErrNoRows when absent.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = now()
	res, err := r.db.NamedExecContext(ctx, `UPDATE products SET `+productWriteCols+` WHERE id = :id`, p)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// SlugTaken checks for another product with slug; excludeID may be empty.
func (r *ProductRepo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	if excludeID == "" {
		return exists(ctx, r.db, `SELECT 1 FROM products WHERE slug = ?`, slug)
	}
	return exists(ctx, r.db, `SELECT 1 FROM products WHERE slug = ? AND id <> ?`, slug, excludeID)
}

func (r *ProductRepo) SKUTaken(ctx context.Context, sku, excludeID string) (bool, error) {
	if excludeID == "" {
		return exists(ctx, r.db, `SELECT 1 FROM products WHERE sku = ?`, sku)
	}
	return exists(ctx, r.db, `SELECT 1 FROM products WHERE sku = ? AND id <> ?`, sku, excludeID)
}

// DecrementStock subtracts qty inside tx when enough stock exists.
func DecrementStock(ctx context.Context, tx *sqlx.Tx, productID string, qty int) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?, updated_at = ?
		WHERE id = ? AND stock_quantity >= ? AND is_active = TRUE
	`), qty, now(), productID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
