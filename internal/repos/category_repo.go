package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"voltcart/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, slug, description, image_url, is_active, created_at, updated_at`

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	q := `SELECT ` + categoryCols + ` FROM categories`
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY name`
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *CategoryRepo) BySlug(ctx context.Context, slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+categoryCols+` FROM categories WHERE slug = ?`), slug)
	return c, err
}

// Create assigns id and timestamps, then inserts.
func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	c.ID = uuid.NewString()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO categories(id, name, slug, description, image_url, is_active, created_at, updated_at)
		VALUES(:id, :name, :slug, :description, :image_url, :is_active, :created_at, :updated_at)`, c)
	return err
}

func (r *CategoryRepo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM categories WHERE slug = ?`, slug)
}

func (r *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM categories WHERE id = ?`, id)
}

type BrandRepo struct{ db *sqlx.DB }

func NewBrandRepo(db *sqlx.DB) *BrandRepo { return &BrandRepo{db: db} }

const brandCols = `id, name, slug, logo_url, is_active, created_at, updated_at`

func (r *BrandRepo) List(ctx context.Context, activeOnly bool) ([]domain.Brand, error) {
	q := `SELECT ` + brandCols + ` FROM brands`
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY name`
	out := []domain.Brand{}
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *BrandRepo) Create(ctx context.Context, b *domain.Brand) error {
	b.ID = uuid.NewString()
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO brands(id, name, slug, logo_url, is_active, created_at, updated_at)
		VALUES(:id, :name, :slug, :logo_url, :is_active, :created_at, :updated_at)`, b)
	return err
}

func (r *BrandRepo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM brands WHERE slug = ?`, slug)
}

func (r *BrandRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM brands WHERE id = ?`, id)
}

// exists runs a "SELECT 1 ... WHERE" probe written with ? placeholders.
func exists(ctx context.Context, db sqlx.QueryerContext, query string, args ...any) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, db, &one, sqlx.Rebind(sqlx.BindType(driverOf(db)), query+` LIMIT 1`), args...)
	if isNoRows(err) {
		return false, nil
	}
	return err == nil, err
}
