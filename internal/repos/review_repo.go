package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"voltcart/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	rv.ID = uuid.NewString()
	rv.CreatedAt = now()
	rv.UpdatedAt = rv.CreatedAt
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO reviews(id, product_id, user_id, name, email, rating, comment, is_approved, created_at, updated_at)
		VALUES(:id, :product_id, :user_id, :name, :email, :rating, :comment, :is_approved, :created_at, :updated_at)`, rv)
	return err
}

// Approved lists the visible reviews of a product, newest first.
func (r *ReviewRepo) Approved(ctx context.Context, productID string) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, product_id, user_id, name, email, rating, comment, is_approved, created_at, updated_at
		FROM reviews
		WHERE product_id = ? AND is_approved = TRUE
		ORDER BY created_at DESC`), productID)
	return out, err
}
