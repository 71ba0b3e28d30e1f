package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"voltcart/internal/cart"
)

// CartRepo persists serialized cart state keyed by storage key. It satisfies
// cart.Storage.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

var _ cart.Storage = (*CartRepo)(nil)

func (r *CartRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, r.db.Rebind(`SELECT payload FROM cart_state WHERE id = ?`), key)
	if isNoRows(err) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (r *CartRepo) Put(ctx context.Context, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_state(id, payload, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`), key, string(payload), now())
	return err
}
