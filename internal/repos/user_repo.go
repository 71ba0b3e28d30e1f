package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"voltcart/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, name, password_hash, user_metadata, app_metadata, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now()
	if u.UserMetadata == nil {
		u.UserMetadata = domain.JSONMap{}
	}
	if u.AppMetadata == nil {
		u.AppMetadata = domain.JSONMap{}
	}
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO users(id, email, name, password_hash, user_metadata, app_metadata, created_at, updated_at)
		VALUES(:id, :email, :name, :password_hash, :user_metadata, :app_metadata, :created_at, :created_at)`, u)
	return err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SetAppMetadata(ctx context.Context, id string, md domain.JSONMap) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE users SET app_metadata = ?, updated_at = ? WHERE id = ?`), md, now(), id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// BindSession records a live session for userID until expires.
func (r *UserRepo) BindSession(ctx context.Context, sid, userID string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO sessions(id, user_id, created_at, expires_at) VALUES(?, ?, ?, ?)`),
		sid, userID, now(), expires.UTC().Format(tsLayout))
	return err
}

// SessionActive reports whether sid exists, belongs to userID and has not expired.
func (r *UserRepo) SessionActive(ctx context.Context, sid, userID string) (bool, error) {
	return exists(ctx, r.DB, `SELECT 1 FROM sessions WHERE id = ? AND user_id = ? AND expires_at > ?`,
		sid, userID, now())
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE id = ?`), sid)
	return err
}

// PruneSessions drops expired sessions.
func (r *UserRepo) PruneSessions(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
