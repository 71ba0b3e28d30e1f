package domain

// User is an identity record. AppMetadata is written only by the server;
// UserMetadata is whatever the user chose to store about themselves.
type User struct {
	ID           string  `db:"id" json:"id"`
	Email        string  `db:"email" json:"email"`
	Name         string  `db:"name" json:"name"`
	Hash         string  `db:"password_hash" json:"-"`
	UserMetadata JSONMap `db:"user_metadata" json:"user_metadata"`
	AppMetadata  JSONMap `db:"app_metadata" json:"app_metadata"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
}

// IsAdmin reads the server-managed flag only.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	v, ok := u.AppMetadata["is_admin"].(bool)
	return ok && v
}

// ClaimsAdmin reports whether the self-editable metadata asserts admin.
func (u *User) ClaimsAdmin() bool {
	if u == nil {
		return false
	}
	v, ok := u.UserMetadata["is_admin"].(bool)
	return ok && v
}
