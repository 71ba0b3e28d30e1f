package apperr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestKindStatusAndCode(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{Validation("bad"), 400, "VALIDATION_ERROR"},
		{InvalidJSON(), 400, "BAD_REQUEST"},
		{Authentication(""), 401, "AUTHENTICATION_ERROR"},
		{Authorization(""), 403, "AUTHORIZATION_ERROR"},
		{NotFound("Product"), 404, "NOT_FOUND"},
		{MethodNotAllowed("PATCH"), 405, "METHOD_NOT_ALLOWED"},
		{Conflict("dup"), 409, "CONFLICT"},
		{RateLimit(""), 429, "RATE_LIMIT_EXCEEDED"},
		{Database("", nil), 500, "DATABASE_ERROR"},
		{Internal(errors.New("nil map")), 500, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status(), tc.err.Name())
		assert.Equal(t, tc.code, tc.err.Code(), tc.err.Name())
	}
	assert.Equal(t, "Product not found", NotFound("Product").Message)
	assert.Equal(t, "Method PATCH not allowed", MethodNotAllowed("PATCH").Message)
	assert.False(t, Internal(nil).Operational)
	assert.True(t, Database("x", nil).Operational)
}

func TestFromWrapsForeignErrors(t *testing.T) {
	wrapped := fmt.Errorf("create product: %w", Conflict("dup"))
	assert.Equal(t, KindConflict, From(wrapped).Kind)
	assert.True(t, IsKind(wrapped, KindConflict))

	plain := From(errors.New("nil pointer"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.False(t, plain.Operational)
}

func TestStackIncludesCause(t *testing.T) {
	inner := Internal(errors.New("root"))
	outer := Database("wrapped", inner)
	st := outer.Stack()
	assert.Contains(t, st, "DatabaseError: wrapped")
	assert.Contains(t, st, "Caused by: InternalError: root")
	assert.Contains(t, st, "TestStackIncludesCause")
}

func TestMapDBPostgresCodes(t *testing.T) {
	cases := map[string]struct {
		kind        Kind
		msg         string
		operational bool
	}{
		"23505": {KindConflict, "A record with this value already exists", true},
		"23503": {KindValidation, "Referenced record does not exist", true},
		"23514": {KindValidation, "Data violates database constraints", true},
		"23502": {KindValidation, "Required field is missing", true},
		"42P01": {KindDatabase, "Database table not found", false},
		"42703": {KindDatabase, "Database column not found", false},
	}
	for code, want := range cases {
		got := MapDB(&pgconn.PgError{Code: code, Message: "raw"})
		assert.Equal(t, want.kind, got.Kind, code)
		assert.Equal(t, want.msg, got.Message, code)
		assert.Equal(t, want.operational, got.Operational, code)
	}

	other := &pgconn.PgError{Code: "53300", Message: "too many connections"}
	got := MapDB(other)
	assert.Equal(t, KindDatabase, got.Kind)
	assert.ErrorIs(t, got, other)
}

func TestMapDBNoRowsAndTimeout(t *testing.T) {
	nf := MapDB(fmt.Errorf("get product: %w", sql.ErrNoRows))
	assert.Equal(t, KindNotFound, nf.Kind)
	assert.Equal(t, "Record not found", nf.Message)

	to := MapDB(context.DeadlineExceeded)
	assert.Equal(t, KindDatabase, to.Kind)
	assert.Equal(t, "Database operation timed out", to.Message)
}

func TestMapDBSQLite(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`PRAGMA foreign_keys=ON`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE p (id TEXT PRIMARY KEY, slug TEXT NOT NULL UNIQUE, qty INTEGER CHECK (qty >= 0));
		CREATE TABLE c (id TEXT PRIMARY KEY, p_id TEXT REFERENCES p(id))`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO p (id, slug, qty) VALUES ('1', 'a', 1)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO p (id, slug, qty) VALUES ('2', 'a', 1)`)
	assert.Equal(t, KindConflict, MapDB(err).Kind)

	_, err = db.Exec(`INSERT INTO p (id, slug, qty) VALUES ('1', 'b', 1)`)
	assert.Equal(t, KindConflict, MapDB(err).Kind)

	_, err = db.Exec(`INSERT INTO p (id, slug, qty) VALUES ('3', 'c', -1)`)
	assert.Equal(t, "Data violates database constraints", MapDB(err).Message)

	_, err = db.Exec(`INSERT INTO p (id, slug, qty) VALUES ('4', NULL, 1)`)
	assert.Equal(t, "Required field is missing", MapDB(err).Message)

	_, err = db.Exec(`INSERT INTO c (id, p_id) VALUES ('1', 'missing')`)
	assert.Equal(t, "Referenced record does not exist", MapDB(err).Message)

	_, err = db.Exec(`SELECT * FROM nope`)
	got := MapDB(err)
	assert.Equal(t, "Database table not found", got.Message)
	assert.False(t, got.Operational)
}

func TestMapDBIsIdempotent(t *testing.T) {
	raw := &pgconn.PgError{Code: "23505"}
	a, b := MapDB(raw), MapDB(raw)
	assert.Equal(t, a.Kind, b.Kind)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Status(), b.Status())
	assert.ErrorIs(t, a, b)

	assert.Same(t, a, MapDB(a))
}
