package apperr

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	msgDuplicate  = "A record with this value already exists"
	msgForeignKey = "Referenced record does not exist"
	msgCheck      = "Data violates database constraints"
	msgNotNull    = "Required field is missing"
	msgNoTable    = "Database table not found"
	msgNoColumn   = "Database column not found"
	msgDBTimeout  = "Database operation timed out"
)

// MapDB translates a store error into the taxonomy. It understands Postgres
// SQLSTATE codes (pgx) and SQLite result codes (modernc). An *Error passes
// through unchanged, so mapping twice is harmless.
func MapDB(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("Record")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Database(msgDBTimeout, err)
	}

	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return fromSQLState(pg.Code, err)
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		return fromSQLite(lite, err)
	}
	return Database(err.Error(), err)
}

func fromSQLState(code string, err error) *Error {
	switch code {
	case "23505":
		return Conflict(msgDuplicate)
	case "23503":
		return Validation(msgForeignKey)
	case "23514":
		return Validation(msgCheck)
	case "23502":
		return Validation(msgNotNull)
	case "42P01":
		return schemaMismatch(msgNoTable, err)
	case "42703":
		return schemaMismatch(msgNoColumn, err)
	}
	return Database(err.Error(), err)
}

func fromSQLite(e *sqlite.Error, err error) *Error {
	switch e.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return Conflict(msgDuplicate)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return Validation(msgForeignKey)
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return Validation(msgCheck)
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return Validation(msgNotNull)
	}
	msg := e.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return schemaMismatch(msgNoTable, err)
	case strings.Contains(msg, "no such column"), strings.Contains(msg, "has no column named"):
		return schemaMismatch(msgNoColumn, err)
	}
	return Database(msg, err)
}

// A schema mismatch is a deployment defect, not something the caller can fix.
func schemaMismatch(msg string, cause error) *Error {
	e := Database(msg, cause)
	e.Operational = false
	return e
}
