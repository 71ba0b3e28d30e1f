package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

func driverOf(q sqlx.QueryerContext) string {
	switch v := q.(type) {
	case *sqlx.DB:
		return v.DriverName()
	case *sqlx.Tx:
		return v.DriverName()
	}
	return DriverSQLite
}
