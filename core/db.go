package core

import (
	"context"
	"database/sql"
)

// DBExecutor is satisfied by *sql.DB, *sql.Tx, *sqlx.DB and *sqlx.Tx.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings keeps the orderings whose field is one of `fields`, in order.
func AllowedOrderings(orderings []DBOrdering, fields ...string) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		for _, f := range fields {
			if ord.Field == f {
				allowed = append(allowed, ord)
				break
			}
		}
	}
	return allowed
}
