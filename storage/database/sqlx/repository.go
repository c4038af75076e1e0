// Package sqlxrepos implements the PostgreSQL repositories with sqlx.
//
// Every repository reaches the database through the shared database.Connector: a call
// waits for the handle to be loaded (bounded by its context) and fails with an
// unavailable error when it cannot be.
package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
)

// postgres error codes
const (
	codeInvalidTextRepresentation = "22P02"
	codeUniqueViolation           = "23505"
)

type repository struct {
	conn *database.Connector
}

func (repo repository) db(ctx context.Context) (*sqlx.DB, error) {
	return repo.conn.Get(ctx)
}

func pqErrorCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

// orderBy builds an ORDER BY clause from `ordering`, keeping the fields in `columns` only.
// `tieBreaker` makes the order total.
func orderBy(ordering []core.DBOrdering, columns map[string]string, tieBreaker string) string {
	terms := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := columns[ord.Field]; ok {
			terms = append(terms, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	terms = append(terms, tieBreaker)
	return " ORDER BY " + strings.Join(terms, ", ")
}
