package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
)

const accountColumns = "id, name, email, roles, is_active, password_hash, created_at, updated_at, last_login"

type accountRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Roles        pq.StringArray `db:"roles"`
	IsActive     bool           `db:"is_active"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

type accountRepository struct {
	repository
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(conn *database.Connector) account.Repository {
	return &accountRepository{repository{conn: conn}}
}

func toAccountRow(acc account.Account) accountRow {
	roles := pq.StringArray(acc.Roles)
	if roles == nil {
		roles = pq.StringArray{}
	}
	return accountRow{
		ID:           acc.ID,
		Name:         acc.Name,
		Email:        acc.Email,
		Roles:        roles,
		IsActive:     acc.IsActive,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt.UTC(),
		UpdatedAt:    acc.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(acc.LastLogin.UTC(), !acc.LastLogin.IsZero()),
	}
}

func (row accountRow) toAccount() account.Account {
	roles := []string(row.Roles)
	if roles == nil {
		roles = []string{}
	}
	acc := account.Account{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Roles:        roles,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		acc.LastLogin = row.LastLogin.Time.UTC()
	}
	return acc
}

// trapAccountNotFound maps "no rows" and malformed ids to account.ErrNotFound
func trapAccountNotFound(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows || pqErrorCode(err) == codeInvalidTextRepresentation {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.Account) error {
	db, err := repo.db(ctx)
	if err != nil {
		return err
	}

	ids := make(pq.StringArray, 0, len(excluded))
	for _, acc := range excluded {
		ids = append(ids, acc.ID)
	}
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND NOT (id::text = ANY($2)))"
	if err := db.GetContext(ctx, &exists, q, strings.ToLower(email), ids); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return account.Account{}, err
	}

	var row accountRow
	q := `INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING ` + accountColumns
	r := toAccountRow(acc)
	err = db.GetContext(ctx, &row, q, r.ID, r.Name, r.Email, r.Roles, r.IsActive, r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin)
	if err != nil {
		if pqErrorCode(err) == codeUniqueViolation {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return row.toAccount(), nil
}

func (repo accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return account.Account{}, err
	}

	var (
		conds []string
		args  []interface{}
	)
	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, "id = $1")
	}
	if filter.Email != "" {
		args = append(args, strings.ToLower(filter.Email))
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return account.Account{}, account.ErrNotFound
	}

	var row accountRow
	q := "SELECT " + accountColumns + " FROM accounts WHERE " + strings.Join(conds, " AND ")
	if err := db.GetContext(ctx, &row, q, args...); err != nil {
		return account.Account{}, trapAccountNotFound(err, "getting account")
	}
	return row.toAccount(), nil
}

func (repo accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return account.Account{}, err
	}

	var row accountRow
	q := `UPDATE accounts
	SET name = $2, email = $3, roles = $4, is_active = $5, password_hash = $6, updated_at = $7, last_login = $8
	WHERE id = $1 RETURNING ` + accountColumns
	r := toAccountRow(acc)
	if err := db.GetContext(ctx, &row, q, r.ID, r.Name, r.Email, r.Roles, r.IsActive, r.PasswordHash, r.UpdatedAt, r.LastLogin); err != nil {
		if pqErrorCode(err) == codeUniqueViolation {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, trapAccountNotFound(err, "updating account")
	}
	return row.toAccount(), nil
}

func (repo accountRepository) UpdateOrCreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return account.Account{}, err
	}

	var row accountRow
	q := `INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (email) DO UPDATE
	SET name = EXCLUDED.name, roles = EXCLUDED.roles, is_active = EXCLUDED.is_active,
		password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at
	RETURNING ` + accountColumns
	r := toAccountRow(acc)
	err = db.GetContext(ctx, &row, q, r.ID, r.Name, r.Email, r.Roles, r.IsActive, r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "upserting account")
	}
	return row.toAccount(), nil
}
