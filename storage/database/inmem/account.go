package inmemdb

import (
	"context"
	"strings"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

func isExcluded(acc *account.Account, excluded []account.Account) bool {
	for _, e := range excluded {
		if e.ID == acc.ID {
			return true
		}
	}
	return false
}

// findByEmail must be called with the table lock held.
func (repo *accountRepository) findByEmail(email string) *account.Account {
	email = strings.ToLower(email)
	for _, acc := range repo.db.table {
		if acc.Email == email {
			return acc
		}
	}
	return nil
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.Account) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if acc := repo.findByEmail(email); acc != nil && !isExcluded(acc, excluded) {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.findByEmail(acc.Email) != nil {
		return account.Account{}, account.ErrEmailExists
	}
	acc.Email = strings.ToLower(acc.Email)
	stored := acc
	repo.db.table[acc.ID] = &stored
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID == "" && filter.Email == "" {
		return account.Account{}, account.ErrNotFound
	}
	for _, acc := range repo.db.table {
		if filter.ID != "" && acc.ID != filter.ID {
			continue
		}
		if filter.Email != "" && acc.Email != strings.ToLower(filter.Email) {
			continue
		}
		return *acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[acc.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	if other := repo.findByEmail(acc.Email); other != nil && other.ID != acc.ID {
		return account.Account{}, account.ErrEmailExists
	}
	acc.Email = strings.ToLower(acc.Email)
	stored := acc
	repo.db.table[acc.ID] = &stored
	return acc, nil
}

func (repo *accountRepository) UpdateOrCreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	acc.Email = strings.ToLower(acc.Email)
	if orig := repo.findByEmail(acc.Email); orig != nil {
		orig.Name = acc.Name
		orig.Roles = acc.Roles
		orig.IsActive = acc.IsActive
		orig.PasswordHash = acc.PasswordHash
		orig.UpdatedAt = acc.UpdatedAt
		return *orig, nil
	}
	stored := acc
	repo.db.table[acc.ID] = &stored
	return acc, nil
}
