package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

type registrationRepository struct {
	db *registrationTable
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db.registration}
}

func (repo *registrationRepository) query() []registration.Registration {
	regs := make([]registration.Registration, 0, len(repo.db.table))
	for _, reg := range repo.db.table {
		regs = append(regs, *reg)
	}
	return regs
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.fail != nil {
		return registration.Registration{}, repo.db.fail
	}
	if err := ctx.Err(); err != nil {
		return registration.Registration{}, err
	}
	stored := reg
	repo.db.table[reg.ID] = &stored
	return reg, nil
}

func sortValue(reg registration.Registration, field string) string {
	switch field {
	case "status":
		return string(reg.Status)
	case "type":
		return string(reg.Type)
	case "city":
		return strings.ToLower(reg.City)
	case "name":
		for _, n := range []string{reg.Name, reg.OrgName, reg.ContactPerson} {
			if n != "" {
				return strings.ToLower(n)
			}
		}
	}
	return ""
}

func less(a, b registration.Registration, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var cmp int
		if ord.Field == "created_at" {
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				cmp = -1
			case a.CreatedAt.After(b.CreatedAt):
				cmp = 1
			}
		} else {
			cmp = strings.Compare(sortValue(a, ord.Field), sortValue(b, ord.Field))
		}
		if cmp != 0 {
			return (cmp < 0) == ord.Ascending
		}
	}
	return a.ID < b.ID
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, ordering []core.DBOrdering) ([]registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.fail != nil {
		return nil, repo.db.fail
	}
	regs := repo.query()
	sort.Slice(regs, func(i, j int) bool { return less(regs[i], regs[j], ordering) })
	return regs, nil
}

func (repo *registrationRepository) QuerySummaries(ctx context.Context) ([]registration.Summary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.fail != nil {
		return nil, repo.db.fail
	}
	summaries := make([]registration.Summary, 0, len(repo.db.table))
	for _, reg := range repo.db.table {
		summaries = append(summaries, registration.Summary{ID: reg.ID, Status: reg.Status, Type: reg.Type})
	}
	return summaries, nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.fail != nil {
		return registration.Registration{}, repo.db.fail
	}
	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) UpdateRegistrationStatus(ctx context.Context, id string, status, expected registration.Status) (registration.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.fail != nil {
		return registration.Registration{}, repo.db.fail
	}
	reg, ok := repo.db.table[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	if expected != "" && reg.Status != expected {
		return registration.Registration{}, registration.ErrStatusConflict
	}
	reg.Status = status
	return *reg, nil
}
