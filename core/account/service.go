package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Account) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccount(ctx context.Context, filter GetFilter) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		// UpdateOrCreateAccount inserts `acc`, or updates the account having the same email.
		UpdateOrCreateAccount(ctx context.Context, acc Account) (Account, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email string, excluded ...Account) error
		Create(ctx context.Context, na NewAccount) (Account, error)
		GetByID(ctx context.Context, id string) (Account, error)
		GetByEmail(ctx context.Context, email string) (Account, error)
		// Authenticate checks the credentials of an active account holding any of `roles`
		// (any role when empty) and records the login.
		Authenticate(ctx context.Context, email, pwd string, roles ...string) (Account, error)
		SetPassword(ctx context.Context, acc Account, pwd string) (Account, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, excluded ...Account) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, na NewAccount) (Account, error) {
	now := nowFunc().UTC()
	acc := Account{
		ID:        uuid.NewString(),
		Name:      na.Name,
		Email:     core.CleanString(na.Email, true /* lower */),
		IsActive:  true,
		Roles:     na.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if acc.Roles == nil {
		acc.Roles = []string{}
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAccount(ctx, acc)
}

func (svc *service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string, roles ...string) (Account, error) {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, errors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if len(roles) > 0 && !hasAnyRolePrefix(acc, roles) {
		return Account{}, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return Account{}, ErrAccountDeactivated
	}

	acc.LastLogin = nowFunc().UTC()
	acc, err = svc.repo.UpdateAccount(ctx, acc)
	return acc, errors.Wrap(err, "setting lastLogin")
}

func (svc *service) SetPassword(ctx context.Context, acc Account, pwd string) (Account, error) {
	if err := acc.SetPassword(pwd); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	acc.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func hasAnyRolePrefix(acc Account, prefixes []string) bool {
	for _, p := range prefixes {
		if acc.RoleStartsWith(p) {
			return true
		}
	}
	return false
}
