package account

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

type fakeRepo struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accounts: make(map[string]Account)}
}

func (r *fakeRepo) CheckEmailUniqueness(_ context.Context, email string, excluded ...Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
outer:
	for _, acc := range r.accounts {
		for _, ex := range excluded {
			if acc.ID == ex.ID {
				continue outer
			}
		}
		if acc.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateAccount(_ context.Context, acc Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[acc.ID] = acc
	return acc, nil
}

func (r *fakeRepo) GetAccount(_ context.Context, filter GetFilter) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if (filter.ID == "" || acc.ID == filter.ID) && (filter.Email == "" || acc.Email == filter.Email) {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *fakeRepo) UpdateAccount(_ context.Context, acc Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[acc.ID]; !ok {
		return Account{}, ErrNotFound
	}
	r.accounts[acc.ID] = acc
	return acc, nil
}

func (r *fakeRepo) UpdateOrCreateAccount(ctx context.Context, acc Account) (Account, error) {
	if existing, err := r.GetAccount(ctx, GetFilter{Email: acc.Email}); err == nil {
		acc.ID = existing.ID
		return r.UpdateAccount(ctx, acc)
	}
	return r.CreateAccount(ctx, acc)
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func failedTags(err error) []string {
	var tags []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			tags = append(tags, fe.Field()+":"+fe.Tag())
		}
	}
	return tags
}

func TestNewAccount_Validate(t *testing.T) {
	validate := newValidator()
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, NewAccount{Name: "Existing", Email: "taken@khsf.org", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     NewAccount
		wantTags []string
		wantErr  bool
	}{
		{name: "missing fields", data: NewAccount{}, wantTags: []string{"name:required", "email:required", "password:required", "password_confirm:required"}},
		{name: "too short", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "Ab1!", PasswordConfirm: "Ab1!"}, wantTags: []string{"password:pwdminlen"}},
		{name: "whitespace", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "Ab1! xyzw", PasswordConfirm: "Ab1! xyzw"}, wantTags: []string{"password:pwdnospace"}},
		{name: "all numeric", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "1234567890", PasswordConfirm: "1234567890"}, wantTags: []string{"password:pwdnotallnum"}},
		{name: "not complex", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "abcdefgh1", PasswordConfirm: "abcdefgh1"}, wantTags: []string{"password:pwdcplx"}},
		{name: "similar to email", data: NewAccount{Name: "Ravi", Email: "ravikumar@khsf.org", Password: "Ravikumar1!", PasswordConfirm: "Ravikumar1!"}, wantTags: []string{"password:pwdtoosim"}},
		{name: "common", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd"}, wantTags: []string{"password:pwdnocommon"}},
		{name: "confirm mismatch", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "Str0ng!Pass", PasswordConfirm: "Str0ng!Pas"}, wantTags: []string{"password_confirm:eqfield"}},
		{name: "invalid role", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "Str0ng!Pass", PasswordConfirm: "Str0ng!Pass", Roles: []string{"root:"}}, wantTags: []string{"roles:allroles"}},
		{name: "email taken", data: NewAccount{Name: "Ravi", Email: " TAKEN@khsf.org", Password: "Str0ng!Pass", PasswordConfirm: "Str0ng!Pass"}, wantErr: true},
		{name: "valid", data: NewAccount{Name: "Ravi", Email: "ravi@khsf.org", Password: "Str0ng!Pass", PasswordConfirm: "Str0ng!Pass", Roles: []string{RoleVolunteer}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(ctx, validate, svc)
			switch {
			case tt.wantTags != nil:
				assert.Equal(t, tt.wantTags, failedTags(err))
			case tt.wantErr:
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "email", verr.Fields[0].Field)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetPassword_Validate(t *testing.T) {
	validate := newValidator()
	acc := Account{Name: "Sunita Devi", Email: "sunita@khsf.org"}

	sp := SetPassword{Password: "Sunitadevi1!", PasswordConfirm: "Sunitadevi1!"}
	assert.Equal(t, []string{"password:pwdtoosim"}, failedTags(sp.Validate(validate, acc)))

	sp = SetPassword{Password: "Gr3en&Fields", PasswordConfirm: "Gr3en&Fields"}
	assert.NoError(t, sp.Validate(validate, acc))
}

func TestService_Authenticate(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	defer func(f func() time.Time) { nowFunc = f }(nowFunc)
	nowFunc = func() time.Time { return now }

	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	admin, err := svc.Create(ctx, NewAccount{Name: "Admin", Email: "Admin@KHSF.org", Password: "Str0ng!Pass", Roles: []string{RoleAdmin}})
	require.NoError(t, err)
	assert.Equal(t, "admin@khsf.org", admin.Email)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsVolunteer())

	volunteer, err := svc.Create(ctx, NewAccount{Name: "Vol", Email: "vol@khsf.org", Password: "Str0ng!Pass", Roles: []string{RoleVolunteer}})
	require.NoError(t, err)
	volunteer.IsActive = false
	_, err = repo.UpdateAccount(ctx, volunteer)
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		pwd     string
		roles   []string
		wantErr error
	}{
		{name: "unknown email", email: "nobody@khsf.org", pwd: "Str0ng!Pass", wantErr: ErrInvalidCredentials},
		{name: "wrong password", email: "admin@khsf.org", pwd: "nope", wantErr: ErrInvalidCredentials},
		{name: "missing role", email: "admin@khsf.org", pwd: "Str0ng!Pass", roles: []string{RoleVolunteer}, wantErr: ErrInvalidCredentials},
		{name: "deactivated", email: "vol@khsf.org", pwd: "Str0ng!Pass", roles: []string{RoleVolunteer}, wantErr: ErrAccountDeactivated},
		{name: "valid", email: " ADMIN@khsf.org ", pwd: "Str0ng!Pass", roles: []string{RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := svc.Authenticate(ctx, tt.email, tt.pwd, tt.roles...)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, admin.ID, acc.ID)
			assert.Equal(t, now, acc.LastLogin)
		})
	}
}

func TestService_SetPassword(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	acc, err := svc.Create(ctx, NewAccount{Name: "Admin", Email: "admin@khsf.org", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, acc.Roles)

	acc, err = svc.SetPassword(ctx, acc, "N3w&Better")
	require.NoError(t, err)
	assert.NoError(t, acc.CheckPassword("N3w&Better"))
	assert.Error(t, acc.CheckPassword("Str0ng!Pass"))
}

func TestMaxRolePriority(t *testing.T) {
	assert.Equal(t, 0, MaxRolePriority(nil))
	assert.Equal(t, 1, MaxRolePriority([]string{RoleVolunteer}))
	assert.Equal(t, 30, MaxRolePriority([]string{RoleVolunteer, RoleAdminOwner, RoleAdmin}))
	assert.True(t, strings.HasPrefix(RoleAdminOwner, RoleAdmin))
}
