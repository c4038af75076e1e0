package account

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Volunteer
	RoleVolunteer = "volunteer:"
)

var (
	AdminRoles     = []string{RoleAdmin, RoleAdminOwner}
	VolunteerRoles = []string{RoleVolunteer}
	AllRoles       = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Volunteers: 10 - 1
		RoleVolunteer: 1,
	}

	Roles = []Role{
		{Name: "Volunteer", Value: RoleVolunteer},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 3)
	all = append(all, AdminRoles...)
	all = append(all, VolunteerRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Account is a foundation admin or a learning hub volunteer.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (acc *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc.PasswordHash = hash
	return nil
}

func (acc *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(pwd))
}

func (acc *Account) RoleStartsWith(prefix string) bool {
	for _, role := range acc.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (acc *Account) IsAdmin() bool {
	return acc.RoleStartsWith(RoleAdmin)
}

func (acc *Account) IsVolunteer() bool {
	return acc.RoleStartsWith(RoleVolunteer)
}

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (na *NewAccount) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, na.Email)
}

// SetPassword defines the new password of an existing Account.
type SetPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	acc Account // checked for similarity
}

func (sp *SetPassword) Validate(validate *validator.Validate, acc Account) error {
	sp.acc = acc
	return validate.Struct(sp)
}

// GetFilter selects one account. Set fields are ANDed.
type GetFilter struct {
	ID    string
	Email string
}
