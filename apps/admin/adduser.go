package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

// addUser creates an account.Account, or updates the one having the same email:
// its password is replaced, the roles are added and it is reactivated.
func (cli *commandLine) addUser(name, email, pwd string, roles []string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	acc, err := cli.accSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != account.ErrNotFound {
			return err
		}
		na := account.NewAccount{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Roles:           roles,
		}
		if err := na.Validate(ctx, cli.validate, cli.accSvc); err != nil {
			return err
		}
		_, err = cli.accSvc.Create(ctx, na)
		return err
	}

	acc.Name = core.CleanString(name)
	sp := account.SetPassword{Password: pwd, PasswordConfirm: pwd}
	if err := sp.Validate(cli.validate, acc); err != nil {
		return err
	}
	if err := acc.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	for _, role := range roles {
		if !hasRole(acc, role) {
			acc.Roles = append(acc.Roles, role)
		}
	}
	acc.IsActive = true
	_, err = cli.accRepo.UpdateOrCreateAccount(ctx, acc)
	return err
}

func hasRole(acc account.Account, role string) bool {
	for _, r := range acc.Roles {
		if r == role {
			return true
		}
	}
	return false
}
