package main

import (
	"context"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	acc, err := cli.accSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	sp := account.SetPassword{Password: pwd, PasswordConfirm: pwd}
	if err := sp.Validate(cli.validate, acc); err != nil {
		return err
	}
	_, err = cli.accSvc.SetPassword(ctx, acc, pwd)
	return err
}
