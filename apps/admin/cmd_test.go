package main

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	appfs "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/fs"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database/inmem"
	testutil "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/tests"
)

var accRepo account.Repository

func setup(t *testing.T) *commandLine {
	// set up repos
	accRepo = inmemdb.NewAccountRepository(inmemdb.NewDB())

	catalog, err := i18n.NewCatalog(appfs.FS)
	require.NoError(t, err)
	translator, err := catalog.Translator(i18n.English)
	require.NoError(t, err)
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// start CLI
	return &commandLine{
		accRepo:    accRepo,
		accSvc:     account.NewService(accRepo),
		validate:   validate,
		translator: translator,
		migrate:    fakeGoose,
	}
}

// fakeGoose checks the arguments the way goose does.
func fakeGoose(command string, args ...string) error {
	switch command {
	case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
	case "up-to":
		if len(args) == 0 {
			return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
		}
		if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
			return fmt.Errorf("version must be a number (got '%s')", args[0])
		}
	case "create":
		if len(args) == 0 {
			return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
		}
	case "down-to":
		if len(args) == 0 {
			return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
		}
		if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
			return fmt.Errorf("version must be a number (got '%s')", args[0])
		}
	default:
		return fmt.Errorf("%q: no such command", command)
	}
	return nil
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

// passwords are what the prompts return, in order
type passwords []string

func mockPrompts(extra interface{}) {
	pwds, _ := extra.(passwords)
	i := 0
	readPasswordFunc = func(fd int) ([]byte, error) {
		if i >= len(pwds) {
			return nil, nil
		}
		i++
		return []byte(pwds[i-1]), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_volunteer_notes", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "meera@khsf.org"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "meera@khsf.org", "-name", "Meera"}, wantErr: errHelp},
		{
			name:    "confirmation mismatch",
			args:    []string{"adduser", "-email", "meera@khsf.org", "-name", "Meera"},
			extra:   passwords{"Str0ng!Pass", "Str0ng!Pas"},
			wantErr: errPasswordMismatch,
		},
		{
			name:       "weak password",
			args:       []string{"adduser", "-email", "meera@khsf.org", "-name", "Meera"},
			extra:      passwords{"Ab1!", "Ab1!"},
			wantErrStr: "password: password must contain at least 8 characters",
		},
		{
			name:  "create admin",
			args:  []string{"adduser", "-email", " Meera@KHSF.org", "-name", "Meera", "-admin"},
			extra: passwords{"Str0ng!Pass", "Str0ng!Pass"},
		},
		{
			name:  "update, adding a role",
			args:  []string{"adduser", "-email", "meera@khsf.org", "-name", "Meera Iyer", "-volunteer"},
			extra: passwords{"Gr3en&Fields", "Gr3en&Fields"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			mockPrompts(tt.extra)
			checkErr(t, tt, cli.run(args))
		})
	}

	acc, err := accRepo.GetAccount(ctx, account.GetFilter{Email: "meera@khsf.org"})
	require.NoError(t, err)
	assert.Equal(t, "Meera Iyer", acc.Name)
	assert.ElementsMatch(t, []string{account.RoleAdmin, account.RoleVolunteer}, acc.Roles)
	assert.True(t, acc.IsActive)
	assert.NoError(t, acc.CheckPassword("Gr3en&Fields"))
}

func Test_commandLine_addUser_reactivates(t *testing.T) {
	cli := setup(t)
	testutil.CreateAccount(t, accRepo, "Ravi", "ravi@khsf.org", "", []string{account.RoleVolunteer}, false)

	mockPrompts(passwords{"Str0ng!Pass", "Str0ng!Pass"})
	require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "ravi@khsf.org", "-name", "Ravi"}))

	acc, err := cli.accSvc.Authenticate(context.Background(), "ravi@khsf.org", "Str0ng!Pass", account.RoleVolunteer)
	require.NoError(t, err)
	assert.Equal(t, []string{account.RoleVolunteer}, acc.Roles)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	acc := testutil.CreateAccount(t, accRepo, "Sunita", "sunita@khsf.org", "Str0ng!Pass", []string{account.RoleAdmin}, true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@khsf.org"}, wantErr: errHelp},
		{
			name:    "account not found",
			args:    []string{"resetpassword", "-email", "lol@khsf.org"},
			extra:   passwords{"Gr3en&Fields", "Gr3en&Fields"},
			wantErr: account.ErrNotFound,
		},
		{
			name:       "similar to name",
			args:       []string{"resetpassword", "-email", acc.Email},
			extra:      passwords{"Sunita12!", "Sunita12!"},
			wantErrStr: "password: password cannot be similar to account attributes",
		},
		{name: "reset", args: []string{"resetpassword", "-email", acc.Email}, extra: passwords{"Gr3en&Fields", "Gr3en&Fields"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			mockPrompts(tt.extra)
			err := cli.run(args)
			checkErr(t, tt, err)

			refreshed, rErr := accRepo.GetAccount(context.Background(), account.GetFilter{ID: acc.ID})
			require.NoError(t, rErr)
			if err == nil {
				assert.NoError(t, refreshed.CheckPassword("Gr3en&Fields"))
			} else {
				assert.NoError(t, refreshed.CheckPassword("Str0ng!Pass"))
			}
		})
	}
}
