package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
)

// migrateFunc runs a goose command over the embedded migrations.
type migrateFunc func(command string, args ...string) error

type commandLine struct {
	accRepo    account.Repository
	accSvc     account.Service
	validate   *validator.Validate
	translator ut.Translator
	migrate    migrateFunc
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name NAME [-admin] [-volunteer] - create or update an account")
	fmt.Println("  resetpassword -email EMAIL - reset an account's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The account's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The account's name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant access to the admin dashboard.")
	addUserVolunteer := addUserCmd.Bool("volunteer", false, "Grant access to the learning hub.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}

		var roles []string
		if *addUserAdmin {
			roles = append(roles, account.RoleAdmin)
		}
		if *addUserVolunteer {
			roles = append(roles, account.RoleVolunteer)
		}
		return cli.explain(cli.addUser(*addUserName, *addUserEmail, pwd, roles))

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.explain(cli.resetPassword(*resetPasswordEmail, pwd))

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)

	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads the password, then its confirmation, without echoing them.
func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil || len(pwd) == 0 {
		return "", err
	}

	fmt.Print("Confirm password:")
	confirm, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(confirm) != string(pwd) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}

// explain turns validation errors into a readable message.
func (cli *commandLine) explain(err error) error {
	var (
		vErrs validator.ValidationErrors
		cErr  *core.ValidationError
	)
	switch {
	case errors.As(err, &vErrs):
		msgs := make([]string, 0, len(vErrs))
		for _, vErr := range vErrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", vErr.Field(), vErr.Translate(cli.translator)))
		}
		return errors.New(strings.Join(msgs, "; "))
	case errors.As(err, &cErr) && len(cErr.Fields) > 0:
		msgs := make([]string, 0, len(cErr.Fields))
		for _, fErr := range cErr.Fields {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fErr.Field, fErr.Error))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}
