package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	appfs "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/fs"
	logsvc "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/services/logger"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
	sqlxrepos "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewZeroLogger(nil, conf).With("ADMIN")

	// set up DB: migrations are run by the `migrate` command, not on open
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Ping(context.Background(), db, conf.Database.ConnectAttempts); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}
	conn := database.NewLoadedConnector(db)

	catalog, err := i18n.NewCatalog(appfs.FS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading translations: %v", err), err)
	}
	translator, err := catalog.Translator(i18n.English)
	if err != nil {
		logger.Fatal(fmt.Sprintf("getting translator: %v", err), err)
	}
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// start CLI
	accRepo := sqlxrepos.NewAccountRepository(conn)
	cli := commandLine{
		accRepo:    accRepo,
		accSvc:     account.NewService(accRepo),
		validate:   validate,
		translator: translator,
		migrate: func(command string, args ...string) error {
			return database.RunMigration(db.DB, command, args...)
		},
	}
	err = cli.run(os.Args)
	_ = conn.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}
