package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/apps/api/echo"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
	appfs "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/fs"
	emailsvc "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/services/email"
	logsvc "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/services/logger"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
	sqlxrepos "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewZeroLogger(nil, conf).With("API"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Wait()

	dbLogger := logsvc.NewRollbarLogger(logsvc.NewZeroLogger(nil, conf).With("DB"), conf)

	// set up DB: the connection is opened in the background, requests wait for it
	if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	conn := database.NewConnector(database.OpenAndMigrate(conf))
	defer func() {
		if err := conn.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	go func() {
		if _, err := conn.Get(context.Background()); err != nil {
			dbLogger.Error(fmt.Sprintf("loading database: %v", err), err)
			return
		}
		dbLogger.Info("Database ready")
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	catalog, err := i18n.NewCatalog(appfs.FS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading translations: %v", err), err)
	}
	i18nMgr, err := i18n.NewManager(catalog, conf.I18n.DefaultLanguage)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting site language: %v", err), err)
	}
	translator, err := catalog.Translator(i18n.English)
	if err != nil {
		logger.Fatal(fmt.Sprintf("getting translator: %v", err), err)
	}

	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, conf, logger)

	accSvc := account.NewService(sqlxrepos.NewAccountRepository(conn))
	regSvc := registration.NewService(sqlxrepos.NewRegistrationRepository(conn), validate, mailSvc, logger)
	lrnSvc := learning.NewService(
		sqlxrepos.NewLearningRepository(conn),
		accSvc,
		learning.NewContentStore(os.DirFS(conf.Learning.ContentDir)),
		conf.Learning,
		logger,
	)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		I18n:            i18nMgr,
		RegistrationSvc: regSvc,
		AccountSvc:      accSvc,
		LearningSvc:     lrnSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
