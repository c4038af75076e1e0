package echoapi

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		Validate        *validator.Validate
		I18n            *i18n.Manager
		RegistrationSvc registration.Service
		AccountSvc      account.Service
		LearningSvc     learning.Service
		SiteFS          fs.FS // translated static pages; defaults to Conf.Server.SiteDir
		DisableReqLogs  bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		pages    *pageCache
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	if deps.SiteFS == nil {
		deps.SiteFS = os.DirFS(deps.Conf.Server.SiteDir)
	}

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf),
		pages:    newPageCache(deps.SiteFS, deps.I18n.Catalog()),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	// every language change, or edit of the current language, invalidates the translated pages
	deps.I18n.OnChange(func(string) { s.pages.purge() })

	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(languageMiddleware(s.deps.I18n, conf.I18n.CookieName))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.I18n.Catalog(), s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/pages/*", s.page)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerRegistrationAPI(v1, s.deps.RegistrationSvc, conf, s.deps.Logger)
	registerAdminAPI(v1, jwt, s.auth, s.deps)
	registerI18nAPI(v1, jwt, s.deps.I18n, conf.I18n.CookieName, s.pages)
	registerLearningAPI(v1, s.deps.LearningSvc, s.deps.Validate)
}

// Start listens on the configured address. Listening errors are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"name":     s.deps.Conf.AppName,
		"language": getContextLanguage(ctx),
		"tagline":  s.deps.I18n.Catalog().Translate(getContextLanguage(ctx), "hero.title"),
	})
}
