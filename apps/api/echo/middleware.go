package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
)

const (
	contextLanguageKey = "language"
	contextCatalogKey  = "catalog"
	contextSessionKey  = "volunteerSession"

	languageParam   = "lang"
	headerLocale    = "X-Locale"
	headerVolunteer = "X-Volunteer-Session"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// languageMiddleware stores the language of the request in the context. It is taken from,
// in order: the `lang` query param, the language cookie, the X-Locale header, the Accept-Language header.
// The current site language is used when none of them names a supported language.
func languageMiddleware(mgr *i18n.Manager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(contextLanguageKey, resolveLanguage(ctx, mgr, cookieName))
			ctx.Set(contextCatalogKey, mgr.Catalog())
			return next(ctx)
		}
	}
}

func resolveLanguage(ctx echo.Context, mgr *i18n.Manager, cookieName string) string {
	req := ctx.Request()

	if lang := i18n.Normalize(ctx.QueryParam(languageParam)); i18n.IsSupported(lang) {
		return lang
	}
	if cookie, err := req.Cookie(cookieName); err == nil {
		if lang := i18n.Normalize(cookie.Value); i18n.IsSupported(lang) {
			return lang
		}
	}
	if lang := i18n.Normalize(req.Header.Get(headerLocale)); i18n.IsSupported(lang) {
		return lang
	}
	if lang, ok := i18n.MatchLanguage(req.Header.Get(headerAcceptLanguage)); ok {
		return lang
	}
	return mgr.Language()
}

func getContextLanguage(ctx echo.Context) string {
	if lang, ok := ctx.Get(contextLanguageKey).(string); ok {
		return lang
	}
	return i18n.English
}

// volunteerMiddleware loads the volunteer session named by the X-Volunteer-Session header, if valid.
// Requests without a valid session go through: progress is then read-only.
func volunteerMiddleware(svc learning.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := ctx.Request().Header.Get(headerVolunteer)
			if token == "" {
				return next(ctx)
			}
			sess, err := svc.Authenticate(ctx.Request().Context(), token)
			switch {
			case err == nil:
				ctx.Set(contextSessionKey, sess)
			case errors.Cause(err) != learning.ErrNoSession:
				return errors.Wrap(err, "authenticating volunteer")
			}
			return next(ctx)
		}
	}
}

// getContextSession returns the volunteer session of the request, nil when there is none.
func getContextSession(ctx echo.Context) *learning.Session {
	if sess, ok := ctx.Get(contextSessionKey).(learning.Session); ok {
		return &sess
	}
	return nil
}
