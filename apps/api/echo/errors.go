package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpUnavailable    = echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
)

// translated messages
const (
	msgLoginFailed    = "admin.loginFailed"
	msgStatusConflict = "admin.statusConflict"
	msgStatusUpdated  = "admin.statusUpdated"
	msgNotFound       = "common.notFound"
	msgLoginRequired  = "learning.loginRequired"
	msgLessonDone     = "learning.lessonCompleted"
	msgSubmitError    = "form.submitError"
	msgPartnerOK      = "form.partnerSuccess"
	msgDonationOK     = "form.donationSuccess"
)

// knownError maps the domain sentinel errors to their HTTP error, in the language of the request.
func knownError(err error, catalog *i18n.Catalog, lang string) (*echo.HTTPError, bool) {
	if core.IsUnavailable(err) {
		return errHttpUnavailable, true
	}

	switch errors.Cause(err) {
	case registration.ErrNotFound, learning.ErrModuleNotFound, learning.ErrLessonNotFound, learning.ErrContentNotFound:
		return echo.NewHTTPError(http.StatusNotFound, catalog.Translate(lang, msgNotFound)), true
	case registration.ErrStatusConflict:
		return echo.NewHTTPError(http.StatusConflict, catalog.Translate(lang, msgStatusConflict)), true
	case learning.ErrNoSession:
		return echo.NewHTTPError(http.StatusUnauthorized, catalog.Translate(lang, msgLoginRequired)), true
	case account.ErrInvalidCredentials:
		return echo.NewHTTPError(http.StatusBadRequest, catalog.Translate(lang, msgLoginFailed)), true
	case account.ErrAccountDeactivated:
		return errAccountDeactivated, true
	}
	return nil, false
}

// translateFieldError prefers the dictionary message of the validation tag, if any.
func translateFieldError(vErr validator.FieldError, catalog *i18n.Catalog, lang string) string {
	key := "validation." + vErr.Tag()
	if msg := catalog.Translate(lang, key); msg != key {
		return msg
	}
	if trans, err := catalog.Translator(i18n.English); err == nil {
		return vErr.Translate(trans)
	}
	return vErr.Error()
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, catalog *i18n.Catalog, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}
		lang := getContextLanguage(ctx)

		if herr, ok := knownError(err, catalog, lang); ok {
			err = herr
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = translateFieldError(vErr, catalog, lang)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = catalog.Translate(lang, fErr.Error)
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var acc account.Account
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				acc.ID = claims.Subject
				acc.Name = claims.Name
				acc.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), acc)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}

			if ctx.Echo().Debug {
				message = err.Error()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
