package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/form"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

type registrationApi struct {
	svc      registration.Service
	redirect string
	logger   core.Logger
}

func registerRegistrationAPI(g *echo.Group, svc registration.Service, conf *core.Config, logger core.Logger) {
	api := registrationApi{
		svc:      svc,
		redirect: conf.Server.PartnerRedirect,
		logger:   logger,
	}

	rg := g.Group("/registrations")
	rg.POST("/partner", api.submitPartner)
	rg.POST("/donation", api.submitDonation)
}

func (api *registrationApi) submitPartner(ctx echo.Context) error {
	return api.submit(ctx, api.svc.SubmitPartner, msgPartnerOK, api.redirect)
}

func (api *registrationApi) submitDonation(ctx echo.Context) error {
	return api.submit(ctx, api.svc.SubmitDonation, msgDonationOK, "")
}

func (api *registrationApi) submit(
	ctx echo.Context,
	submitFn func(context.Context, form.Values) (registration.Registration, error),
	successKey, redirect string,
) error {
	values, err := bindFormValues(ctx)
	if err != nil {
		return err
	}

	reg, err := submitFn(ctx.Request().Context(), values)
	if err != nil {
		var vErr *core.ValidationError
		switch {
		case errors.Cause(err) == registration.ErrSpam:
			return ctx.NoContent(http.StatusAccepted) // bots get no feedback
		case errors.As(err, &vErr):
			return err
		}
		api.logger.Error(fmt.Sprintf("submitting registration: %v", err), err)
		return echo.NewHTTPError(http.StatusBadGateway, translate(ctx, msgSubmitError)).SetInternal(err)
	}

	return ctx.JSON(http.StatusCreated, SubmissionResponse{
		ID:       reg.ID,
		Success:  translate(ctx, successKey),
		Redirect: redirect,
		Reset:    true,
	})
}

// translate returns the text of `key` in the language of the request.
func translate(ctx echo.Context, key string) string {
	if c, ok := ctx.Get(contextCatalogKey).(*i18n.Catalog); ok {
		return c.Translate(getContextLanguage(ctx), key)
	}
	return key
}
