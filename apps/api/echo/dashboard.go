package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

type (
	adminApi struct {
		regSvc   registration.Service
		accSvc   account.Service
		auth     *authenticator
		validate *validator.Validate
		pageSize int
	}

	// StatusUpdateResponse is the updated registration with the freshly reloaded dashboard.
	StatusUpdateResponse struct {
		Registration registration.DetailView `json:"registration"`
		Updated      bool                    `json:"updated"`
		Message      string                  `json:"message,omitempty"`
		Statistics   registration.Statistics `json:"statistics"`
		Page         registration.Page       `json:"page"`
	}
)

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := adminApi{
		regSvc:   deps.RegistrationSvc,
		accSvc:   deps.AccountSvc,
		auth:     auth,
		validate: deps.Validate,
		pageSize: deps.Conf.Dashboard.PageSize,
	}

	ag := g.Group("/admin")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	dg := ag.Group("", jwt, adminMiddleware())
	dg.POST("/token-refresh", api.refreshToken)
	dg.GET("/statistics", api.statistics)
	dg.GET("/registrations", api.queryRegistrations)
	dg.GET("/registrations/:id", api.retrieveRegistration)
	dg.PATCH("/registrations/:id/status", api.updateStatus)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	resp, err := api.auth.login(ctx, api.accSvc, data.Email, data.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *adminApi) refreshToken(ctx echo.Context) error {
	resp, err := api.auth.refreshToken(ctx, api.accSvc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *adminApi) statistics(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.regSvc.LoadStatistics(ctx.Request().Context()))
}

func (api *adminApi) queryRegistrations(ctx echo.Context) error {
	page, err := api.loadPage(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *adminApi) retrieveRegistration(ctx echo.Context) error {
	reg, err := api.regSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, registration.NewDetailView(reg))
}

// updateStatus sets the status of a registration, then reloads the statistics and the requested page,
// so that the dashboard shows the stored state.
func (api *adminApi) updateStatus(ctx echo.Context) error {
	// the body only: the query params hold the dashboard filter
	var data registration.StatusUpdate
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}

	reg, updated, err := api.regSvc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}

	page, err := api.loadPage(ctx)
	if err != nil {
		return err
	}
	resp := StatusUpdateResponse{
		Registration: registration.NewDetailView(reg),
		Updated:      updated,
		Statistics:   api.regSvc.LoadStatistics(ctx.Request().Context()),
		Page:         page,
	}
	if updated {
		resp.Message = translate(ctx, msgStatusUpdated)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// loadPage loads every registration and returns the page matching the filter and page query params.
func (api *adminApi) loadPage(ctx echo.Context) (registration.Page, error) {
	var (
		filter   registration.Filter
		ordering Ordering
	)
	filter.Status = registration.Status(ctx.QueryParam("status"))
	filter.Type = registration.Type(ctx.QueryParam("type"))
	filter.Search = ctx.QueryParam("search")
	ordering.Bind(ctx)

	regs, err := api.regSvc.LoadRegistrations(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return registration.Page{}, err
	}

	dash := registration.NewDashboard(api.pageSize)
	dash.Load(regs)
	dash.ApplyFilters(filter)
	dash.GoToPage(bindPage(ctx))
	return dash.Page(), nil
}
