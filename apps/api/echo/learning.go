package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
)

type (
	learningApi struct {
		svc      learning.Service
		validate *validator.Validate
	}

	VolunteerSessionResponse struct {
		Token         string    `json:"token"`
		VolunteerName string    `json:"volunteer_name"`
		ExpiresAt     time.Time `json:"expires_at"`
	}

	ModulesResponse struct {
		Modules  []learning.Module  `json:"modules"`
		Progress *learning.Progress `json:"progress"` // null without a session
	}

	CompleteLessonResponse struct {
		Progress *learning.Progress `json:"progress"`
		Updated  bool               `json:"updated"`
		Message  string             `json:"message"`
	}
)

func registerLearningAPI(g *echo.Group, svc learning.Service, validate *validator.Validate) {
	api := learningApi{svc: svc, validate: validate}

	lg := g.Group("/learning", volunteerMiddleware(svc))
	lg.POST("/login", api.login)
	lg.POST("/logout", api.logout)
	lg.GET("/progress", api.progress)
	lg.GET("/modules", api.modules)
	lg.GET("/modules/:module/lessons/:lesson", api.lesson)
	lg.POST("/modules/:module/lessons/:lesson/complete", api.completeLesson)
	lg.GET("/modules/:module/flashcards", api.flashcards)
}

// Handlers

func (api *learningApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, VolunteerSessionResponse{
		Token:         sess.Token,
		VolunteerName: sess.VolunteerName,
		ExpiresAt:     sess.ExpiresAt,
	})
}

func (api *learningApi) logout(ctx echo.Context) error {
	if err := api.svc.Logout(ctx.Request().Context(), ctx.Request().Header.Get(headerVolunteer)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *learningApi) progress(ctx echo.Context) error {
	sess := getContextSession(ctx)
	if sess == nil {
		return learning.ErrNoSession
	}
	progress, err := api.svc.LoadProgress(ctx.Request().Context(), *sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, progress)
}

func (api *learningApi) modules(ctx echo.Context) error {
	resp := ModulesResponse{Modules: learning.Modules()}
	if sess := getContextSession(ctx); sess != nil {
		progress, err := api.svc.LoadProgress(ctx.Request().Context(), *sess)
		if err != nil {
			return err
		}
		resp.Progress = progress
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *learningApi) lesson(ctx echo.Context) error {
	view, err := api.svc.LessonView(ctx.Request().Context(), getContextSession(ctx), ctx.Param("module"), ctx.Param("lesson"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *learningApi) completeLesson(ctx echo.Context) error {
	progress, updated, err := api.svc.CompleteLesson(ctx.Request().Context(), getContextSession(ctx), ctx.Param("module"), ctx.Param("lesson"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CompleteLessonResponse{
		Progress: progress,
		Updated:  updated,
		Message:  translate(ctx, msgLessonDone),
	})
}

func (api *learningApi) flashcards(ctx echo.Context) error {
	page, err := api.svc.Flashcards(ctx.Param("module"), bindPage(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}
