package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := scheduleApi{
		svc:      deps.ScheduleSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/cycles", jwt)
	cg.POST("", api.createCycle)
	cg.GET("", api.queryCycles)
	cg.GET("/:id", api.retrieveCycle)
	cg.GET("/:id/meetings", api.queryCycleMeetings)
	cg.POST("/:id/generate-meetings", api.generateMeetings)
	cg.POST("/:id/sync-progress", api.syncProgress)
	cg.POST("/:id/duplicate", api.duplicateCycle)
	cg.POST("/:id/complete", api.completeCycle)

	mg := g.Group("/meetings", jwt)
	mg.GET("/:id", api.retrieveMeeting)
	mg.POST("/:id/complete", api.completeMeeting)
	mg.POST("/:id/cancel", api.cancelMeeting)
	mg.POST("/:id/postpone", api.postponeMeeting)
	mg.POST("/:id/recalculate", api.recalculateMeeting)

	bg := g.Group("/billing", jwt)
	bg.POST("/preview", api.previewPayment)
}

// Cycle handlers

func (api *scheduleApi) createCycle(ctx echo.Context) error {
	var data cycle.NewCycle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCycle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cyc, err := api.svc.CreateCycle(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating cycle")
	}

	return ctx.JSON(http.StatusCreated, cyc)
}

func (api *scheduleApi) queryCycles(ctx echo.Context) error {
	var data CycleFilterRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, []cycle.Cycle{})
	}

	all, err := api.svc.FilterCycles(ctx.Request().Context(), cycle.QueryFilter{
		Status:       cycle.Status(data.Status),
		InstructorID: data.InstructorID,
		Search:       core.CleanString(data.Search),
	})
	if err != nil {
		return errors.Wrap(err, "querying cycles")
	}
	return ctx.JSON(http.StatusOK, all)
}

func (api *scheduleApi) retrieveCycle(ctx echo.Context) error {
	cyc, err := api.svc.GetCycle(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding cycle by ID")
	}
	return ctx.JSON(http.StatusOK, cyc)
}

func (api *scheduleApi) queryCycleMeetings(ctx echo.Context) error {
	mtgs, err := api.svc.FilterMeetings(ctx.Request().Context(), meeting.QueryFilter{CycleID: ctx.Param("id")})
	if err != nil {
		return errors.Wrap(err, "querying cycle meetings")
	}
	return ctx.JSON(http.StatusOK, mtgs)
}

func (api *scheduleApi) generateMeetings(ctx echo.Context) error {
	var data GenerateMeetingsRequest
	if ctx.Request().ContentLength > 0 { // body is optional
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to GenerateMeetingsRequest")
		}
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	var res cycle.GenerateResult
	var err error
	if data.Count > 0 {
		res, err = api.svc.GenerateMeetings(ctx.Request().Context(), ctx.Param("id"), data.Count)
	} else {
		res, err = api.svc.GenerateMeetings(ctx.Request().Context(), ctx.Param("id"))
	}
	if err != nil {
		return errors.Wrap(err, "generating meetings")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *scheduleApi) syncProgress(ctx echo.Context) error {
	progress, err := api.svc.SyncProgress(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "syncing cycle progress")
	}
	return ctx.JSON(http.StatusOK, progress)
}

func (api *scheduleApi) duplicateCycle(ctx echo.Context) error {
	var data DuplicateCycleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DuplicateCycleRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	newStart, err := time.Parse(core.ISODateFormat, data.NewStartDate)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "new_start_date", Error: "must be a valid ISO date"})
	}

	dup, err := api.svc.Duplicate(ctx.Request().Context(), ctx.Param("id"), newStart, cycle.DuplicateOptions{
		CopyRegistrations: data.CopyRegistrations,
		GenerateMeetings:  data.GenerateMeetings,
	})
	if err != nil {
		return errors.Wrap(err, "duplicating cycle")
	}
	return ctx.JSON(http.StatusCreated, dup)
}

func (api *scheduleApi) completeCycle(ctx echo.Context) error {
	res, err := api.svc.CompleteCycle(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing cycle")
	}
	return ctx.JSON(http.StatusOK, res)
}

// Meeting handlers

func (api *scheduleApi) retrieveMeeting(ctx echo.Context) error {
	mtg, err := api.svc.GetMeeting(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding meeting by ID")
	}
	return ctx.JSON(http.StatusOK, mtg)
}

func (api *scheduleApi) completeMeeting(ctx echo.Context) error {
	var data meeting.CompleteMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteMeeting")
	}
	if data.CompletedBy == "" {
		// default to the authenticated staff member
		if claims, err := getContextClaims(ctx); err == nil {
			data.CompletedBy = claims.Email
		}
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	mtg, err := api.svc.CompleteMeeting(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "completing meeting")
	}
	return ctx.JSON(http.StatusOK, mtg)
}

func (api *scheduleApi) cancelMeeting(ctx echo.Context) error {
	var data meeting.CancelMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CancelMeeting")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	mtg, err := api.svc.CancelMeeting(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "cancelling meeting")
	}
	return ctx.JSON(http.StatusOK, mtg)
}

func (api *scheduleApi) postponeMeeting(ctx echo.Context) error {
	var data PostponeMeetingRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PostponeMeetingRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	newDate, err := time.Parse(core.ISODateFormat, data.NewDate)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "new_date", Error: "must be a valid ISO date"})
	}

	mtg, err := api.svc.PostponeMeeting(ctx.Request().Context(), ctx.Param("id"), meeting.PostponeMeeting{
		NewDate:      newDate,
		NewStartTime: data.NewStartTime,
		NewEndTime:   data.NewEndTime,
	})
	if err != nil {
		return errors.Wrap(err, "postponing meeting")
	}
	return ctx.JSON(http.StatusCreated, mtg)
}

func (api *scheduleApi) recalculateMeeting(ctx echo.Context) error {
	mtg, err := api.svc.RecalculateMeeting(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "recalculating meeting payment")
	}
	return ctx.JSON(http.StatusOK, mtg)
}

// Billing handlers

func (api *scheduleApi) previewPayment(ctx echo.Context) error {
	var data schedule.PaymentPreview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentPreview")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	payment, err := api.svc.PreviewPayment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "previewing payment")
	}
	return ctx.JSON(http.StatusOK, PaymentPreviewResponse{Payment: payment})
}

type (
	CycleFilterRequest struct {
		Status       string `query:"status"`
		InstructorID string `query:"instructor_id"`
		Search       string `query:"search"`
	}

	GenerateMeetingsRequest struct {
		Count int `json:"count" validate:"omitempty,gt=0"`
	}

	DuplicateCycleRequest struct {
		NewStartDate      string `json:"new_start_date" validate:"required"`
		CopyRegistrations bool   `json:"copy_registrations"`
		GenerateMeetings  bool   `json:"generate_meetings"`
	}

	PostponeMeetingRequest struct {
		NewDate      string `json:"new_date" validate:"required"`
		NewStartTime string `json:"new_start_time" validate:"omitempty,timeofday"`
		NewEndTime   string `json:"new_end_time" validate:"omitempty,timeofday"`
	}

	PaymentPreviewResponse struct {
		Payment float64 `json:"payment"`
	}
)
