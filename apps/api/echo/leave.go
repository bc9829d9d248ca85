package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/leave"
	"github.com/trezcool/campus/core/user"
)

type leaveApi struct {
	svc      *leave.Service
	validate *validator.Validate
}

func registerLeaveAPI(g *echo.Group, svc *leave.Service, validate *validator.Validate) {
	api := leaveApi{svc: svc, validate: validate}

	lg := g.Group("/leaves")
	lg.GET("", api.query, authMiddleware)
	lg.POST("", api.submit, permissionMiddleware(user.PermLeaveSubmit))
	lg.GET("/:id", api.retrieve, authMiddleware)
	lg.POST("/:id/:action", api.decide, permissionMiddleware(user.PermLeaveApprove))
}

func (api *leaveApi) query(ctx echo.Context) error {
	var filter leave.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	leaves, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying leaves")
	}
	return ctx.JSON(http.StatusOK, leaves)
}

// retrieve returns a leave the caller is allowed to list.
func (api *leaveApi) retrieve(ctx echo.Context) error {
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}
	visible, err := api.svc.Query(ctx.Request().Context(), usr, leave.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying leaves")
	}
	id := ctx.Param("id")
	for _, lr := range visible {
		if lr.ID == id {
			return ctx.JSON(http.StatusOK, lr)
		}
	}
	return leave.ErrNotFound
}

func (api *leaveApi) submit(ctx echo.Context) error {
	var data leave.SubmitRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	lr, err := api.svc.Submit(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "submitting leave")
	}
	return ctx.JSON(http.StatusCreated, lr)
}

func (api *leaveApi) decide(ctx echo.Context) error {
	var data leave.DecideRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DecideRequest")
	}
	data.Action = ctx.Param("action")
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	lr, err := api.svc.Decide(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "deciding leave")
	}
	return ctx.JSON(http.StatusOK, lr)
}
