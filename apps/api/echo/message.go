package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/message"
	"github.com/trezcool/campus/core/user"
)

type messageApi struct {
	svc      *message.Service
	validate *validator.Validate
}

func registerMessageAPI(g *echo.Group, svc *message.Service, validate *validator.Validate) {
	api := messageApi{svc: svc, validate: validate}

	mg := g.Group("/messages")
	mg.GET("", api.query, permissionMiddleware(user.PermMessagesRead))
	mg.POST("", api.send, permissionMiddleware(user.PermMessagesWrite))
	mg.PATCH("/:id/read", api.markRead, authMiddleware)
}

func (api *messageApi) query(ctx echo.Context) error {
	var filter message.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	msgs, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) send(ctx echo.Context) error {
	var data message.SendRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	msg, err := api.svc.Send(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) markRead(ctx echo.Context) error {
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.MarkRead(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}
