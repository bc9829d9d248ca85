package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
	conf     *core.Config
}

func registerUserAPI(g *echo.Group, svc *user.Service, validate *validator.Validate, conf *core.Config) {
	api := userApi{
		svc:      svc,
		validate: validate,
		conf:     conf,
	}

	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
	g.GET("/me", api.me, sessionMiddleware)

	// admin endpoints
	g.GET("/users", api.query, adminMiddleware())
	g.POST("/admin/identity/:action", api.changeIdentity, adminMiddleware())
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}

	res, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	token, err := newSessionToken(res, api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{User: res.User, Permissions: res.Permissions, Token: token})
}

func (api *userApi) logout(ctx echo.Context) error {
	if sess, ok := getContextSession(ctx); ok {
		if err := api.svc.Logout(ctx.Request().Context(), sess.ID); err != nil {
			return errors.Wrap(err, "logging out")
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}
	sess, _ := getContextSession(ctx)
	return ctx.JSON(http.StatusOK, MeResponse{User: usr, Permissions: usr.Permissions(), ExpiresAt: sess.ExpiresAt})
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) changeIdentity(ctx echo.Context) error {
	var data user.IdentityRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	data.Action = ctx.Param("action")
	if data.Action != "bind" && data.Action != "unbind" {
		return errHttpNotFound
	}

	actor, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.ChangeIdentity(ctx.Request().Context(), actor, data); err != nil {
		return errors.Wrap(err, "changing identity")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}
