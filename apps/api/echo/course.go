package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, svc *course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	// public catalogue
	g.GET("/courses", api.query)
	g.GET("/courses/:id", api.retrieve)

	g.POST("/enroll", api.enroll, permissionMiddleware(user.PermCourseEnroll))
	g.GET("/enrollments", api.enrollments, authMiddleware)
}

func (api *courseApi) query(ctx echo.Context) error {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	courses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	var data course.EnrollRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}
	enrs, err := api.svc.Enrollments(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrs)
}
