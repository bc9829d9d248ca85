package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/kpi"
	"github.com/trezcool/campus/core/user"
)

type reportApi struct {
	kpiSvc   *kpi.Service
	auditSvc *audit.Service
}

func registerReportAPI(g *echo.Group, kpiSvc *kpi.Service, auditSvc *audit.Service) {
	api := reportApi{kpiSvc: kpiSvc, auditSvc: auditSvc}

	g.GET("/kpi", api.queryKPIs, permissionMiddleware(user.PermKPIView))
	g.GET("/audits", api.queryAudits, adminMiddleware())
}

func (api *reportApi) queryKPIs(ctx echo.Context) error {
	var filter kpi.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	usr, err := mustGetContextUser(ctx)
	if err != nil {
		return err
	}

	kpis, err := api.kpiSvc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying kpis")
	}
	return ctx.JSON(http.StatusOK, kpis)
}

func (api *reportApi) queryAudits(ctx echo.Context) error {
	var filter audit.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	logs, err := api.auditSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying audit logs")
	}
	return ctx.JSON(http.StatusOK, logs)
}
