package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/user"
	metricsvc "github.com/trezcool/campus/services/metrics"
)

// authMiddleware rejects anonymous callers.
func authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, err := mustGetContextUser(ctx); err != nil {
			return err
		}
		return next(ctx)
	}
}

// sessionMiddleware rejects callers without a live session, including the demo fallback user.
func sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := getContextSession(ctx); !ok {
			if err, ok := ctx.Get(contextAuthErrKey).(error); ok {
				return err
			}
			return errUnauthorized
		}
		return next(ctx)
	}
}

// permissionMiddleware rejects callers lacking perm.
func permissionMiddleware(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := mustGetContextUser(ctx)
			if err != nil {
				return err
			}
			if !usr.HasPermission(perm) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// adminMiddleware only lets through holders of the admin wildcard.
func adminMiddleware() echo.MiddlewareFunc {
	return permissionMiddleware(user.PermAdminAll)
}

// originMiddleware hands the client address to the audit log.
func originMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(audit.WithOrigin(req.Context(), ctx.RealIP())))
		return next(ctx)
	}
}

func metricsMiddleware(m *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil && !ctx.Response().Committed {
				ctx.Error(err)
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(ctx.Request().Method, route, ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
