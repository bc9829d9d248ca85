package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/attendance"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/kpi"
	"github.com/trezcool/campus/core/leave"
	"github.com/trezcool/campus/core/message"
	"github.com/trezcool/campus/core/user"
	metricsvc "github.com/trezcool/campus/services/metrics"
)

type (
	Deps struct {
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		Metrics       *metricsvc.Metrics
		UserSvc       *user.Service
		MessageSvc    *message.Service
		CourseSvc     *course.Service
		AttendanceSvc *attendance.Service
		LeaveSvc      *leave.Service
		KPISvc        *kpi.Service
		AuditSvc      *audit.Service

		// DisableReqLogs turns off the request logger, for tests.
		DisableReqLogs bool
	}

	Server struct {
		app          *echo.Echo
		server       *http.Server
		deps         *Deps
		shutdown     chan os.Signal
		serverErrors chan error
	}
)

func NewServer(address string, shutdown chan os.Signal, deps *Deps) *Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
	}
	s := &Server{
		app: echo.New(),
		server: &http.Server{
			Addr:         address,
			ReadTimeout:  deps.Conf.Server.ReadTimeout,
			WriteTimeout: deps.Conf.Server.WriteTimeout,
		},
		deps:         deps,
		shutdown:     shutdown,
		serverErrors: make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = conf.TestMode
	s.app.HidePort = conf.TestMode
	s.app.Pre(middleware.RemoveTrailingSlash())
	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
	}
	if !(s.deps.DisableReqLogs || conf.TestMode) {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf))
	s.app.GET("/health", health)
	if s.deps.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}

	api := s.app.Group(
		"/api",
		originMiddleware,
		newJWTMiddleware(conf),
		resolveUserMiddleware(s.deps.UserSvc, conf),
	)
	registerUserAPI(api, s.deps.UserSvc, s.deps.Validate, conf)
	registerMessageAPI(api, s.deps.MessageSvc, s.deps.Validate)
	registerCourseAPI(api, s.deps.CourseSvc, s.deps.Validate)
	registerAttendanceAPI(api, s.deps.AttendanceSvc, s.deps.Validate)
	registerLeaveAPI(api, s.deps.LeaveSvc, s.deps.Validate)
	registerReportAPI(api, s.deps.KPISvc, s.deps.AuditSvc)
}

// Start listens until Shutdown or Close; any other failure is sent to Errors.
func (s *Server) Start() {
	if err := s.app.StartServer(s.server); err != nil && err != http.ErrServerClosed {
		s.serverErrors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.serverErrors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(conf *core.Config) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+conf.AppName+" API!")
	}
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
