package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/campus/apps/api/echo"
	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/attendance"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/kpi"
	"github.com/trezcool/campus/core/leave"
	"github.com/trezcool/campus/core/message"
	"github.com/trezcool/campus/core/user"
	emailsvc "github.com/trezcool/campus/services/email"
	logsvc "github.com/trezcool/campus/services/logger"
	metricsvc "github.com/trezcool/campus/services/metrics"
	"github.com/trezcool/campus/storage/database/inmem"
	"github.com/trezcool/campus/storage/fixtures"
	"github.com/trezcool/campus/storage/redisstore"
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

type serverParams struct {
	dig.In

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
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStoreLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDB(loggerParam StoreLoggerParam) (*inmemdb.DB, core.Transactor) {
	seed, err := fixtures.Load()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("loading fixtures: %v", err), err)
	}
	db := inmemdb.Open(seed)
	return db, db
}

// newSessionStore keeps sessions in Redis when configured to, in memory otherwise.
func newSessionStore(conf *core.Config, loggerParam StoreLoggerParam) user.SessionStore {
	if conf.Session.Backend != "redis" {
		return inmemdb.NewSessionStore()
	}

	client := redisstore.NewClient(conf)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !redisstore.Healthy(ctx, client) {
		loggerParam.Logger.Fatal(fmt.Sprintf("redis unreachable at %s", conf.Session.RedisAddr))
	}
	return redisstore.NewSessionStore(client)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(log.New(os.Stdout, "", 0), logger, conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

func newAuditService(repo audit.Repository, metrics *metricsvc.Metrics) *audit.Service {
	return audit.NewService(repo, metrics.ObserveAudit)
}

func newServer(p serverParams) *echoapi.Server {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return echoapi.NewServer(p.Conf.Server.Address, shutdown, &echoapi.Deps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Metrics:       p.Metrics,
		UserSvc:       p.UserSvc,
		MessageSvc:    p.MessageSvc,
		CourseSvc:     p.CourseSvc,
		AttendanceSvc: p.AttendanceSvc,
		LeaveSvc:      p.LeaveSvc,
		KPISvc:        p.KPISvc,
		AuditSvc:      p.AuditSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newSessionStore))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(metricsvc.New))

	// repositories
	must(c.Provide(inmemdb.NewUserRepository))
	must(c.Provide(inmemdb.NewAuditRepository))
	must(c.Provide(inmemdb.NewMessageRepository))
	must(c.Provide(inmemdb.NewCourseRepository))
	must(c.Provide(inmemdb.NewAttendanceRepository))
	must(c.Provide(inmemdb.NewLeaveRepository))
	must(c.Provide(inmemdb.NewKPIRepository))

	// services
	must(c.Provide(newAuditService))
	must(c.Provide(user.NewService))
	must(c.Provide(message.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(leave.NewService))
	must(c.Provide(kpi.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
