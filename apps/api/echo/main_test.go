package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

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
)

var (
	// the day the KPI fixtures are measured from
	testToday = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotAuthed    = httpErr{Error: "user not authenticated"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testEnv struct {
	app     *Server
	db      *inmemdb.DB
	mail    *emailsvc.ConsoleServiceMock
	metrics *metricsvc.Metrics
	audits  *audit.Service
	conf    *core.Config
}

// setup builds a server over a fresh copy of the fixtures.
func setup(t *testing.T, configure ...func(conf *core.Config)) *testEnv {
	t.Helper()

	conf := core.NewTestConfig()
	for _, fn := range configure {
		fn(conf)
	}
	logger := logsvc.NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	leave.InitValidators(validate, translator)

	// set up DB & repos
	seed, err := fixtures.Load()
	require.NoError(t, err)
	db := inmemdb.Open(seed)
	usrRepo := inmemdb.NewUserRepository(db)

	// set up services
	metrics := metricsvc.New()
	mailSvc := emailsvc.NewConsoleServiceMock(logger, conf)
	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db), metrics.ObserveAudit)
	kpiSvc := kpi.NewService(inmemdb.NewKPIRepository(db), auditSvc)
	kpiSvc.SetClock(func() time.Time { return testToday })

	app := NewServer("", nil, &Deps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		Metrics:       metrics,
		UserSvc:       user.NewService(db, usrRepo, inmemdb.NewSessionStore(), auditSvc, conf),
		MessageSvc:    message.NewService(db, inmemdb.NewMessageRepository(db), usrRepo, auditSvc, mailSvc),
		CourseSvc:     course.NewService(db, inmemdb.NewCourseRepository(db), auditSvc),
		AttendanceSvc: attendance.NewService(db, inmemdb.NewAttendanceRepository(db), auditSvc),
		LeaveSvc:      leave.NewService(db, inmemdb.NewLeaveRepository(db), usrRepo, auditSvc, mailSvc),
		KPISvc:        kpiSvc,
		AuditSvc:      auditSvc,
	})

	return &testEnv{
		app:     app,
		db:      db,
		mail:    mailSvc,
		metrics: metrics,
		audits:  auditSvc,
		conf:    conf,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (env *testEnv) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	env.app.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// login opens a session through the API and returns its token.
func (env *testEnv) login(t *testing.T, lr user.LoginRequest) LoginResponse {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/login", "", marchallObj(t, lr))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res LoginResponse
	decode(t, rec, &res)
	return res
}

// loginAs opens a session for the first fixture user holding role.
func (env *testEnv) loginAs(t *testing.T, role string) string {
	t.Helper()
	return env.login(t, user.LoginRequest{Provider: user.ProviderGoogle, RoleOverride: role}).Token
}

// fixtureLogins opens a session for a given fixture user.
var fixtureLogins = map[string]user.LoginRequest{
	"u-001": {Provider: user.ProviderGoogle},
	"u-002": {Provider: user.ProviderSingpass},
	"u-003": {Provider: user.ProviderPassword, Username: "u-003", Password: "student123"},
	"u-101": {Provider: user.ProviderPassword, Username: "david.koh@campus.edu.sg", Password: "teacher123"},
	"u-102": {Provider: user.ProviderGoogle, RoleOverride: user.RoleHOD},
	"u-201": {Provider: user.ProviderSingpass, RoleOverride: user.RolePrincipal},
	"u-301": {Provider: user.ProviderPassword, Username: "u-301", Password: "admin123"},
}

func (env *testEnv) loginUser(t *testing.T, id string) string {
	t.Helper()
	lr, ok := fixtureLogins[id]
	require.True(t, ok, "no fixture login for %s", id)
	res := env.login(t, lr)
	require.Equal(t, id, res.User.ID)
	return res.Token
}

func ctxBackground() context.Context {
	return context.Background()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = make([]interface{}, 0)
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
