package leave_test

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/leave"
	"github.com/trezcool/campus/core/user"
	emailsvc "github.com/trezcool/campus/services/email"
	logsvc "github.com/trezcool/campus/services/logger"
	"github.com/trezcool/campus/storage/database/inmem"
	"github.com/trezcool/campus/storage/fixtures"
)

var (
	alice = user.User{ID: "u-001", Name: "Alice Tan", Roles: []string{user.RoleStudent}}
	david = user.User{ID: "u-101", Name: "David Koh", Roles: []string{user.RoleTeacher}}
	evely = user.User{ID: "u-102", Name: "Evelyn Goh", Roles: []string{user.RoleTeacher, user.RoleHOD}}
	farah = user.User{ID: "u-201", Name: "Farah Ismail", Roles: []string{user.RolePrincipal}}
)

type testEnv struct {
	svc    *leave.Service
	audits *audit.Service
	mail   *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) testEnv {
	t.Helper()
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), conf)

	db := inmemdb.Open(fixtures.MustLoad())
	audits := audit.NewService(inmemdb.NewAuditRepository(db))
	mail := emailsvc.NewConsoleServiceMock(logger, conf)
	return testEnv{
		svc:    leave.NewService(db, inmemdb.NewLeaveRepository(db), inmemdb.NewUserRepository(db), audits, mail),
		audits: audits,
		mail:   mail,
	}
}

func TestSubmitRequest_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	leave.InitValidators(validate, translator)

	tests := []struct {
		name    string
		sr      leave.SubmitRequest
		wantErr bool
	}{
		{name: "dates", sr: leave.SubmitRequest{Type: "sick", Start: "2026-10-20", End: "2026-10-21", Reason: "Flu"}},
		{name: "timestamps", sr: leave.SubmitRequest{Type: "sick", Start: "2026-10-20T08:00:00+08:00", End: "2026-10-20T12:00", Reason: "Flu"}},
		{name: "same day", sr: leave.SubmitRequest{Type: "sick", Start: "2026-10-20", End: "2026-10-20", Reason: "Flu"}},
		{name: "reversed", sr: leave.SubmitRequest{Type: "sick", Start: "2026-10-21", End: "2026-10-20", Reason: "Flu"}, wantErr: true},
		{name: "bad date", sr: leave.SubmitRequest{Type: "sick", Start: "20-10-2026", End: "2026-10-20", Reason: "Flu"}, wantErr: true},
		{name: "blank reason", sr: leave.SubmitRequest{Type: "sick", Start: "2026-10-20", End: "2026-10-20", Reason: "   "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sr.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLeaveRequest_Days(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2026-10-20", "2026-10-20", 0},
		{"2026-10-20", "2026-10-21", 1},
		{"2026-10-20T00:00", "2026-10-21T01:00", 2},
		{"2026-10-20", "2026-10-27", 7},
	}
	for _, tt := range tests {
		sr := leave.SubmitRequest{Type: "sick", Start: tt.start, End: tt.end, Reason: "r"}
		lr, err := setup(t).svc.Submit(context.Background(), alice, sr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, lr.Days(), "%s -> %s", tt.start, tt.end)
	}
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	ids := func(usr user.User, status string) []string {
		leaves, err := env.svc.Query(ctx, usr, leave.QueryFilter{Status: status})
		require.NoError(t, err)
		ids := make([]string, 0, len(leaves))
		for _, lr := range leaves {
			ids = append(ids, lr.ID)
		}
		return ids
	}

	assert.Equal(t, []string{"leave-001"}, ids(alice, ""))
	assert.Equal(t, []string{"leave-003", "leave-002"}, ids(david, ""))
	assert.Equal(t, []string{"leave-003", "leave-002", "leave-001"}, ids(evely, ""))
	assert.Equal(t, []string{"leave-001"}, ids(farah, "approved"))
	assert.Empty(t, ids(alice, "pending"))
}

func TestService_Decide(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	lr, err := env.svc.Decide(ctx, evely, "leave-002", leave.DecideRequest{Action: "Reject", Comment: "Exams week"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, lr.Status)
	assert.Equal(t, "Exams week", lr.ApproverComment)

	stored, err := env.svc.GetByID(ctx, "leave-002")
	require.NoError(t, err)
	assert.Equal(t, lr, stored)

	_, err = env.svc.Decide(ctx, evely, "leave-002", leave.DecideRequest{Action: leave.ActionApprove})
	assert.Equal(t, leave.ErrAlreadyDecided, errors.Cause(err))
	_, err = env.svc.Decide(ctx, evely, "leave-003", leave.DecideRequest{Action: "archive"})
	assert.Equal(t, leave.ErrActionNotFound, errors.Cause(err))
	_, err = env.svc.Decide(ctx, evely, "leave-404", leave.DecideRequest{Action: leave.ActionApprove})
	assert.Equal(t, leave.ErrNotFound, errors.Cause(err))

	sent := env.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "david.koh@campus.edu.sg", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "rejected by Evelyn Goh")
	assert.Contains(t, sent[0].HTMLContent, "Exams week")

	logs, err := env.audits.Query(ctx, audit.QueryFilter{Search: "reject_leave"})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestService_Decide_concurrent(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		decided int
	)
	for _, action := range []string{leave.ActionApprove, leave.ActionReject, leave.ActionApprove, leave.ActionReject} {
		wg.Add(1)
		go func(action string) {
			defer wg.Done()
			_, err := env.svc.Decide(ctx, evely, "leave-003", leave.DecideRequest{Action: action})
			if err == nil {
				mu.Lock()
				decided++
				mu.Unlock()
				return
			}
			assert.Equal(t, leave.ErrAlreadyDecided, errors.Cause(err))
		}(action)
	}
	wg.Wait()

	assert.Equal(t, 1, decided, "a leave is decided exactly once")
}
