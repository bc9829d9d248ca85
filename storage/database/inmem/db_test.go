package inmemdb

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/message"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/fixtures"
)

func TestDB_Atomic(t *testing.T) {
	ctx := context.Background()
	db := Open(fixtures.MustLoad())
	courses := NewCourseRepository(db)
	audits := NewAuditRepository(db)
	messages := NewMessageRepository(db)

	t.Run("rollback", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := db.Atomic(ctx, func(ctx context.Context) error {
			require.NoError(t, courses.CreateEnrollment(ctx, course.Enrollment{ID: "enr-x", StudentID: "u-003", CourseID: "c-003"}))
			require.NoError(t, audits.AppendLog(ctx, audit.AuditLog{ID: "audit-x", Action: "course_enrollment"}))
			_, err := messages.MarkRead(ctx, "msg-003", "u-101")
			require.NoError(t, err)
			return errBoom
		})
		assert.Equal(t, errBoom, err)

		enrs, err := courses.QueryEnrollments(ctx, course.EnrollmentFilter{CourseID: "c-003"})
		require.NoError(t, err)
		assert.Empty(t, enrs)

		logs, err := audits.QueryLogs(ctx, audit.QueryFilter{Limit: 100})
		require.NoError(t, err)
		assert.Len(t, logs, 3)

		msgs, err := messages.QueryMessages(ctx, "u-101", message.QueryFilter{Box: message.BoxInbox})
		require.NoError(t, err)
		assert.Empty(t, msgs[0].ReadBy, "changes to rows are rolled back too")
	})

	t.Run("commit", func(t *testing.T) {
		err := db.Atomic(ctx, func(ctx context.Context) error {
			// nested units join the outer one instead of deadlocking
			return db.Atomic(ctx, func(ctx context.Context) error {
				return courses.CreateEnrollment(ctx, course.Enrollment{ID: "enr-y", StudentID: "u-003", CourseID: "c-003"})
			})
		})
		require.NoError(t, err)

		enrs, err := courses.QueryEnrollments(ctx, course.EnrollmentFilter{CourseID: "c-003"})
		require.NoError(t, err)
		require.Len(t, enrs, 1)
		assert.Equal(t, "enr-y", enrs[0].ID)
	})
}

func TestOpen_isolated(t *testing.T) {
	ctx := context.Background()
	seed := fixtures.MustLoad()
	db1, db2 := Open(seed), Open(seed)

	require.NoError(t, NewAuditRepository(db1).AppendLog(ctx, audit.AuditLog{ID: "audit-x"}))

	logs, err := NewAuditRepository(db2).QueryLogs(ctx, audit.QueryFilter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	assert.Len(t, seed.Audits, 3)
}

func TestPrepend(t *testing.T) {
	assert.Equal(t, []int{1}, prepend(nil, 1))
	assert.Equal(t, []int{3, 1, 2}, prepend([]int{1, 2}, 3))
}

func TestUserRepository_FindUser(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(Open(fixtures.MustLoad()))

	tests := []struct {
		name    string
		filter  user.FindFilter
		wantID  string
		wantErr error
	}{
		{name: "role", filter: user.FindFilter{Role: user.RoleHOD}, wantID: "u-102"},
		{name: "provider", filter: user.FindFilter{Provider: user.ProviderSingpass}, wantID: "u-002"},
		{name: "subject", filter: user.FindFilter{Provider: user.ProviderGoogle, Subject: "google-david"}, wantID: "u-101"},
		{name: "login by email", filter: user.FindFilter{Login: "Farah.Ismail@campus.edu.sg"}, wantID: "u-201"},
		{name: "login by id", filter: user.FindFilter{Login: "U-003"}, wantID: "u-003"},
		{name: "combined", filter: user.FindFilter{Role: user.RoleStudent, Provider: user.ProviderSingpass}, wantID: "u-002"},
		{name: "none", filter: user.FindFilter{Role: user.RoleAdmin, Provider: user.ProviderSingpass}, wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := repo.FindUser(ctx, tt.filter)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, usr.ID)
		})
	}
}
