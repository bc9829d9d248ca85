package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core/attendance"
	"github.com/trezcool/campus/core/audit"
)

func recordIDs(t *testing.T, env *testEnv, path, token string) []string {
	t.Helper()
	rec := env.do(http.MethodGet, path, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var recs []attendance.Record
	decode(t, rec, &recs)
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func Test_attendanceApi_query(t *testing.T) {
	env := setup(t)
	alice := env.loginUser(t, "u-001")
	hod := env.loginUser(t, "u-102")

	tests := []struct {
		name    string
		path    string
		token   string
		wantIDs []string
	}{
		{name: "students see their own records", path: "/api/attendance", token: alice, wantIDs: []string{"att-001", "att-003"}},
		{name: "students cannot look at others", path: "/api/attendance?person=u-002", token: alice, wantIDs: []string{"att-001", "att-003"}},
		{name: "students by date", path: "/api/attendance?date=2026-10-16", token: alice, wantIDs: []string{"att-003"}},
		{name: "staff see everything", path: "/api/attendance", token: hod, wantIDs: []string{"att-001", "att-002", "att-003", "att-004"}},
		{name: "staff by date", path: "/api/attendance?date=2026-10-15", token: hod, wantIDs: []string{"att-001", "att-002"}},
		{name: "staff by person", path: "/api/attendance?person=u-003", token: hod, wantIDs: []string{"att-004"}},
		{name: "student role narrows to the caller", path: "/api/attendance?role=Student", token: hod, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIDs, recordIDs(t, env, tt.path, tt.token))
		})
	}

	env.run(t, []httpTest{
		{name: "anonymous", method: http.MethodGet, path: "/api/attendance", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthed)},
		{name: "principal", method: http.MethodGet, path: "/api/attendance", token: env.loginUser(t, "u-201"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
	})
}

func Test_attendanceApi_mark(t *testing.T) {
	env := setup(t)
	teacher := env.loginUser(t, "u-101")

	rec := env.do(http.MethodPost, "/api/attendance/mark", teacher, []byte(`{"records":[
		{"date":"2026-10-17","personId":"u-001","status":"Present","lessonId":"l-003","lessonName":"Mathematics"},
		{"date":"2026-10-17","personId":"u-002","status":"absent","reason":" Sick ","lessonId":"l-003","lessonName":"Mathematics"}
	]}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var recs []attendance.Record
	decode(t, rec, &recs)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, attendance.PersonStudent, r.PersonType)
		assert.Equal(t, "u-101", r.MarkedBy)
		assert.NotNil(t, r.MarkedAt)
	}
	assert.Equal(t, attendance.StatusPresent, recs[0].Status)
	assert.Equal(t, "Sick", recs[1].Reason)

	assert.Len(t, recordIDs(t, env, "/api/attendance?date=2026-10-17", teacher), 2)
	assert.Len(t, recordIDs(t, env, "/api/attendance", env.loginUser(t, "u-002")), 2)

	logs, err := env.audits.Query(ctxBackground(), audit.QueryFilter{Search: "mark_attendance"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "David Koh", logs[0].ActorName)
	assert.Equal(t, map[string]interface{}{"studentsMarked": 2, "lessonId": "l-003"}, logs[0].Details)

	env.run(t, []httpTest{
		{
			name:     "empty batch",
			method:   http.MethodPost,
			path:     "/api/attendance/mark",
			body:     []byte(`{"records":[]}`),
			token:    teacher,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing batch",
			method:   http.MethodPost,
			path:     "/api/attendance/mark",
			body:     []byte(`{}`),
			token:    teacher,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"records":"this field is required"}`),
		},
		{
			name:     "invalid entry rejects the batch",
			method:   http.MethodPost,
			path:     "/api/attendance/mark",
			body:     []byte(`{"records":[{"date":"2026-10-18","personId":"u-001","status":"present"},{"date":"2026-10-18","personId":"","status":"present"}]}`),
			token:    teacher,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"records[1].personId":"this field is required"}`),
		},
		{
			name:     "invalid person type",
			method:   http.MethodPost,
			path:     "/api/attendance/mark",
			body:     []byte(`{"records":[{"date":"2026-10-18","personId":"u-001","personType":"Parent","status":"present"}]}`),
			token:    teacher,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "students cannot mark",
			method:   http.MethodPost,
			path:     "/api/attendance/mark",
			body:     []byte(`{"records":[{"date":"2026-10-18","personId":"u-001","status":"present"}]}`),
			token:    env.loginUser(t, "u-001"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})

	assert.Empty(t, recordIDs(t, env, "/api/attendance?date=2026-10-18", teacher))
}
