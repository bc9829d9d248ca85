package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/message"
)

func messageIDs(msgs []message.Message) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}

func Test_messageApi_query(t *testing.T) {
	env := setup(t)
	token := env.loginUser(t, "u-001")

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "all", path: "/api/messages", wantIDs: []string{"msg-003", "msg-002", "msg-001"}},
		{name: "inbox", path: "/api/messages?type=inbox", wantIDs: []string{"msg-002", "msg-001"}},
		{name: "sent", path: "/api/messages?type=SENT", wantIDs: []string{"msg-003"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, token)
			require.Equal(t, http.StatusOK, rec.Code)
			var msgs []message.Message
			decode(t, rec, &msgs)
			assert.Equal(t, tt.wantIDs, messageIDs(msgs))
		})
	}

	t.Run("nothing sent", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/messages?type=sent", env.loginUser(t, "u-003"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	env.run(t, []httpTest{
		{name: "anonymous", method: http.MethodGet, path: "/api/messages", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthed)},
	})
}

func Test_messageApi_send(t *testing.T) {
	env := setup(t)
	teacherToken := env.loginUser(t, "u-101")

	rec := env.do(
		http.MethodPost, "/api/messages", teacherToken,
		[]byte(`{"title":" Test day ","body":"Bring a calculator.","recipients":["u-001","u-003","u-001"]}`),
	)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var msg message.Message
	decode(t, rec, &msg)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Test day", msg.Title)
	assert.Equal(t, "u-101", msg.SenderID)
	assert.Equal(t, []string{"u-001", "u-003"}, msg.Recipients)
	assert.Equal(t, message.TypeDirect, msg.Type)
	assert.Empty(t, msg.ReadBy)

	t.Run("newest first in the recipient inbox", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/messages?type=inbox", env.loginUser(t, "u-001"))
		var msgs []message.Message
		decode(t, rec, &msgs)
		require.NotEmpty(t, msgs)
		assert.Equal(t, msg.ID, msgs[0].ID)
	})

	t.Run("recipients with an email are notified", func(t *testing.T) {
		sent := env.mail.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "alice.tan@student.campus.edu.sg", sent[0].To[0].Address)
		assert.Equal(t, "Test day", sent[0].Subject)
		assert.Contains(t, sent[0].TextContent, "David Koh")
	})

	t.Run("audited", func(t *testing.T) {
		logs, err := env.audits.Query(ctxBackground(), audit.QueryFilter{Search: "send_message"})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "/api/messages", logs[0].Resource)
		assert.Equal(t, map[string]interface{}{"recipientCount": 2, "messageType": "direct"}, logs[0].Details)
	})

	env.run(t, []httpTest{
		{
			name:     "announcement",
			method:   http.MethodPost,
			path:     "/api/messages",
			body:     []byte(`{"title":"Sports day","body":"Friday","recipients":["u-001","u-002"],"type":"Announce"}`),
			token:    env.loginUser(t, "u-201"),
			wantCode: http.StatusCreated,
		},
		{
			name:     "blank fields",
			method:   http.MethodPost,
			path:     "/api/messages",
			body:     []byte(`{"title":"  ","body":"","recipients":["u-001"]}`),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"title":"this field is required","body":"this field is required"}`),
		},
		{
			name:     "no recipients",
			method:   http.MethodPost,
			path:     "/api/messages",
			body:     []byte(`{"title":"Hi","body":"Hello"}`),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown recipient",
			method:   http.MethodPost,
			path:     "/api/messages",
			body:     []byte(`{"title":"Hi","body":"Hello","recipients":["u-001","u-999"]}`),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"recipients":"unknown recipient: u-999"}`),
		},
		{
			name:     "students cannot write",
			method:   http.MethodPost,
			path:     "/api/messages",
			body:     []byte(`{"title":"Hi","body":"Hello","recipients":["u-002"]}`),
			token:    env.loginUser(t, "u-001"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})

	t.Run("failed sends leave no trace", func(t *testing.T) {
		logs, err := env.audits.Query(ctxBackground(), audit.QueryFilter{Search: "send_message"})
		require.NoError(t, err)
		assert.Len(t, logs, 2)
		assert.Equal(t, "announce", logs[0].Details["messageType"])
	})
}

func Test_messageApi_markRead(t *testing.T) {
	env := setup(t)
	token := env.loginUser(t, "u-001")

	success := []byte(`{"success":true}`)
	env.run(t, []httpTest{
		{name: "unread", method: http.MethodPatch, path: "/api/messages/msg-002/read", token: token, wantCode: http.StatusOK, wantData: success},
		{name: "twice", method: http.MethodPatch, path: "/api/messages/msg-002/read", token: token, wantCode: http.StatusOK, wantData: success},
		{
			name:     "unknown message",
			method:   http.MethodPatch,
			path:     "/api/messages/msg-999/read",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "message not found"}),
		},
		{name: "anonymous", method: http.MethodPatch, path: "/api/messages/msg-002/read", wantCode: http.StatusUnauthorized},
	})

	rec := env.do(http.MethodGet, "/api/messages?type=inbox", token)
	var msgs []message.Message
	decode(t, rec, &msgs)
	require.Equal(t, "msg-002", msgs[0].ID)
	assert.Equal(t, []string{"u-002", "u-001"}, msgs[0].ReadBy)
}
