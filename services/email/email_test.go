package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
	logsvc "github.com/trezcool/campus/services/logger"
)

func newTestLogger(buf *bytes.Buffer) core.Logger {
	return logsvc.NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())
}

func TestConsoleServiceMock(t *testing.T) {
	var buf bytes.Buffer
	svc := NewConsoleServiceMock(newTestLogger(&buf), core.NewTestConfig())

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Alice Tan", Address: "alice@example.com"}},
			Subject:      "Worksheet 1",
			TemplateName: "new_message",
			TemplateData: map[string]interface{}{
				"RecipientName": "Alice Tan",
				"SenderName":    "David Koh",
				"Type":          "direct",
				"Title":         "Worksheet 1",
				"Body":          "Due Friday",
			},
		},
		&core.EmailMessage{Subject: "nobody to send to", BodyStr: "hello"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "David Koh sent you a new direct message")
	assert.Contains(t, sent[0].HTMLContent, "<p>Hello Alice Tan,</p>")
}

func TestConsoleService_send(t *testing.T) {
	var buf bytes.Buffer
	std := log.New(&buf, "", 0)
	svc := NewConsoleService(std, newTestLogger(&bytes.Buffer{}), core.NewTestConfig()).(*consoleService)

	msg := core.EmailMessage{
		To:      []mail.Address{{Address: "ben@example.com"}},
		Subject: "hi",
		BodyStr: "plain body",
	}
	require.NoError(t, msg.Render(""))
	svc.send(msg)

	out := buf.String()
	assert.True(t, strings.Contains(out, "Subject: [Campus] hi"))
	assert.Contains(t, out, "To: <ben@example.com>")
	assert.Contains(t, out, "plain body")
}
