package emailsvc

import (
	"encoding/json"
	"net/mail"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

type nopLogger struct{ errors []string }

func (l *nopLogger) Debug(string, ...interface{})      {}
func (l *nopLogger) Info(string, ...interface{})       {}
func (l *nopLogger) Warn(string, ...interface{})       {}
func (l *nopLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
func (l *nopLogger) Fatal(string, ...interface{})      {}

func newMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:      []mail.Address{{Name: "Ravi", Address: "ravi@test.in"}},
		Subject: "Thank you",
		BodyStr: "We received your donation.",
	}
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(core.NewTestConfig(), &nopLogger{})

	svc.SendMessages(newMessage(), &core.EmailMessage{Subject: "no recipient", BodyStr: "x"})
	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "We received your donation.", sent[0].TextContent)
}

func TestConsoleService_format(t *testing.T) {
	svc := NewConsoleService(core.NewTestConfig(), &nopLogger{})
	msg := newMessage()
	require.NoError(t, msg.Render())
	msg.HTMLContent = "<p>We received your donation.</p>"

	body, err := svc.format(*msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Kind Heart's Sangam Foundation] Thank you\r\n")
	assert.Contains(t, body, `To: "Ravi" <ravi@test.in>`)
	assert.Contains(t, body, "text/plain; charset=utf-8")
	assert.Contains(t, body, "<p>We received your donation.</p>")
	assert.NotContains(t, body, "CC:")
}

func TestSendgridService_request(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "SG.key"
	svc := NewSendgridService(conf, &nopLogger{}).(*sendgridService)

	msg := newMessage()
	require.NoError(t, msg.Render())
	req := svc.request(*msg)
	assert.Equal(t, rest.Post, req.Method)
	assert.Equal(t, "Bearer SG.key", req.Headers["Authorization"])

	var body struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "noreply@localhost", body.From.Email)
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "[Kind Heart's Sangam Foundation] Thank you", body.Personalizations[0].Subject)
	assert.Equal(t, "ravi@test.in", body.Personalizations[0].To[0].Email)
	require.Len(t, body.Content, 1)
	assert.Equal(t, "text/plain", body.Content[0].Type)
}

func TestSendgridService_sendFailure(t *testing.T) {
	orig := sendgridAPIFunc
	defer func() { sendgridAPIFunc = orig }()
	sendgridAPIFunc = func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: 400, Body: "bad request"}, nil
	}

	logger := &nopLogger{}
	svc := NewSendgridService(core.NewTestConfig(), logger).(*sendgridService)
	msg := newMessage()
	require.NoError(t, msg.Render())
	svc.send(*msg)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "status: 400")
}
