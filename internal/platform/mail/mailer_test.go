package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUser:     "portal@example.com",
		SMTPPassword: "secret",
		MailFrom:     "portal@example.com",
	}
}

func TestSendCredentials(t *testing.T) {
	m := NewSMTPMailer(testConfig())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	job := model.MailJob{To: "lead@college.edu", Name: "Asha", TeamName: "Byte Me", Password: "Xy7pQ2mN"}
	require.NoError(t, m.SendCredentials(context.Background(), job))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "portal@example.com", gotFrom)
	assert.Equal(t, []string{"lead@college.edu"}, gotTo)
	body := string(gotMsg)
	assert.Contains(t, body, "To: lead@college.edu\r\n")
	assert.Contains(t, body, "Hello Asha")
	assert.Contains(t, body, `"Byte Me"`)
	assert.Contains(t, body, "Password: Xy7pQ2mN")
}

func TestSendCredentialsFailures(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPHost = ""
	err := NewSMTPMailer(cfg).SendCredentials(context.Background(), model.MailJob{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m := NewSMTPMailer(testConfig())
	boom := errors.New("connection refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }
	err = m.SendCredentials(context.Background(), model.MailJob{To: "a@x.com"})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendCredentials(ctx, model.MailJob{To: "a@x.com"}), context.Canceled)
}
