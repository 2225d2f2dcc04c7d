package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"text/template"

	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/platform/config"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// Mailer delivers team leader credentials.
type Mailer interface {
	SendCredentials(ctx context.Context, job model.MailJob) error
}

type SMTPMailer struct {
	addr string
	host string
	user string
	pass string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host: cfg.SMTPHost,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPassword,
		from: cfg.MailFrom,
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) SendCredentials(ctx context.Context, job model.MailJob) error {
	if m.host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := credentialsMessage(m.from, job)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := m.send(m.addr, auth, m.from, []string{job.To}, msg); err != nil {
		return fmt.Errorf("SMTPMailer.SendCredentials to %s: %w", job.To, err)
	}
	return nil
}

var credentialsTmpl = template.Must(template.New("credentials").Parse(
	"From: {{.From}}\r\n" +
		"To: {{.Job.To}}\r\n" +
		"Subject: Your team login credentials\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		"Hello {{.Job.Name}},\r\n\r\n" +
		"Your team \"{{.Job.TeamName}}\" has been registered by your institution's SPOC.\r\n" +
		"Use the following credentials to log in as team leader:\r\n\r\n" +
		"Email: {{.Job.To}}\r\n" +
		"Password: {{.Job.Password}}\r\n\r\n" +
		"Please keep this password safe.\r\n",
))

func credentialsMessage(from string, job model.MailJob) ([]byte, error) {
	var buf bytes.Buffer
	err := credentialsTmpl.Execute(&buf, struct {
		From string
		Job  model.MailJob
	}{From: from, Job: job})
	if err != nil {
		return nil, fmt.Errorf("render credentials mail: %w", err)
	}
	return buf.Bytes(), nil
}
