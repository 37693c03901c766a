package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/google/uuid"
)

// Delivery is the result handed back to callers; MessageID ties a send
// to the server log.
type Delivery struct {
	MessageID string
	To        string
	Template  string
	SentAt    time.Time
}

// Mailer is the delivery collaborator. Auth flows treat a failed send
// as non-fatal: the user-visible response never depends on it.
type Mailer interface {
	Send(to, template string, params map[string]string) (*Delivery, error)
}

// Templates known to the site.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

// New returns the SMTP mailer when a host is configured, otherwise a
// log-only mailer so development setups work without a relay.
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost),
		from: cfg.MailFrom,
	}
}

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func (m *SMTPMailer) Send(to, template string, params map[string]string) (*Delivery, error) {
	subject, body := renderTemplate(template, params)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.from, to, subject, body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return nil, err
	}

	return &Delivery{
		MessageID: uuid.New().String(),
		To:        to,
		Template:  template,
		SentAt:    time.Now(),
	}, nil
}

// LogMailer writes the would-be message to the server log.
type LogMailer struct{}

func (m *LogMailer) Send(to, template string, params map[string]string) (*Delivery, error) {
	subject, body := renderTemplate(template, params)
	log.Printf("📧 mail (not sent, SMTP unconfigured) to=%s subject=%q body=%q", to, subject, body)
	return &Delivery{
		MessageID: uuid.New().String(),
		To:        to,
		Template:  template,
		SentAt:    time.Now(),
	}, nil
}

func renderTemplate(template string, params map[string]string) (subject, body string) {
	switch template {
	case TemplateVerifyEmail:
		return "تأكيد البريد الإلكتروني - " + config.SiteName,
			fmt.Sprintf("رمز التحقق الخاص بك هو: %s\nالرمز صالح لمدة 24 ساعة.", params["code"])
	case TemplateResetPassword:
		return "استعادة كلمة المرور - " + config.SiteName,
			fmt.Sprintf("لإعادة تعيين كلمة المرور اضغط الرابط التالي:\n%s\nالرابط صالح لمدة ساعة واحدة.", params["link"])
	}
	return template, ""
}
