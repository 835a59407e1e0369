// email.go - Outbound verification mail.
package server

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers account-verification mail. Signup treats delivery
// failure as non-fatal: the account is created either way.
type Sender interface {
	SendVerification(to, verifyURL string) error
}

// Mailer sends mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg Config) *Mailer {
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}
}

func (m *Mailer) SendVerification(to, verifyURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Email Verification")
	msg.SetBody("text/plain",
		fmt.Sprintf("Please click the following link to verify your email: %s", verifyURL))
	return m.dialer.DialAndSend(msg)
}

// logSender stands in when SMTP is not configured: the verification
// link is written to the log instead of delivered.
type logSender struct {
	log *zap.Logger
}

func (l logSender) SendVerification(to, verifyURL string) error {
	l.log.Info("verification mail suppressed, smtp not configured",
		zap.String("to", to),
		zap.String("verify_url", verifyURL),
	)
	return nil
}

// newSender picks the SMTP mailer when configured, the log fallback
// otherwise.
func newSender(cfg Config, log *zap.Logger) Sender {
	if cfg.SMTPHost == "" {
		return logSender{log: log}
	}
	return NewMailer(cfg)
}
