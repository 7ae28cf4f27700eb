package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/uslaccafrica/registration-mailer/internal/observability/logger"
)

// SMTPSender implements Sender over SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

// SMTPConfig carries the connection settings for an SMTP server.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	FromEmail          string
	TLSMode            string
	InsecureSkipVerify bool
}

// NewSMTPSender creates an SMTPSender from config, defaulting TLS to "auto".
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{
		Host:               cfg.Host,
		Port:               cfg.Port,
		From:               cfg.FromEmail,
		User:               cfg.Username,
		Pass:               cfg.Password,
		TLSMode:            cfg.TLSMode,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if s.TLSMode == "" {
		s.TLSMode = "auto"
	}
	return s
}

// Send delivers the message. HTML and text are sent as multipart/alternative
// when both are present.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("SMTPSender"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
		logger.String("to", to),
	)

	log.Debug("sending email",
		logger.String("from", s.From),
		logger.String("subject", subject),
		logger.String("tls_mode", s.TLSMode),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // dev only
	}

	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negotiates STARTTLS when offered
	}

	if err := d.DialAndSend(m); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("smtp send failed",
			logger.String("code", diag.Code),
			logger.Any("temporary", diag.Temporary),
			logger.Err(err),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("email sent")
	return nil
}
