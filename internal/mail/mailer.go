package mail

import (
	"context"

	"mydienst/internal/config"
	"mydienst/internal/domain"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// SMTPMailer delivers messages through a configured SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	logger *zerolog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg domain.Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return err
	}

	m.logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// NopMailer is used when SMTP is disabled; it logs instead of sending.
type NopMailer struct {
	logger *zerolog.Logger
}

func NewNopMailer(logger *zerolog.Logger) *NopMailer {
	return &NopMailer{logger: logger}
}

func (m *NopMailer) Send(_ context.Context, msg domain.Message) error {
	m.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("smtp disabled, email skipped")
	return nil
}
