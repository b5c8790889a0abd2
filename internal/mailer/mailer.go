package mailer

import (
	"fmt"

	"pokedex_service/internal/config"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	From   string
	dialer *gomail.Dialer
}

func New(cfg config.Mail) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &Mailer{
		From:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	if err := m.dialer.DialAndSend(m.message(to, subject, body)); err != nil {
		return fmt.Errorf("mailer.Send: %w", err)
	}

	return nil
}

func (m *Mailer) message(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.From)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/plain", body)

	return msg
}
