package mailer

import (
	"testing"

	"pokedex_service/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNew_FromFallsBackToUsername(t *testing.T) {
	m := New(config.Mail{Host: "smtp.kanto.com", Port: 587, Username: "oak@kanto.com"})
	assert.Equal(t, "oak@kanto.com", m.From)

	m = New(config.Mail{Host: "smtp.kanto.com", Port: 587, Username: "smtp-user", From: "pokedex@kanto.com"})
	assert.Equal(t, "pokedex@kanto.com", m.From)
}

func TestMailer_Message(t *testing.T) {
	m := New(config.Mail{Host: "smtp.kanto.com", Port: 587, From: "pokedex@kanto.com"})

	msg := m.message("ash@kanto.com", "Welcome", "hello")

	assert.Equal(t, []string{"ash@kanto.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"pokedex@kanto.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Welcome"}, msg.GetHeader("Subject"))
}
