package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"
)

const (
	PurposeWelcome = "welcome"

	publishTimeout = 3 * time.Second
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// NopPublisher drops every message. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) SendMessage(context.Context, models.Message) error { return nil }

func WelcomeMessage(email string) models.Message {
	return models.Message{
		Email:   email,
		Subject: "Welcome to the Pokédex",
		Body: fmt.Sprintf(
			"Hi %s,\n\nyour trainer account is ready. Log in and start catching!\n",
			email,
		),
		Purpose: PurposeWelcome,
	}
}

// SendWelcome publishes the welcome message for a freshly registered user.
// Failures are logged and never returned: registration has already succeeded.
func SendWelcome(ctx context.Context, log *slog.Logger, pub Publisher, email string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.SendMessage(ctx, WelcomeMessage(email)); err != nil {
		log.Error("failed to publish welcome message", sl.Err(err))

		return
	}

	log.Debug("welcome message published")
}
