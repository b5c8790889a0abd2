package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pokedex_service/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

// New connects to the broker and declares a durable queue named queueName.
func New(urlForConn string, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (r *RabbitMQClient) SendMessage(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.SendMessage"

	pub, err := publishing(msg, time.Now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.channel.PublishWithContext(ctx, "", r.queue.Name, false, false, pub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// StartReading delivers every message body from the queue to handle until ctx
// is cancelled or the broker closes the channel. A delivery is acked when
// handle succeeds. A failed delivery is requeued once and dropped when it
// fails again after redelivery.
func (r *RabbitMQClient) StartReading(ctx context.Context, handle func(body []byte) error) error {
	const op = "rabbitmq.StartReading"

	deliveries, err := r.channel.ConsumeWithContext(ctx, r.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%s: delivery channel closed", op)
			}

			if err := settle(d, handle); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
}

func settle(d amqp.Delivery, handle func(body []byte) error) error {
	if err := handle(d.Body); err != nil {
		if err := d.Nack(false, !d.Redelivered); err != nil {
			return fmt.Errorf("nack: %w", err)
		}

		return nil
	}

	if err := d.Ack(false); err != nil {
		return fmt.Errorf("ack: %w", err)
	}

	return nil
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}

func publishing(msg models.Message, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, err
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Type:         msg.Purpose,
	}, nil
}

// DecodeMessage parses a body produced by SendMessage.
func DecodeMessage(body []byte) (models.Message, error) {
	var msg models.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return models.Message{}, fmt.Errorf("rabbitmq.DecodeMessage: %w", err)
	}

	if msg.Email == "" {
		return models.Message{}, fmt.Errorf("rabbitmq.DecodeMessage: message has no recipient")
	}

	return msg, nil
}
