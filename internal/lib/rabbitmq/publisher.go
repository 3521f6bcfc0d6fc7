package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Channel — часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует JSON-сообщения в обменник.
type Publisher struct {
	ch       Channel
	exchange string
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish сериализует message в JSON и отправляет его с ключом routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	const op = "rabbitmq.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = p.ch.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
