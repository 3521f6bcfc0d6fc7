// Package rabbitmq подключается к брокеру и публикует события о курсах.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к брокеру, повторяя попытку retries раз с паузой delay.
func Connect(ctx context.Context, url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 0; attempt < retries; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет обменник NotificationsExchange
// вместе с очередями queues.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(NotificationsExchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: declare %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, NotificationsExchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: bind %s: %w", op, q.QueueName, err)
		}
	}
	return ch, nil
}
