package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const contentTypeJSON = "application/json"

// Client holds one connection and one channel. Publishing from several
// goroutines is serialized by amqp091 on the channel.
type Client struct {
	conn *amqp.Connection
	chn  *amqp.Channel
	log  *slog.Logger
}

func NewClient(url string, log *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	return &Client{
		conn: conn,
		chn:  chn,
		log:  log.With("module", "rabbitmq"),
	}, nil
}

func (c *Client) Close() error {
	return errors.Join(c.chn.Close(), c.conn.Close())
}

// CreateQueue declares a durable queue; declaring an existing one is a no-op.
func (c *Client) CreateQueue(name string) error {
	_, err := c.chn.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// SetPrefetch caps the number of unacked deliveries handed to this consumer.
func (c *Client) SetPrefetch(count int) error {
	if err := c.chn.Qos(count, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}
	return nil
}

func (c *Client) Publish(ctx context.Context, queue string, body []byte) error {
	err := c.chn.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "message published", slog.String("queue", queue))
	return nil
}

// Consume delivers messages with manual acknowledgement.
func (c *Client) Consume(queue string) (<-chan amqp.Delivery, error) {
	msgs, err := c.chn.Consume(
		queue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", queue, err)
	}
	return msgs, nil
}
