package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeIndex = "file.index"
	ExchangeRetry = "file.index.retry"
	ExchangeDLQ   = "file.index.dlq"

	QueueIndex = "file.index.queue"
	QueueRetry = "file.index.retry.queue"
	QueueDLQ   = "file.index.dlq.queue"

	RoutingIndex  = "index"
	RoutingRemove = "remove"
	RoutingRetry  = "retry"
	RoutingDLQ    = "dlq"
)

// ErrClosed is returned when publishing on a closed client.
var ErrClosed = errors.New("rabbitmq client closed")

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

// Dial opens a connection and a channel.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// IsClosed reports whether the connection or channel has gone away.
func (c *Client) IsClosed() bool {
	return c == nil || c.Conn == nil || c.Conn.IsClosed() || c.Channel == nil || c.Channel.IsClosed()
}

// DeclareTopology declares the index exchange and queue plus a delayed retry
// queue that dead-letters back into it and a terminal DLQ.
func (c *Client) DeclareTopology() error {
	for _, exchange := range []string{ExchangeIndex, ExchangeRetry, ExchangeDLQ} {
		if err := c.Channel.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
	}

	if _, err := c.Channel.QueueDeclare(QueueIndex, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueIndex, err)
	}
	if _, err := c.Channel.QueueDeclare(
		QueueRetry,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    ExchangeIndex,
			"x-dead-letter-routing-key": RoutingIndex,
		},
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueRetry, err)
	}
	if _, err := c.Channel.QueueDeclare(QueueDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDLQ, err)
	}

	bindings := []struct{ queue, key, exchange string }{
		{QueueIndex, RoutingIndex, ExchangeIndex},
		{QueueIndex, RoutingRemove, ExchangeIndex},
		{QueueRetry, RoutingRetry, ExchangeRetry},
		{QueueDLQ, RoutingDLQ, ExchangeDLQ},
	}
	for _, b := range bindings {
		if err := c.Channel.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", b.queue, b.exchange, err)
		}
	}
	return nil
}

func (c *Client) PublishIndex(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeIndex, RoutingIndex, body, "")
}

func (c *Client) PublishRemove(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeIndex, RoutingRemove, body, "")
}

// PublishRetry parks a message in the retry queue until delay expires.
func (c *Client) PublishRetry(ctx context.Context, body []byte, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	return c.publish(ctx, ExchangeRetry, RoutingRetry, body, fmt.Sprintf("%d", delay.Milliseconds()))
}

func (c *Client) PublishDLQ(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeDLQ, RoutingDLQ, body, "")
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte, expiration string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if c.IsClosed() {
		return ErrClosed
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if expiration != "" {
		msg.Expiration = expiration
	}
	return c.Channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}
