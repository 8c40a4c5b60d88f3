package mq

import (
	"FileVault/model"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher sends index events to RabbitMQ. The connection is opened lazily
// and re-dialed after it drops.
type Publisher struct {
	url    string
	mu     sync.Mutex
	client *Client
	send   func(ctx context.Context, routingKey string, body []byte) error
	now    func() time.Time
}

// NewPublisher creates a publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	p := &Publisher{url: url, now: time.Now}
	p.send = p.sendAMQP
	return p
}

// Connect dials eagerly so that a bad URL shows up at startup.
func (p *Publisher) Connect() error {
	_, err := p.get()
	return err
}

func (p *Publisher) get() (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		if !p.client.IsClosed() {
			return p.client, nil
		}
		p.client.Close()
		p.client = nil
	}
	client, err := Dial(p.url)
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *Publisher) sendAMQP(ctx context.Context, routingKey string, body []byte) error {
	client, err := p.get()
	if err != nil {
		return err
	}
	if routingKey == RoutingRemove {
		return client.PublishRemove(ctx, body)
	}
	return client.PublishIndex(ctx, body)
}

// IndexFile publishes an index event for a new record.
func (p *Publisher) IndexFile(ctx context.Context, doc model.FileDocument) error {
	return p.emit(ctx, RoutingIndex, IndexEvent{Action: ActionIndex, FileID: doc.ID, Document: &doc})
}

// RemoveFile publishes a removal event for a deleted record.
func (p *Publisher) RemoveFile(ctx context.Context, id string) error {
	return p.emit(ctx, RoutingRemove, IndexEvent{Action: ActionRemove, FileID: id})
}

func (p *Publisher) emit(ctx context.Context, routingKey string, event IndexEvent) error {
	event.OccurredAt = p.now().UTC()
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode index event: %w", err)
	}
	if err := p.send(ctx, routingKey, body); err != nil {
		return fmt.Errorf("publish %s event for %s: %w", event.Action, event.FileID, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client.Close()
	p.client = nil
}
