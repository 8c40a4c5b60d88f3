package mq

import (
	"FileVault/model"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	key  string
	body []byte
}

func newTestPublisher(sink *[]sent, err error) *Publisher {
	p := NewPublisher("amqp://unused")
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	p.send = func(_ context.Context, key string, body []byte) error {
		if err != nil {
			return err
		}
		*sink = append(*sink, sent{key: key, body: body})
		return nil
	}
	return p
}

func TestPublisherIndexFile(t *testing.T) {
	var out []sent
	p := newTestPublisher(&out, nil)

	doc := model.FileDocument{ID: "f1", Name: "a.txt", Size: 3, Extension: "txt"}
	require.NoError(t, p.IndexFile(context.Background(), doc))
	require.Len(t, out, 1)
	assert.Equal(t, RoutingIndex, out[0].key)

	var event IndexEvent
	require.NoError(t, json.Unmarshal(out[0].body, &event))
	assert.Equal(t, ActionIndex, event.Action)
	assert.Equal(t, "f1", event.FileID)
	require.NotNil(t, event.Document)
	assert.Equal(t, "txt", event.Document.Extension)
	assert.Equal(t, 0, event.Attempt)
	assert.True(t, event.OccurredAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestPublisherRemoveFile(t *testing.T) {
	var out []sent
	p := newTestPublisher(&out, nil)

	require.NoError(t, p.RemoveFile(context.Background(), "f1"))
	require.Len(t, out, 1)
	assert.Equal(t, RoutingRemove, out[0].key)

	var event IndexEvent
	require.NoError(t, json.Unmarshal(out[0].body, &event))
	assert.Equal(t, ActionRemove, event.Action)
	assert.Nil(t, event.Document)
}

func TestPublisherWrapsSendErrors(t *testing.T) {
	boom := errors.New("broker down")
	p := newTestPublisher(nil, boom)

	err := p.RemoveFile(context.Background(), "f1")
	assert.ErrorIs(t, err, boom)
}

func TestClosedClient(t *testing.T) {
	var c *Client
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, (&Client{}).publish(context.Background(), ExchangeIndex, RoutingIndex, nil, ""), ErrClosed)
}
