package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "career.events", zap.NewNop())

	e := NewEvent(TypePredictionMade, 7, map[string]any{"career": "Data Scientist"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "career.events", got.exchange)
	assert.Equal(t, TypePredictionMade, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, e.ID, got.msg.MessageId)

	var decoded Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, int64(7), decoded.UserID)
	assert.Equal(t, TypePredictionMade, decoded.Type)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newAMQPPublisher(ch, "x", nil)

	err := p.Publish(context.Background(), NewEvent(TypeUserCreated, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.created")
}

func TestAMQPPublisher_CanceledContext(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "x", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, NewEvent(TypeUserCreated, 1, nil)), context.Canceled)
	assert.Empty(t, ch.sent)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "x", nil)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(TypeResumeUploaded, 3, nil)
	b := NewEvent(TypeResumeUploaded, 3, nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(TypeUserDeleted, 1, nil)))
	assert.NoError(t, p.Close())
}
