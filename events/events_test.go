package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/artvoid/artvoid-api/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := hub.Subscribe(ctx)
	second := hub.Subscribe(ctx)
	assert.Equal(t, 2, hub.Subscribers())

	order := &models.Order{ID: 7, ProductName: "Portrait"}
	require.NoError(t, hub.Publish(ctx, NewEvent(OrderClaimed, order.ID, order)))

	for _, ch := range []<-chan Event{first, second} {
		select {
		case ev := <-ch:
			assert.Equal(t, OrderClaimed, ev.Type)
			assert.Equal(t, uint(7), ev.OrderID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)

	// Publishing after everyone left is a no-op
	assert.NoError(t, hub.Publish(context.Background(), NewEvent(OrderDeleted, 1, nil)))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = hub.Publish(ctx, NewEvent(OrderCreated, uint(i), nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	messages []kafka.Message
	closed   bool

	// when set, each write signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.entered != nil {
		w.entered <- struct{}{}
		<-w.release
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func newTestPublisher(w *fakeWriter, logger *zap.Logger) *KafkaPublisher {
	p := NewKafkaPublisherWithWriter(w, logger)
	p.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newTestPublisher(w, nil)

	order := &models.Order{ID: 42, ProductName: "Portrait"}
	require.NoError(t, p.Publish(context.Background(), NewEvent(OrderApproved, order.ID, order)))

	// Close drains the queue before closing the writer
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, OrderApproved, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, OrderApproved, decoded.Type)
	assert.Equal(t, "Portrait", decoded.Order.ProductName)

	assert.ErrorIs(t, p.Publish(context.Background(), NewEvent(OrderCreated, 1, nil)), ErrPublisherClosed)
	assert.NoError(t, p.Close(), "closing twice is harmless")
}

func TestKafkaPublisher_GivesUpAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	w := &fakeWriter{failures: 10}
	p := newTestPublisher(w, zap.New(core))

	require.NoError(t, p.Publish(context.Background(), NewEvent(OrderCreated, 1, nil)),
		"delivery problems are not the caller's")
	require.NoError(t, p.Close())

	assert.Equal(t, 6, w.failures, "one attempt plus three retries")
	assert.Empty(t, w.messages)
	entries := logs.FilterMessage("failed to deliver order event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, OrderCreated, entries[0].ContextMap()["type"])
}

func TestKafkaPublisher_DoesNotWaitForBroker(t *testing.T) {
	w := &fakeWriter{entered: make(chan struct{}), release: make(chan struct{})}
	p := newTestPublisher(w, nil)
	p.queueSize = 1

	require.NoError(t, p.Publish(context.Background(), NewEvent(OrderCreated, 1, nil)))
	select {
	case <-w.entered:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the event")
	}

	// the writer is stuck; the next event waits in the queue and the one after is refused
	require.NoError(t, p.Publish(context.Background(), NewEvent(OrderClaimed, 1, nil)))
	err := p.Publish(context.Background(), NewEvent(OrderApproved, 1, nil))
	assert.ErrorIs(t, err, ErrQueueFull)

	go func() {
		for range w.entered {
		}
	}()
	close(w.release)
	require.NoError(t, p.Close())
	close(w.entered)

	require.Len(t, w.messages, 2)
	assert.Equal(t, OrderClaimed, string(w.messages[1].Headers[0].Value))
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestMulti(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("down")}

	m := Multi{ok, nil, failing, Discard{}}
	err := m.Publish(context.Background(), NewEvent(OrderCreated, 3, nil))

	assert.Error(t, err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1, "a failing publisher does not stop the others")
}
