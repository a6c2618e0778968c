package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/artvoid/artvoid-api/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultQueueSize = 256
	deliveryTimeout  = 10 * time.Second
)

var (
	// ErrQueueFull is returned when events arrive faster than the broker takes them
	ErrQueueFull = errors.New("kafka publish queue is full")
	// ErrPublisherClosed is returned by Publish after Close
	ErrPublisherClosed = errors.New("kafka publisher is closed")
)

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by order id so every change
// to one order lands on the same partition. Publish only enqueues; a single
// worker delivers in order, retrying with exponential backoff, and logs
// what it finally could not deliver.
type KafkaPublisher struct {
	writer     MessageWriter
	logger     *zap.Logger
	maxRetries uint64
	newBackOff func() backoff.BackOff
	queueSize  int

	mu     sync.RWMutex
	start  sync.Once
	queue  chan kafka.Message
	done   chan struct{}
	closed bool
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
	}, logger)
}

// NewKafkaPublisherWithWriter wraps an existing writer
func NewKafkaPublisherWithWriter(w MessageWriter, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer:     w,
		logger:     logger,
		maxRetries: 3,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		queueSize:  defaultQueueSize,
	}
}

// Publish encodes event and queues it for delivery without waiting for the broker
func (p *KafkaPublisher) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	p.start.Do(p.run)

	select {
	case p.queue <- msg:
		return nil
	default:
		return fmt.Errorf("failed to queue %s: %w", event.Type, ErrQueueFull)
	}
}

func (p *KafkaPublisher) run() {
	p.queue = make(chan kafka.Message, p.queueSize)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		for msg := range p.queue {
			if err := p.deliver(msg); err != nil {
				metrics.OperationErrorsTotal.WithLabelValues("kafka_publish").Inc()
				p.logger.Error("failed to deliver order event",
					zap.String("type", eventType(msg)),
					zap.ByteString("order_id", msg.Key),
					zap.Error(err),
				)
			}
		}
	}()
}

func (p *KafkaPublisher) deliver(msg kafka.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	policy := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	return backoff.Retry(func() error {
		return p.writer.WriteMessages(ctx, msg)
	}, policy)
}

// Close stops accepting events, waits for the queue to drain and closes the writer
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	started := p.queue != nil
	if started {
		close(p.queue)
	}
	p.mu.Unlock()

	if started {
		<-p.done
	}
	return p.writer.Close()
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event-type" {
			return string(h.Value)
		}
	}
	return ""
}
