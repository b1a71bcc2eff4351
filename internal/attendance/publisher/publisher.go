// Package publisher announces recorded attendance events to downstream sinks.
//
// Publishing is best-effort: a recorded event stays recorded whether or not
// it reaches the sink. In async mode events are queued in a bounded buffer
// and drained by a single worker; Close drains whatever is left.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bioclock/internal/attendance/models"
)

// EventType names the message every recorded event produces.
const EventType = "attendance.recorded"

var (
	ErrBufferFull  = errors.New("attendance publish buffer full")
	ErrCircuitOpen = errors.New("attendance publisher circuit open")
	ErrClosed      = errors.New("attendance publisher closed")
)

// Envelope is the wire form of a published event.
type Envelope struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Event      *models.Event `json:"event"`
}

// Message is an encoded envelope keyed by subject.
type Message struct {
	Key   []byte
	Value []byte
}

// Sink receives encoded messages.
type Sink interface {
	Write(ctx context.Context, msg Message) error
}

// Publisher encodes events and hands them to a Sink.
type Publisher struct {
	sink    Sink
	logger  *slog.Logger
	breaker *CircuitBreaker

	mu      sync.RWMutex
	closed  bool
	buffer  chan Message
	wg      sync.WaitGroup
	dropped atomic.Int64
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer queues up to size messages for a background worker.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan Message, size)
		}
	}
}

// WithCircuitBreaker stops calling the sink while it keeps failing.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) {
		p.breaker = cb
	}
}

// New creates a publisher. Without WithAsyncBuffer, Publish writes through.
func New(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Publish encodes and delivers (or enqueues) one event.
func (p *Publisher) Publish(ctx context.Context, event *models.Event) error {
	msg, err := Encode(event)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.buffer == nil {
		return p.deliver(ctx, msg)
	}

	select {
	case p.buffer <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.dropped.Add(1)
		return ErrBufferFull
	}
}

// Dropped returns how many events were refused because the buffer was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting events, drains the buffer and closes the sink.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()

	p.wg.Wait()
	if c, ok := p.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for msg := range p.buffer {
		if err := p.deliver(context.Background(), msg); err != nil {
			p.logger.Warn("attendance event not delivered",
				"key", string(msg.Key),
				"error", err,
			)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, msg Message) error {
	if p.breaker != nil && !p.breaker.Allow() {
		return ErrCircuitOpen
	}
	if err := p.sink.Write(ctx, msg); err != nil {
		if p.breaker != nil {
			p.breaker.RecordFailure()
		}
		return err
	}
	if p.breaker != nil {
		p.breaker.RecordSuccess()
	}
	return nil
}

// Encode builds the keyed envelope for an event.
func Encode(event *models.Event) (Message, error) {
	value, err := json.Marshal(Envelope{
		Type:       EventType,
		OccurredAt: event.Timestamp,
		Event:      event,
	})
	if err != nil {
		return Message{}, fmt.Errorf("encode attendance event: %w", err)
	}
	return Message{Key: []byte(event.Subject.String()), Value: value}, nil
}
