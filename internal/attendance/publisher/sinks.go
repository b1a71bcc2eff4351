package publisher

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// LogSink writes messages to a logger. Used when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, EventType,
		"key", string(msg.Key),
		"payload", string(msg.Value),
	)
	return nil
}

// MemorySink keeps messages in order.
type MemorySink struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of everything written so far.
func (s *MemorySink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Producer is the subset of the Kafka client the sink uses.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
	Close() error
}

// KafkaSink produces each message as one record.
type KafkaSink struct {
	producer Producer
}

func NewKafkaSink(producer Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Write(ctx context.Context, msg Message) error {
	return s.producer.Produce(ctx, msg.Key, msg.Value)
}

// Close closes the underlying producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
