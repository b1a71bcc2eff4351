// Package kafka wraps a franz-go client for producing and tailing a topic.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"bioclock/internal/platform/config"
)

// Client produces to a single default topic.
type Client struct {
	client *kgo.Client
	topic  string
}

// New creates a producer for cfg.AttendanceTopic.
// Returns nil if no brokers are configured.
func New(ctx context.Context, cfg config.KafkaConfig, opts ...kgo.Opt) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.AttendanceTopic),
	}
	cl, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &Client{client: cl, topic: cfg.AttendanceTopic}, nil
}

// Topic returns the default produce topic.
func (c *Client) Topic() string {
	return c.topic
}

// EnsureTopic creates the default topic if it does not exist yet.
func (c *Client) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(c.client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, c.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", c.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Produce writes one record synchronously.
func (c *Client) Produce(ctx context.Context, key, value []byte) error {
	rec := &kgo.Record{Topic: c.topic, Key: key, Value: value}
	if err := c.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", c.topic, err)
	}
	return nil
}

// Health pings the seed brokers.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (c *Client) Close() error {
	c.client.Close()
	return nil
}

// Tail consumes topic from the beginning and calls fn for each record until
// ctx is cancelled or fn returns an error.
func Tail(ctx context.Context, brokers []string, topic string, fn func(key, value []byte) error) error {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer cl.Close()

	for {
		fetches := cl.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			return fmt.Errorf("fetch %s: %w", errs[0].Topic, errs[0].Err)
		}
		var fnErr error
		fetches.EachRecord(func(r *kgo.Record) {
			if fnErr == nil {
				fnErr = fn(r.Key, r.Value)
			}
		})
		if fnErr != nil {
			return fnErr
		}
	}
}
