package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

type Balancer int

const (
	RoundRobin Balancer = iota
	Hash
)

type RequiredAcks int

const (
	RequireAll RequiredAcks = iota
	RequireOne
	RequireNone
)

type Producer interface {
	PushMessage(ctx context.Context, key, value []byte, topic string) (partition int32, offset int64, err error)
	Close() error
}

type ProducerOption func(*sarama.Config)

func WithBalancer(b Balancer) ProducerOption {
	return func(c *sarama.Config) {
		switch b {
		case Hash:
			c.Producer.Partitioner = sarama.NewHashPartitioner
		default:
			c.Producer.Partitioner = sarama.NewRoundRobinPartitioner
		}
	}
}

func WithRequiredAcks(acks RequiredAcks) ProducerOption {
	return func(c *sarama.Config) {
		switch acks {
		case RequireOne:
			c.Producer.RequiredAcks = sarama.WaitForLocal
		case RequireNone:
			c.Producer.RequiredAcks = sarama.NoResponse
		default:
			c.Producer.RequiredAcks = sarama.WaitForAll
		}
	}
}

func WithClientID(id string) ProducerOption {
	return func(c *sarama.Config) {
		if id != "" {
			c.ClientID = id
		}
	}
}

type producer struct {
	sp sarama.SyncProducer
}

func NewProducer(brokers []string, opts ...ProducerOption) (Producer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	cfg := NewConfig(opts...)

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	return &producer{sp: sp}, nil
}

// NewConfig returns the sarama config the producer is built with.
// SyncProducer requires Return.Successes.
func NewConfig(opts ...ProducerOption) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = sarama.NewRoundRobinPartitioner
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// NewProducerFromSync wraps an existing sync producer (sarama mocks in tests).
func NewProducerFromSync(sp sarama.SyncProducer) Producer {
	return &producer{sp: sp}
}

func (p *producer) PushMessage(ctx context.Context, key, value []byte, topic string) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.sp.SendMessage(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send message: %w", err)
	}

	return partition, offset, nil
}

func (p *producer) Close() error {
	return p.sp.Close()
}
