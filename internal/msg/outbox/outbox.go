package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsletter-back/internal/metrics"
	"newsletter-back/internal/model"
	"newsletter-back/internal/repository"
	"newsletter-back/pkg/kafka"
)

const BatchSizeMultiply = 5

type Repository interface {
	UpdateAsSent(ctx context.Context, ext repository.RepoExtension, messageID uuid.UUID) error
	SelectUnsentBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error)
}

type Config struct {
	Name         string
	WorkerCount  int
	PollInterval time.Duration
	BatchSize    int
}

// Publisher relays dispatch events written to the outbox table to Kafka.
type Publisher struct {
	l          *zap.Logger
	cfg        Config
	producer   kafka.Producer
	outboxRepo Repository

	inflight sync.Map
	wg       sync.WaitGroup
}

func NewPublisher(l *zap.Logger, cfg Config, producer kafka.Producer, outboxRepo Repository) *Publisher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	return &Publisher{
		l:          l.With(zap.String("publisher", cfg.Name)),
		cfg:        cfg,
		producer:   producer,
		outboxRepo: outboxRepo,
	}
}

// Run polls the outbox until ctx is cancelled and waits for its workers.
func (p *Publisher) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messagePipe := make(chan model.OutboxMessage, p.cfg.BatchSize*BatchSizeMultiply)

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i, messagePipe)
	}

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(messagePipe)
			p.wg.Wait()
			p.l.Info("Outbox publisher stopped")

			return
		case <-ticker.C:
			p.poll(ctx, messagePipe)
		}
	}
}

func (p *Publisher) poll(ctx context.Context, messagePipe chan<- model.OutboxMessage) {
	messages, err := p.outboxRepo.SelectUnsentBatch(ctx, nil, p.cfg.BatchSize)
	if err != nil {
		p.l.Error("Failed to select unsent messages", zap.Error(err))
		return
	}

	for _, msg := range messages {
		if _, busy := p.inflight.LoadOrStore(msg.ID, struct{}{}); busy {
			continue
		}

		select {
		case messagePipe <- msg:
		case <-ctx.Done():
			p.inflight.Delete(msg.ID)
			return
		}
	}
}

func (p *Publisher) worker(ctx context.Context, id int, messagePipe <-chan model.OutboxMessage) {
	defer p.wg.Done()

	p.l.Debug("Outbox worker started", zap.Int("id", id))

	for msg := range messagePipe {
		if ctx.Err() != nil {
			p.inflight.Delete(msg.ID)
			continue
		}

		partition, offset, err := p.sendAndMark(ctx, msg)
		p.inflight.Delete(msg.ID)

		if err != nil {
			metrics.OutboxPublished.WithLabelValues("error").Inc()
			p.l.Error("Failed to send message", zap.Error(err), zap.String("message_id", msg.ID.String()))

			continue
		}

		metrics.OutboxPublished.WithLabelValues("ok").Inc()
		p.l.Info("Message sent",
			zap.String("message_id", msg.ID.String()),
			zap.String("topic", msg.Topic),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
	}

	p.l.Debug("Outbox worker stopped", zap.Int("id", id))
}

func (p *Publisher) sendAndMark(ctx context.Context, message model.OutboxMessage) (partition int32, offset int64, err error) {
	messageID, err := message.ID.MarshalBinary()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to marshal message id: %w", err)
	}

	partition, offset, err = p.producer.PushMessage(ctx, messageID, message.Payload, message.Topic)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to push message: %w", err)
	}

	if err := p.outboxRepo.UpdateAsSent(ctx, nil, message.ID); err != nil {
		return 0, 0, fmt.Errorf("failed to update as sent: %w", err)
	}

	return partition, offset, nil
}
