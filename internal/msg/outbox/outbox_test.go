package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsletter-back/internal/model"
	"newsletter-back/internal/repository"
	"newsletter-back/pkg/kafka"
)

type memRepo struct {
	mu       sync.Mutex
	messages []model.OutboxMessage
	selects  int
}

func (r *memRepo) add(topic string, payload []byte) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	r.messages = append(r.messages, model.OutboxMessage{ID: id, Topic: topic, Payload: payload, CreatedAt: time.Now()})

	return id
}

func (r *memRepo) UpdateAsSent(_ context.Context, _ repository.RepoExtension, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			now := time.Now()
			r.messages[i].Sent = true
			r.messages[i].SentAt = &now
		}
	}

	return nil
}

func (r *memRepo) SelectUnsentBatch(_ context.Context, _ repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selects++

	var out []model.OutboxMessage
	for _, m := range r.messages {
		if !m.Sent && len(out) < batchSize {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *memRepo) unsent() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.messages {
		if !m.Sent {
			n++
		}
	}

	return n
}

type fakeProducer struct {
	mu     sync.Mutex
	pushed map[uuid.UUID]int
	fail   bool
}

func (p *fakeProducer) PushMessage(_ context.Context, key, _ []byte, _ string) (int32, int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return 0, 0, errors.New("broker unavailable")
	}

	id, err := uuid.FromBytes(key)
	if err != nil {
		return 0, 0, err
	}

	p.pushed[id]++

	return 0, int64(len(p.pushed)), nil
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) count(id uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pushed[id]
}

func runPublisher(t *testing.T, p *Publisher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		p.Run(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestPublisher_RelaysUnsentMessages(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	producer := &fakeProducer{pushed: map[uuid.UUID]int{}}

	ids := []uuid.UUID{
		repo.add("newsletter.content.dispatched", []byte(`{"delivered":1}`)),
		repo.add("newsletter.content.dispatched", []byte(`{"delivered":2}`)),
		repo.add("newsletter.content.dispatched", []byte(`{"delivered":3}`)),
	}

	p := NewPublisher(zap.NewNop(), Config{Name: "test", WorkerCount: 2, PollInterval: 10 * time.Millisecond, BatchSize: 2}, producer, repo)
	runPublisher(t, p)

	assert.Eventually(t, func() bool { return repo.unsent() == 0 }, 2*time.Second, 10*time.Millisecond)

	for _, id := range ids {
		assert.Equal(t, 1, producer.count(id), "message %s pushed once", id)
	}
}

func TestPublisher_KeepsMessageOnProducerError(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	producer := &fakeProducer{pushed: map[uuid.UUID]int{}, fail: true}
	repo.add("newsletter.content.dispatched", []byte(`{}`))

	p := NewPublisher(zap.NewNop(), Config{WorkerCount: 1, PollInterval: 10 * time.Millisecond, BatchSize: 10}, producer, repo)
	runPublisher(t, p)

	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.selects >= 3
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, repo.unsent())
}

func TestPublisher_WithSaramaProducer(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	repo.add("newsletter.content.dispatched", []byte(`{"title":"Issue #1"}`))

	sp := mocks.NewSyncProducer(t, kafka.NewConfig())
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"title":"Issue #1"}` {
			return errors.New("unexpected payload")
		}

		return nil
	})

	t.Cleanup(func() { assert.NoError(t, sp.Close()) })

	producer := kafka.NewProducerFromSync(sp)

	p := NewPublisher(zap.NewNop(), Config{WorkerCount: 1, PollInterval: 10 * time.Millisecond, BatchSize: 10}, producer, repo)
	runPublisher(t, p)

	require.Eventually(t, func() bool { return repo.unsent() == 0 }, 2*time.Second, 10*time.Millisecond)
}
