package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(WithRequiredAcks(RequireOne), WithClientID("newsletter"))

	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForLocal, cfg.Producer.RequiredAcks)
	assert.Equal(t, "newsletter", cfg.ClientID)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestProducer_PushMessage(t *testing.T) {
	t.Parallel()

	sp := mocks.NewSyncProducer(t, NewConfig())
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"ok":true}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewProducerFromSync(sp)

	_, _, err := p.PushMessage(context.Background(), []byte("key"), []byte(`{"ok":true}`), "newsletter.content.dispatched")
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducer_PushMessage_Error(t *testing.T) {
	t.Parallel()

	sp := mocks.NewSyncProducer(t, NewConfig())
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFromSync(sp)

	_, _, err := p.PushMessage(context.Background(), nil, []byte("x"), "t")
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestProducer_PushMessage_CanceledContext(t *testing.T) {
	t.Parallel()

	sp := mocks.NewSyncProducer(t, NewConfig())
	p := NewProducerFromSync(sp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.PushMessage(ctx, nil, []byte("x"), "t")
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, p.Close())
}
