package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"newsletter-back/internal/metrics"
	"newsletter-back/internal/model"
)

type Executor struct {
	l        *zap.Logger
	store    Store
	sender   Sender
	renderer *Renderer
	cfg      Config
	now      func() time.Time
}

func NewExecutor(l *zap.Logger, store Store, sender Sender, renderer *Renderer, cfg Config) *Executor {
	return &Executor{
		l:        l,
		store:    store,
		sender:   sender,
		renderer: renderer,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// Execute delivers item to its subscribers and marks it sent once every
// attempt has been recorded. A store error aborts the item before completion.
// Once started, an item runs to completion even if ctx is cancelled, so that
// recipients already mailed are never mailed again by a later run.
func (e *Executor) Execute(ctx context.Context, item model.DueContent) (Result, error) {
	res := Result{ContentID: item.ID, Recipients: len(item.Subscribers)}

	if e.cfg.ClaimEnabled {
		now := e.now()

		ok, err := e.store.ClaimContent(ctx, item.ID, now, now.Add(-e.cfg.StaleAfter))
		if err != nil {
			return res, fmt.Errorf("failed to claim content %s: %w", item.ID, err)
		}

		if !ok {
			metrics.ClaimsSkipped.Inc()
			e.l.Info("Content claimed by another run, skipping", zap.String("content_id", item.ID.String()))

			res.Skipped = true

			return res, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	ctx = context.WithoutCancel(ctx)

	if err := e.fanOut(ctx, item, &res); err != nil {
		return res, err
	}

	res.SentAt = e.now()

	var event *model.DispatchEvent
	if e.cfg.PublishEvents {
		event = &model.DispatchEvent{
			ContentID:  item.ID,
			TopicID:    item.TopicID,
			Title:      item.Title,
			Recipients: res.Recipients,
			Delivered:  res.Delivered,
			Failed:     res.Failed,
			SentAt:     res.SentAt,
		}
	}

	if err := e.store.CompleteContent(ctx, item.ID, res.SentAt, event); err != nil {
		return res, fmt.Errorf("failed to mark content %s as sent: %w", item.ID, err)
	}

	metrics.ContentDispatched.Inc()

	e.l.Info("Content dispatched",
		zap.String("content_id", item.ID.String()),
		zap.String("title", item.Title),
		zap.Int("recipients", res.Recipients),
		zap.Int("delivered", res.Delivered),
		zap.Int("failed", res.Failed),
	)

	return res, nil
}

func (e *Executor) fanOut(ctx context.Context, item model.DueContent, res *Result) error {
	if len(item.Subscribers) == 0 {
		e.l.Info("No active subscribers for content", zap.String("content_id", item.ID.String()))
		return nil
	}

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, subscriber := range item.Subscribers {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			outcome, err := e.deliver(gctx, item, subscriber)
			if err != nil {
				return err
			}

			mu.Lock()
			if outcome.IsDelivered() {
				res.Delivered++
			} else {
				res.Failed++
			}
			mu.Unlock()

			return nil
		})
	}

	return g.Wait()
}

func (e *Executor) deliver(ctx context.Context, item model.DueContent, subscriber model.Subscriber) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var outcome Outcome

	msg, err := e.renderer.Render(item, subscriber)
	if err != nil {
		outcome = Failed(err.Error())
	} else {
		outcome = e.sender.Send(ctx, msg)
	}

	metrics.DeliveryAttempts.WithLabelValues(string(outcome.status())).Inc()

	log := model.SentLog{
		ID:           uuid.New(),
		ContentID:    item.ID,
		SubscriberID: subscriber.ID,
		Status:       outcome.status(),
		ErrorMessage: outcome.errorMessage(),
		SentAt:       e.now(),
	}

	if err := e.store.InsertSentLog(context.WithoutCancel(ctx), log); err != nil {
		return outcome, fmt.Errorf("failed to record delivery to %s: %w", subscriber.ID, err)
	}

	return outcome, nil
}
