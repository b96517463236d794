package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/metrics"
)

type Dispatcher struct {
	l        *zap.Logger
	store    Store
	selector *Selector
	executor *Executor
	now      func() time.Time
}

func NewDispatcher(l *zap.Logger, store Store, sender Sender, renderer *Renderer, cfg Config) *Dispatcher {
	return &Dispatcher{
		l:        l,
		store:    store,
		selector: NewSelector(store),
		executor: NewExecutor(l, store, sender, renderer, cfg),
		now:      time.Now,
	}
}

// SetClock replaces the time source of the dispatcher and its executor.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
	d.executor.now = now
}

// RunOnce processes every item due at the start of the run, in order.
// It stops at the first store error or when ctx is done; unprocessed items
// stay due.
func (d *Dispatcher) RunOnce(ctx context.Context) (report Report, err error) {
	report.StartedAt = d.now()
	started := time.Now()

	defer func() {
		metrics.DispatchRunDuration.Observe(time.Since(started).Seconds())

		result := "ok"
		if err != nil {
			result = "error"
		}

		metrics.DispatchRuns.WithLabelValues(result).Inc()
	}()

	items, err := d.selector.Select(ctx, report.StartedAt)
	if err != nil {
		return report, err
	}

	report.Due = len(items)
	if report.Due == 0 {
		d.l.Debug("No due content")
		return report, nil
	}

	d.l.Info("Found due content", zap.Int("count", report.Due))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := d.executor.Execute(ctx, item)
		if err != nil {
			return report, fmt.Errorf("dispatch content %s: %w", item.ID, err)
		}

		report.add(res)
	}

	return report, nil
}

// Dispatch runs the executor for a single content item now. The item must be
// due and not yet sent.
func (d *Dispatcher) Dispatch(ctx context.Context, id uuid.UUID) (Result, error) {
	item, err := d.store.SelectDueByID(ctx, id)
	if err != nil {
		return Result{}, err
	}

	if item.Sent {
		return Result{}, apperrors.ErrContentAlreadySent
	}

	if item.ScheduledTime.After(d.now()) {
		return Result{}, apperrors.ErrContentNotDue
	}

	item.Subscribers = activeOnly(item.Subscribers)

	res, err := d.executor.Execute(ctx, *item)
	if err != nil {
		return res, err
	}

	if res.Skipped {
		return res, apperrors.ErrContentClaimed
	}

	return res, nil
}
