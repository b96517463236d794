package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Runner interface {
	RunOnce(ctx context.Context) (Report, error)
}

// Trigger invokes a Runner at a fixed cadence. Invocations may overlap;
// a failing or panicking invocation never stops the schedule.
type Trigger struct {
	l        *zap.Logger
	interval time.Duration
	runner   Runner
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewTrigger(l *zap.Logger, interval time.Duration, runner Runner) *Trigger {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Trigger{
		l:        l,
		interval: interval,
		runner:   runner,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{l.Sugar()})),
		),
	}
}

func (t *Trigger) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	t.ctx, t.cancel = context.WithCancel(context.WithoutCancel(ctx))

	t.cron.Schedule(fixedDelay(t.interval), cron.FuncJob(t.tick))
	t.cron.Start()

	t.l.Info("Dispatch trigger started", zap.Duration("interval", t.interval))
}

// Stop halts new ticks and waits for running ones until ctx expires, then
// cancels whatever is still in flight.
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel == nil {
		return nil
	}

	defer cancel()

	select {
	case <-t.cron.Stop().Done():
		t.l.Info("Dispatch trigger stopped")
		return nil
	case <-ctx.Done():
		t.l.Warn("Dispatch trigger stop timed out, cancelling running dispatch")
		return ctx.Err()
	}
}

func (t *Trigger) tick() {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()

	report, err := t.runner.RunOnce(ctx)
	if err != nil {
		t.l.Error("Dispatch run failed", zap.Error(err))
		return
	}

	if report.Due > 0 {
		t.l.Info("Dispatch run finished",
			zap.Int("due", report.Due),
			zap.Int("completed", report.Completed),
			zap.Int("skipped", report.Skipped),
			zap.Int("delivered", report.Delivered),
			zap.Int("failed", report.Failed),
		)
	}
}

type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.s.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
