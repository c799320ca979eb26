package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TriggerConfig describes when one job is submitted
type TriggerConfig struct {
	Job          JobName
	Interval     time.Duration
	RunOnStartup bool
}

// IntervalTrigger submits a job to the scheduler on a fixed interval
type IntervalTrigger struct {
	config    TriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a new interval trigger
func NewIntervalTrigger(cfg TriggerConfig, scheduler *Scheduler, logger *zap.Logger) (*IntervalTrigger, error) {
	if cfg.Job == "" {
		return nil, fmt.Errorf("%w: trigger job name is required", ErrInvalidConfig)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: %s interval must be positive", ErrInvalidConfig, cfg.Job)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalTrigger{
		config:    cfg,
		scheduler: scheduler,
		logger:    logger.With(zap.String("job", string(cfg.Job))),
	}, nil
}

// Start starts the trigger loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	if t.config.RunOnStartup {
		t.submit()
	}

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Interval trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_startup", t.config.RunOnStartup),
	)
	return nil
}

// Stop stops the trigger loop
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Interval trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.submit()
		}
	}
}

func (t *IntervalTrigger) submit() {
	if err := t.scheduler.Submit(t.config.Job); err != nil {
		t.logger.Warn("Failed to submit scheduled job", zap.Error(err))
	}
}
