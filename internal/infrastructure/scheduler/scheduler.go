package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobName identifies a background task
type JobName string

const (
	JobCatalogSync   JobName = "catalog_sync"
	JobCartReminders JobName = "cart_reminders"
)

const historySize = 50

// Job is one execution of a named background task
type Job struct {
	ID          uuid.UUID
	Name        JobName
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a new job instance
func NewJob(name JobName, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Name:       name,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// Duration returns how long the last attempt ran
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}

// JobExecutor executes jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Task is the body of a named job
type Task func(ctx context.Context) error

// Tasks dispatches jobs to the task registered under their name
type Tasks map[JobName]Task

// Execute implements JobExecutor
func (t Tasks) Execute(ctx context.Context, job *Job) error {
	task, ok := t[job.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, job.Name)
	}
	return task(ctx)
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     2,
		RetryDelay:        time.Minute,
	}
}

// FromAppConfig converts the loaded settings into a scheduler config
func FromAppConfig(c config.SchedulerConfig) SchedulerConfig {
	return SchedulerConfig{
		Enabled:           c.Enabled,
		MaxConcurrentJobs: c.MaxConcurrentJobs,
		JobTimeout:        c.JobTimeout,
		RetryAttempts:     c.RetryAttempts,
		RetryDelay:        c.RetryDelay,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("%w: max_concurrent_jobs must be at least 1", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job_timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry_attempts cannot be negative", ErrInvalidConfig)
	}
	if c.RetryAttempts > 0 && c.RetryDelay <= 0 {
		return fmt.Errorf("%w: retry_delay must be positive when retries are enabled", ErrInvalidConfig)
	}
	return nil
}

type jobMetrics struct {
	runs     *telemetry.Counter
	duration *telemetry.Histogram
}

// Scheduler runs background jobs on a fixed worker pool with retries
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger
	metrics  *jobMetrics

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	running   map[JobName]bool
	history   []Job
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg SchedulerConfig, executor JobExecutor, logger *zap.Logger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   cfg,
		executor: executor,
		logger:   logger.With(zap.String("component", "scheduler")),
		jobs:     make(chan *Job, 100),
		running:  make(map[JobName]bool),
	}, nil
}

// SetMeter enables job run counters and duration histograms
func (s *Scheduler) SetMeter(meter metric.Meter) error {
	runs, err := telemetry.NewCounter(meter, "scheduler_job_runs_total", "Background job runs by job and status", "{run}")
	if err != nil {
		return err
	}
	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "scheduler_job_duration_seconds",
		Description: "Background job duration",
		Unit:        "s",
		Boundaries:  telemetry.JobDurationBuckets,
	})
	if err != nil {
		return err
	}
	s.metrics = &jobMetrics{runs: runs, duration: duration}
	return nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the worker pool is started
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Submit queues a fresh run of the named job
func (s *Scheduler) Submit(name JobName) error {
	return s.SubmitJob(NewJob(name, s.config.RetryAttempts))
}

// SubmitJob queues a job for execution
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("job", string(job.Name)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// worker processes jobs from the queue
func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job. A job already running under the same
// name is skipped so a slow run never overlaps with the next tick.
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	if !s.claim(job.Name) {
		s.logger.Info("Job already running, skipping",
			zap.String("job_id", job.ID.String()),
			zap.String("job", string(job.Name)),
		)
		return
	}
	defer s.release(job.Name)

	job.Start()
	s.logger.Info("Processing job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job", string(job.Name)),
		zap.Int("attempt", job.RetryCount+1),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err != nil {
		job.Fail(err.Error())
		s.record(ctx, job)
		s.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("job", string(job.Name)),
			zap.Error(err),
		)
		if job.ShouldRetry() && ctx.Err() == nil {
			s.scheduleRetry(ctx, job)
		}
		return
	}

	job.Complete()
	s.record(ctx, job)
	s.logger.Info("Job completed successfully",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job", string(job.Name)),
		zap.Duration("duration", job.Duration()),
	)
}

// scheduleRetry resubmits job after the retry delay unless the scheduler stops first
func (s *Scheduler) scheduleRetry(ctx context.Context, job *Job) {
	job.RetryCount++
	job.Status = JobStatusPending
	s.logger.Info("Job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", s.config.RetryDelay),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.config.RetryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			if err := s.SubmitJob(job); err != nil {
				s.logger.Warn("Failed to re-queue job for retry",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
			}
		}
	}()
}

func (s *Scheduler) claim(name JobName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name JobName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, name)
}

func (s *Scheduler) record(ctx context.Context, job *Job) {
	s.mu.Lock()
	s.history = append(s.history, *job)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
	s.mu.Unlock()

	if s.metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("job", string(job.Name)),
		attribute.String("status", string(job.Status)),
	}
	s.metrics.runs.Inc(ctx, attrs...)
	s.metrics.duration.RecordDuration(ctx, job.Duration(), attrs...)
}

// History returns up to limit finished attempts, newest first
func (s *Scheduler) History(limit int) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]Job, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}
