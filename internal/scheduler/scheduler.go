// Package scheduler runs the periodic per-user jobs: publishing due posts,
// generating new content and rolling up daily analytics.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"autoposter-api/internal/autopost"
	"autoposter-api/internal/common"
	"autoposter-api/internal/config"
	"autoposter-api/internal/metrics"
	"autoposter-api/internal/storage"

	"go.uber.org/zap"
)

// Scheduler defines the interface for the background job runner
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	// RunJob runs one cycle of the named job immediately
	RunJob(ctx context.Context, name string) error
	Status() Status
}

// UserJobs is the per-user work the jobs fan out over
type UserJobs interface {
	ProcessUserScheduledPosts(ctx context.Context, userID common.UserID) (autopost.ProcessSummary, error)
	GenerateContentForUser(ctx context.Context, userID common.UserID) (*storage.Post, error)
	RollupDailyAnalytics(ctx context.Context, userID common.UserID, day time.Time) (*storage.Analytics, error)
}

// ActiveUsers enumerates the users the jobs run for
type ActiveUsers interface {
	ListActiveBotSettings(ctx context.Context) ([]storage.BotSettings, error)
}

// Dependencies are the collaborators NewScheduler wires together
type Dependencies struct {
	Config   config.SchedulerConfig
	Work     UserJobs
	Users    ActiveUsers
	Locker   Locker
	Clock    common.Clock
	Location *time.Location
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// scheduler implements the Scheduler interface
type scheduler struct {
	config   config.SchedulerConfig
	work     UserJobs
	users    ActiveUsers
	locker   Locker
	clock    common.Clock
	location *time.Location
	metrics  *metrics.Metrics
	logger   *zap.Logger
	stats    *jobStats

	jobs  map[string]*job
	order []string

	// Context and cancellation
	ctx    context.Context
	cancel context.CancelFunc

	// Goroutine management
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(deps Dependencies) (Scheduler, error) {
	cfg := deps.Config
	// Validate configuration
	if cfg.PollInterval <= 0 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must be greater than 0")
	}
	if cfg.Concurrency <= 0 {
		return nil, NewConfigurationError("concurrency", cfg.Concurrency, "must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}
	if cfg.LockTTL <= 0 {
		return nil, NewConfigurationError("lock_ttl", cfg.LockTTL, "must be greater than 0")
	}
	if deps.Work == nil || deps.Users == nil {
		return nil, NewConfigurationError("dependencies", nil, "work and users are required")
	}

	s := &scheduler{
		config:   cfg,
		work:     deps.Work,
		users:    deps.Users,
		locker:   deps.Locker,
		clock:    deps.Clock,
		location: deps.Location,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.clock == nil {
		s.clock = common.NewRealClock()
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.stats = newJobStats(s.clock.Now)

	s.jobs = make(map[string]*job)
	for _, j := range s.defineJobs() {
		s.jobs[j.name] = j
		s.order = append(s.order, j.name)
		s.stats.register(j.name, j.trigger.String())
	}
	return s, nil
}

// Start launches one goroutine per job
func (s *scheduler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info("Starting job scheduler",
		zap.Int("poll_interval_seconds", s.config.PollInterval),
		zap.Int("concurrency", s.config.Concurrency),
		zap.String("timezone", s.location.String()))

	for _, name := range s.order {
		s.wg.Add(1)
		go s.loop(s.ctx, s.jobs[name])
	}

	s.logger.Info("Job scheduler started successfully", zap.Strings("jobs", s.order))
	return nil
}

// Stop gracefully shuts down the scheduler
func (s *scheduler) Stop() error {
	if !s.running.Load() {
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}

	s.logger.Info("Stopping job scheduler...")

	// Signal shutdown
	if s.cancel != nil {
		s.cancel()
	}

	// Wait for running cycles to complete with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All job loops stopped successfully")
	case <-time.After(time.Duration(s.config.ShutdownTimeout) * time.Second):
		s.logger.Warn("Scheduler shutdown timed out, some cycles may still be running")
		return NewShutdownError("shutdown timeout exceeded", s.config.ShutdownTimeout)
	}

	s.running.Store(false)
	s.logger.Info("Job scheduler stopped successfully")
	return nil
}

// IsRunning returns true if the scheduler is currently running
func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

// RunJob runs one cycle of the named job in the caller's goroutine
func (s *scheduler) RunJob(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return NewSchedulerError(ErrUnknownJob, "unknown job "+name)
	}
	return s.runCycle(ctx, j)
}

func (s *scheduler) Status() Status {
	return Status{
		Running: s.IsRunning(),
		Jobs:    s.stats.Snapshot(),
	}
}

// loop waits for the job's trigger and runs a cycle each time it fires
func (s *scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	jobLogger := s.logger.With(zap.String("job", j.name))
	jobLogger.Info("Starting job loop", zap.String("trigger", j.trigger.String()))

	for {
		now := s.clock.Now()
		next := j.trigger.Next(now)
		s.stats.RecordNextRun(j.name, next)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			jobLogger.Info("Job loop stopping due to context cancellation")
			return
		case <-timer.C:
			if err := s.runCycle(ctx, j); err != nil {
				jobLogger.Error("Job cycle failed", zap.Error(err))
			}
		}
	}
}
