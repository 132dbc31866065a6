package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job names, also used in lock keys and metric labels
const (
	JobScheduledPosts    = "scheduled-posts"
	JobDailyAnalytics    = "daily-analytics"
	JobContentGeneration = "content-generation"
)

// contentGenerationHours is the local-hour step of the content generation job
const contentGenerationHours = 4

const lockReleaseTimeout = 5 * time.Second

// job pairs a trigger with the work done for each active user when it fires
type job struct {
	name    string
	trigger Trigger
	run     func(ctx context.Context, userID common.UserID, firedAt time.Time) error
}

// JobNames lists the jobs RunJob accepts
func JobNames() []string {
	return []string{JobScheduledPosts, JobDailyAnalytics, JobContentGeneration}
}

func (s *scheduler) defineJobs() []*job {
	return []*job{
		{
			name:    JobScheduledPosts,
			trigger: Interval(time.Duration(s.config.PollInterval) * time.Second),
			run:     s.publishDuePosts,
		},
		{
			name:    JobDailyAnalytics,
			trigger: Daily{Location: s.location},
			run:     s.rollupPreviousDay,
		},
		{
			name:    JobContentGeneration,
			trigger: EveryHours{Hours: contentGenerationHours, Location: s.location},
			run:     s.generateContent,
		},
	}
}

// runCycle takes the job lock, enumerates active users and runs the job for
// each of them with bounded concurrency. A failing or panicking user is
// counted and logged; the others still run.
func (s *scheduler) runCycle(ctx context.Context, j *job) error {
	startTime := time.Now()
	cycleLogger := s.logger.With(zap.String("job", j.name))

	lock, acquired, err := s.locker.TryLock(ctx, LockPrefix+j.name, time.Duration(s.config.LockTTL)*time.Second)
	if err != nil {
		err = NewJobError(j.name, "acquire_lock", err)
		s.finishCycle(j.name, 0, 0, startTime, err)
		return err
	}
	if !acquired {
		cycleLogger.Info("Skipping cycle, job is running elsewhere")
		s.stats.RecordSkipped(j.name)
		s.metrics.ObserveJob(j.name, metrics.ResultSkipped, 0)
		return nil
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			cycleLogger.Warn("Failed to release job lock", zap.Error(err))
		}
	}()

	settings, err := s.users.ListActiveBotSettings(ctx)
	if err != nil {
		err = NewJobError(j.name, "list_active_users", err)
		s.finishCycle(j.name, 0, 0, startTime, err)
		return err
	}

	firedAt := s.clock.Now()
	cycleLogger.Debug("Starting job cycle", zap.Int("user_count", len(settings)))

	var failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.config.Concurrency)

	for _, st := range settings {
		if ctx.Err() != nil {
			break
		}
		userID := st.UserID
		g.Go(func() error {
			if err := s.runForUser(ctx, j, userID, firedAt); err != nil {
				failed.Add(1)
				s.metrics.IncJobUserError(j.name)
				cycleLogger.Error("Job failed for user",
					zap.String("userID", userID.String()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	var cycleErr error
	if n := int(failed.Load()); n > 0 {
		cycleErr = NewPartialJobError(j.name, n, len(settings))
	}
	s.finishCycle(j.name, len(settings), int(failed.Load()), startTime, cycleErr)

	cycleLogger.Info("Job cycle completed",
		zap.Int("user_count", len(settings)),
		zap.Int64("error_count", failed.Load()),
		zap.Duration("processing_duration", time.Since(startTime)))
	return cycleErr
}

func (s *scheduler) finishCycle(name string, users, failed int, startTime time.Time, err error) {
	elapsed := time.Since(startTime)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	s.metrics.ObserveJob(name, result, elapsed)
	s.stats.RecordCycle(name, users, failed, elapsed, err)
}

// runForUser converts a panic in the user's work into an error
func (s *scheduler) runForUser(ctx context.Context, j *job, userID common.UserID, firedAt time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.run(ctx, userID, firedAt)
}

func (s *scheduler) publishDuePosts(ctx context.Context, userID common.UserID, _ time.Time) error {
	summary, err := s.work.ProcessUserScheduledPosts(ctx, userID)
	if err != nil {
		return err
	}
	if summary.Processed > 0 || summary.Deferred > 0 {
		s.logger.Debug("Due posts processed",
			zap.String("userID", userID.String()),
			zap.Int("posted", summary.Posted),
			zap.Int("failed", summary.Failed),
			zap.Int("deferred", summary.Deferred))
	}
	return nil
}

// rollupPreviousDay summarises the local day before the one the cycle fired in
func (s *scheduler) rollupPreviousDay(ctx context.Context, userID common.UserID, firedAt time.Time) error {
	day := common.StartOfDay(firedAt, s.location).AddDate(0, 0, -1)
	_, err := s.work.RollupDailyAnalytics(ctx, userID, day)
	return err
}

func (s *scheduler) generateContent(ctx context.Context, userID common.UserID, _ time.Time) error {
	_, err := s.work.GenerateContentForUser(ctx, userID)
	return err
}
