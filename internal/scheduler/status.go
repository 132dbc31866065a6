package scheduler

import (
	"sort"
	"sync"
	"time"
)

// JobStatus summarises the recent history of one job
type JobStatus struct {
	Name            string    `json:"name"`
	Trigger         string    `json:"trigger"`
	Cycles          int64     `json:"cycles"`
	SkippedCycles   int64     `json:"skipped_cycles"`
	UsersProcessed  int64     `json:"users_processed"`
	UserErrors      int64     `json:"user_errors"`
	LastRunAt       time.Time `json:"last_run_at,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	AverageDuration string    `json:"average_duration"`
	NextRunAt       time.Time `json:"next_run_at,omitempty"`
}

// Status is the scheduler snapshot reported by the health endpoint
type Status struct {
	Running bool        `json:"running"`
	Jobs    []JobStatus `json:"jobs"`
}

// jobStats tracks in-process counters per job
type jobStats struct {
	mu    sync.RWMutex
	jobs  map[string]*jobCounters
	clock func() time.Time
}

type jobCounters struct {
	trigger       string
	cycles        int64
	skipped       int64
	users         int64
	userErrors    int64
	lastRunAt     time.Time
	lastError     string
	totalDuration time.Duration
	nextRunAt     time.Time
}

func newJobStats(clock func() time.Time) *jobStats {
	return &jobStats{jobs: make(map[string]*jobCounters), clock: clock}
}

func (s *jobStats) register(name, trigger string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = &jobCounters{trigger: trigger}
}

func (s *jobStats) get(name string) *jobCounters {
	c, ok := s.jobs[name]
	if !ok {
		c = &jobCounters{}
		s.jobs[name] = c
	}
	return c
}

// RecordCycle records a finished cycle over users, of which failed errored
func (s *jobStats) RecordCycle(name string, users, failed int, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(name)
	c.cycles++
	c.users += int64(users)
	c.userErrors += int64(failed)
	c.lastRunAt = s.clock()
	c.totalDuration += duration
	if err != nil {
		c.lastError = err.Error()
	} else {
		c.lastError = ""
	}
}

// RecordSkipped records a cycle skipped because the lock was held elsewhere
func (s *jobStats) RecordSkipped(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(name).skipped++
}

func (s *jobStats) RecordNextRun(name string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(name).nextRunAt = at
}

// Snapshot returns the per-job status sorted by name
func (s *jobStats) Snapshot() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for name, c := range s.jobs {
		var avg time.Duration
		if c.cycles > 0 {
			avg = c.totalDuration / time.Duration(c.cycles)
		}
		out = append(out, JobStatus{
			Name:            name,
			Trigger:         c.trigger,
			Cycles:          c.cycles,
			SkippedCycles:   c.skipped,
			UsersProcessed:  c.users,
			UserErrors:      c.userErrors,
			LastRunAt:       c.lastRunAt,
			LastError:       c.lastError,
			AverageDuration: avg.String(),
			NextRunAt:       c.nextRunAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
