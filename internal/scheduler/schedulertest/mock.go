// Package schedulertest provides a Scheduler double for handler and wiring tests.
package schedulertest

import (
	"context"
	"sync"
	"sync/atomic"

	"autoposter-api/internal/scheduler"
)

// MockScheduler implements the Scheduler interface for testing
type MockScheduler struct {
	started    atomic.Bool
	startError error
	stopError  error
	jobError   error
	callCounts map[string]int
	jobsRun    []string
	mu         sync.RWMutex
}

// NewMockScheduler creates a new mock scheduler
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{
		callCounts: make(map[string]int),
	}
}

// Start implements the Scheduler interface
func (m *MockScheduler) Start(ctx context.Context) error {
	m.incrementCallCount("Start")
	m.mu.RLock()
	err := m.startError
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if !m.started.CompareAndSwap(false, true) {
		return scheduler.NewSchedulerError(scheduler.ErrSchedulerAlreadyRunning, "scheduler is already running")
	}
	return nil
}

// Stop implements the Scheduler interface
func (m *MockScheduler) Stop() error {
	m.incrementCallCount("Stop")
	m.mu.RLock()
	err := m.stopError
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	m.started.Store(false)
	return nil
}

// IsRunning implements the Scheduler interface
func (m *MockScheduler) IsRunning() bool {
	m.incrementCallCount("IsRunning")
	return m.started.Load()
}

// RunJob implements the Scheduler interface
func (m *MockScheduler) RunJob(ctx context.Context, name string) error {
	m.incrementCallCount("RunJob")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobsRun = append(m.jobsRun, name)
	return m.jobError
}

// Status implements the Scheduler interface
func (m *MockScheduler) Status() scheduler.Status {
	m.incrementCallCount("Status")
	return scheduler.Status{Running: m.started.Load()}
}

// Test configuration methods
func (m *MockScheduler) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startError = err
}

func (m *MockScheduler) SetStopError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopError = err
}

func (m *MockScheduler) SetJobError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobError = err
}

func (m *MockScheduler) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCounts[method]
}

// JobsRun returns the job names passed to RunJob, in call order
func (m *MockScheduler) JobsRun() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.jobsRun...)
}

func (m *MockScheduler) incrementCallCount(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts[method]++
}

// AssertStarted verifies the scheduler is started
func (m *MockScheduler) AssertStarted(t TestingT) {
	if !m.started.Load() {
		t.Errorf("Expected scheduler to be started, but it was not")
	}
}

// AssertStopped verifies the scheduler is stopped
func (m *MockScheduler) AssertStopped(t TestingT) {
	if m.started.Load() {
		t.Errorf("Expected scheduler to be stopped, but it was running")
	}
}

// TestingT is a minimal interface for testing frameworks
type TestingT interface {
	Errorf(format string, args ...interface{})
}

var _ scheduler.Scheduler = (*MockScheduler)(nil)
