package events

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// MockEventBus provides an in-memory implementation of EventBus for testing.
// Handlers run synchronously on Publish.
type MockEventBus struct {
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	mutex           sync.RWMutex
	errors          []error
	publishErr      error
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
	}
}

// Subscribe implements the EventBus interface
func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

// SubscribeAsync implements the EventBus interface; delivery is still synchronous
func (m *MockEventBus) SubscribeAsync(topic string, handler interface{}) error {
	return m.Subscribe(topic, handler)
}

// Unsubscribe drops every subscription on topic
func (m *MockEventBus) Unsubscribe(topic string, _ interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.subscriptions, topic)
	return nil
}

// Publish records the event and delivers it to the topic's handlers
func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mutex.Lock()
	if m.publishErr != nil {
		err := m.publishErr
		m.mutex.Unlock()
		return err
	}
	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)
	handlers := append([]interface{}(nil), m.subscriptions[topic]...)
	m.mutex.Unlock()

	// Trigger handlers outside of the mutex to avoid deadlocks
	for _, handler := range handlers {
		m.invokeHandler(handler, event)
	}
	return nil
}

// Close implements the EventBus interface
func (m *MockEventBus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions = make(map[string][]interface{})
	return nil
}

// FailPublish makes every following Publish return err
func (m *MockEventBus) FailPublish(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishErr = err
}

// GetPublishedEvents returns published events for a topic
func (m *MockEventBus) GetPublishedEvents(topic string) []interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return append([]interface{}{}, m.publishedEvents[topic]...)
}

// ActivityEvents returns the ActivityRecorded events published so far
func (m *MockEventBus) ActivityEvents() []ActivityRecorded {
	var out []ActivityRecorded
	for _, e := range m.GetPublishedEvents(TopicActivityRecorded) {
		if activity, ok := e.(ActivityRecorded); ok {
			out = append(out, activity)
		}
	}
	return out
}

// Errors returns handler panics and type mismatches seen during delivery
func (m *MockEventBus) Errors() []error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]error(nil), m.errors...)
}

// WaitForEvent waits for an event to be published on a topic
func (m *MockEventBus) WaitForEvent(topic string, timeout time.Duration) (interface{}, error) {
	deadline := time.Now().Add(timeout)
	for {
		if events := m.GetPublishedEvents(topic); len(events) > 0 {
			return events[len(events)-1], nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for event on topic %s", topic)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// invokeHandler safely invokes an event handler
func (m *MockEventBus) invokeHandler(handler interface{}, event interface{}) {
	defer func() {
		if r := recover(); r != nil {
			m.mutex.Lock()
			m.errors = append(m.errors, fmt.Errorf("handler panic: %v", r))
			m.mutex.Unlock()
		}
	}()

	switch h := handler.(type) {
	case func(ActivityRecorded):
		if e, ok := event.(ActivityRecorded); ok {
			h(e)
			return
		}
	case func(interface{}):
		h(event)
		return
	}

	m.mutex.Lock()
	m.errors = append(m.errors, fmt.Errorf("type mismatch: handler type does not match event type %T", event))
	m.mutex.Unlock()
}

// AssertEventCount verifies the number of events published on a topic
func AssertEventCount(t *testing.T, mockBus *MockEventBus, topic string, expectedCount int) {
	t.Helper()
	events := mockBus.GetPublishedEvents(topic)
	if len(events) != expectedCount {
		t.Errorf("Expected %d events on topic %s, but got %d", expectedCount, topic, len(events))
	}
}
