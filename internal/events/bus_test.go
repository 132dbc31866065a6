package events

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autoposter-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	defer bus.Close()

	var received ActivityRecorded
	require.NoError(t, bus.Subscribe(TopicActivityRecorded, func(e ActivityRecorded) {
		received = e
	}))

	event := NewActivityRecorded("user-1", storage.ActionTweetPosted, "Tweet posted", map[string]interface{}{"tweetId": "42"})
	require.NoError(t, bus.Publish(TopicActivityRecorded, event))

	// Synchronous subscribers have run by the time Publish returns
	assert.Equal(t, event.CorrelationID, received.CorrelationID)
	assert.Equal(t, storage.ActionTweetPosted, received.Action)
	assert.Equal(t, "42", received.Metadata["tweetId"])
}

func TestEventBus_ConcurrentPublish(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	defer bus.Close()

	const publishers = 10
	const perPublisher = 100

	var count atomic.Int64
	require.NoError(t, bus.Subscribe("test.concurrent", func(interface{}) {
		count.Add(1)
	}))

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				assert.NoError(t, bus.Publish("test.concurrent", j))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(publishers*perPublisher), count.Load())
}

func TestEventBus_SubscribeAsync_CloseWaits(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var done atomic.Bool
	require.NoError(t, bus.SubscribeAsync("test.async", func(interface{}) {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	}))

	require.NoError(t, bus.Publish("test.async", "payload"))
	require.NoError(t, bus.Close())

	assert.True(t, done.Load(), "Close returns after async handlers finish")
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	defer bus.Close()

	var count atomic.Int64
	handler := func(interface{}) { count.Add(1) }

	require.NoError(t, bus.Subscribe("test.unsub", handler))
	require.NoError(t, bus.Publish("test.unsub", 1))
	require.NoError(t, bus.Unsubscribe("test.unsub", handler))
	require.NoError(t, bus.Publish("test.unsub", 2))

	assert.Equal(t, int64(1), count.Load())
}

func TestEventBus_ClosedBus(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "closing twice is a no-op")

	assert.Error(t, bus.Publish("test", 1))
	assert.Error(t, bus.Subscribe("test", func(interface{}) {}))
	assert.Error(t, bus.SubscribeAsync("test", func(interface{}) {}))
	assert.Error(t, bus.Unsubscribe("test", func(interface{}) {}))
}

func TestEventBus_TopicIsolation(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	defer bus.Close()

	var a, b atomic.Int64
	require.NoError(t, bus.Subscribe("topic.a", func(interface{}) { a.Add(1) }))
	require.NoError(t, bus.Subscribe("topic.b", func(interface{}) { b.Add(1) }))

	require.NoError(t, bus.Publish("topic.a", 1))
	require.NoError(t, bus.Publish("topic.a", 2))

	assert.Equal(t, int64(2), a.Load())
	assert.Equal(t, int64(0), b.Load())
}

func TestMockEventBus(t *testing.T) {
	bus := NewMockEventBus()

	var delivered []storage.ActivityAction
	require.NoError(t, bus.Subscribe(TopicActivityRecorded, func(e ActivityRecorded) {
		delivered = append(delivered, e.Action)
	}))

	require.NoError(t, bus.Publish(TopicActivityRecorded, NewActivityRecorded("u", storage.ActionBotPaused, "paused", nil)))
	require.NoError(t, bus.Publish(TopicActivityRecorded, "not an activity"))

	assert.Equal(t, []storage.ActivityAction{storage.ActionBotPaused}, delivered)
	assert.Len(t, bus.ActivityEvents(), 1)
	AssertEventCount(t, bus, TopicActivityRecorded, 2)
	assert.Len(t, bus.Errors(), 1, "string payload does not match the typed handler")
}
