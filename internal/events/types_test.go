package events

import (
	"encoding/json"
	"testing"
	"time"

	"autoposter-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	first := NewEvent()
	second := NewEvent()

	assert.NotEmpty(t, first.CorrelationID)
	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
	assert.WithinDuration(t, time.Now(), first.Timestamp, time.Second)
}

func TestActivityRecorded_JSON(t *testing.T) {
	event := NewActivityRecorded("user-1", storage.ActionTweetFailed, "Tweet failed to post", map[string]interface{}{"postId": 7})

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "user-1", decoded["user_id"])
	assert.Equal(t, "tweet_failed", decoded["action"])
	assert.Equal(t, event.CorrelationID, decoded["correlation_id"])
	assert.Contains(t, decoded, "metadata")
}

func TestActivityRecorded_OmitsEmptyMetadata(t *testing.T) {
	raw, err := json.Marshal(NewActivityRecorded("user-1", storage.ActionBotResumed, "Bot resumed", nil))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "metadata")
}
