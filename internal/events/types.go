package events

import (
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/storage"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// ActivityRecorded is published whenever something worth auditing happens to a
// user's bot. Subscribers persist it and forward selected actions to operators.
type ActivityRecorded struct {
	Event
	UserID      common.UserID          `json:"user_id"`
	Action      storage.ActivityAction `json:"action"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewActivityRecorded builds an ActivityRecorded event stamped with a fresh correlation id
func NewActivityRecorded(userID common.UserID, action storage.ActivityAction, description string, metadata map[string]interface{}) ActivityRecorded {
	return ActivityRecorded{
		Event:       NewEvent(),
		UserID:      userID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
	}
}

// Event topics constants
const (
	TopicActivityRecorded = "activity.recorded"
)
