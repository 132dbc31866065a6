// Package activity persists audit events published on the event bus.
package activity

import (
	"context"
	"time"

	"autoposter-api/internal/events"
	"autoposter-api/internal/storage"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const writeTimeout = 5 * time.Second

// Recorder writes every ActivityRecorded event to the activity log. Failures
// are logged and never reach the publisher.
type Recorder struct {
	store  storage.Store
	logger *zap.Logger
}

// NewRecorder creates a Recorder
func NewRecorder(store storage.Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Subscribe registers the recorder on the bus
func (r *Recorder) Subscribe(bus events.EventBus) error {
	return bus.Subscribe(events.TopicActivityRecorded, r.Handle)
}

// Handle persists one event
func (r *Recorder) Handle(event events.ActivityRecorded) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var metadata datatypes.JSON
	if len(event.Metadata) > 0 {
		encoded, err := storage.MarshalJSONColumn(event.Metadata)
		if err != nil {
			r.logger.Warn("Dropping unencodable activity metadata",
				zap.String("correlation_id", event.CorrelationID),
				zap.Error(err))
		} else {
			metadata = encoded
		}
	}

	entry := &storage.ActivityLog{
		UserID:      event.UserID,
		Action:      event.Action,
		Description: event.Description,
		Metadata:    metadata,
	}
	if err := r.store.LogActivity(ctx, entry); err != nil {
		r.logger.Error("Failed to record activity",
			zap.String("correlation_id", event.CorrelationID),
			zap.String("user_id", event.UserID.String()),
			zap.String("action", string(event.Action)),
			zap.Error(err))
		return
	}

	r.logger.Debug("Activity recorded",
		zap.String("correlation_id", event.CorrelationID),
		zap.String("action", string(event.Action)))
}
