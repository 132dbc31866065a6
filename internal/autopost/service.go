// Package autopost holds the business operations behind the HTTP API and the
// per-user work the scheduler runs.
package autopost

import (
	"context"
	"math/rand"
	"time"

	"autoposter-api/internal/auth"
	"autoposter-api/internal/common"
	"autoposter-api/internal/events"
	"autoposter-api/internal/llm"
	"autoposter-api/internal/metrics"
	"autoposter-api/internal/social"
	"autoposter-api/internal/storage"
	"autoposter-api/internal/user"

	"go.uber.org/zap"
)

// Defaults for optional request values
const (
	DefaultAnalyticsDays = 7
	DefaultGenerateCount = 1
	MaxGenerateCount     = 10
)

// Service defines the operations available to the API and the scheduler.
// Every user-scoped method takes the caller's id explicitly.
type Service interface {
	CurrentUser(ctx context.Context, identity auth.Identity) (*user.User, error)
	Dashboard(ctx context.Context, userID common.UserID) (*storage.DashboardStats, error)

	GetSettings(ctx context.Context, userID common.UserID) (*storage.BotSettings, error)
	UpdateSettings(ctx context.Context, userID common.UserID, patch storage.BotSettingsPatch) (*storage.BotSettings, error)
	PauseBot(ctx context.Context, userID common.UserID) error
	ResumeBot(ctx context.Context, userID common.UserID) error

	ListPosts(ctx context.Context, userID common.UserID, limit int) ([]storage.Post, error)
	ListScheduledPosts(ctx context.Context, userID common.UserID) ([]storage.Post, error)
	CreatePost(ctx context.Context, userID common.UserID, req CreatePostRequest) (*storage.Post, error)
	DeletePost(ctx context.Context, userID common.UserID, postID uint) error

	GenerateDrafts(ctx context.Context, userID common.UserID, req GenerateRequest) ([]storage.Post, error)
	EnhanceContent(ctx context.Context, content string) (string, error)
	SuggestHashtags(ctx context.Context, content string) ([]string, error)

	Analytics(ctx context.Context, userID common.UserID, days int) ([]storage.Analytics, error)
	Activity(ctx context.Context, userID common.UserID, limit int) ([]storage.ActivityLog, error)

	SocialConnected(ctx context.Context) bool
	AccountMetrics(ctx context.Context) (social.AccountMetrics, error)

	ProcessUserScheduledPosts(ctx context.Context, userID common.UserID) (ProcessSummary, error)
	GenerateContentForUser(ctx context.Context, userID common.UserID) (*storage.Post, error)
	RollupDailyAnalytics(ctx context.Context, userID common.UserID, day time.Time) (*storage.Analytics, error)
}

// Dependencies are the collaborators NewService wires together
type Dependencies struct {
	Store     storage.Store
	Generator llm.ContentGenerator
	Publisher social.Publisher
	EventBus  events.EventBus
	Clock     common.Clock
	Location  *time.Location
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// service implements the Service interface
type service struct {
	store     storage.Store
	generator llm.ContentGenerator
	publisher social.Publisher
	eventBus  events.EventBus
	clock     common.Clock
	location  *time.Location
	metrics   *metrics.Metrics
	logger    *zap.Logger
	intn      func(int) int
}

// NewService creates a new instance of Service
func NewService(deps Dependencies) Service {
	clock := deps.Clock
	if clock == nil {
		clock = common.NewRealClock()
	}
	location := deps.Location
	if location == nil {
		location = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		store:     deps.Store,
		generator: deps.Generator,
		publisher: deps.Publisher,
		eventBus:  deps.EventBus,
		clock:     clock,
		location:  location,
		metrics:   deps.Metrics,
		logger:    logger,
		intn:      rand.Intn,
	}
}

// CurrentUser stores the latest identity claims and returns the user record
func (s *service) CurrentUser(ctx context.Context, identity auth.Identity) (*user.User, error) {
	return s.store.UpsertUser(ctx, identity.User())
}

// Dashboard aggregates the counters for the caller's current local day
func (s *service) Dashboard(ctx context.Context, userID common.UserID) (*storage.DashboardStats, error) {
	dayStart := common.StartOfDay(s.clock.Now(), s.location)
	return s.store.GetDashboardStats(ctx, userID, dayStart)
}

// GetSettings returns the user's settings, creating the defaults on first access
func (s *service) GetSettings(ctx context.Context, userID common.UserID) (*storage.BotSettings, error) {
	settings, err := s.store.GetBotSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	s.logger.Info("Creating default bot settings", zap.String("userID", userID.String()))
	return s.store.UpsertBotSettings(ctx, userID, storage.BotSettingsPatch{})
}

func (s *service) UpdateSettings(ctx context.Context, userID common.UserID, patch storage.BotSettingsPatch) (*storage.BotSettings, error) {
	settings, err := s.store.UpsertBotSettings(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	s.recordActivity(userID, storage.ActionSettingsUpdated, "Bot settings were updated",
		map[string]interface{}{"changes": patch.Changes()})
	return settings, nil
}

func (s *service) PauseBot(ctx context.Context, userID common.UserID) error {
	return s.setActive(ctx, userID, false)
}

func (s *service) ResumeBot(ctx context.Context, userID common.UserID) error {
	return s.setActive(ctx, userID, true)
}

func (s *service) setActive(ctx context.Context, userID common.UserID, active bool) error {
	if _, err := s.store.UpsertBotSettings(ctx, userID, storage.BotSettingsPatch{IsActive: &active}); err != nil {
		return err
	}

	if active {
		s.recordActivity(userID, storage.ActionBotResumed, "Bot resumed", nil)
	} else {
		s.recordActivity(userID, storage.ActionBotPaused, "Bot paused", nil)
	}
	return nil
}

// Analytics returns the snapshots from the start of the day `days` days ago
func (s *service) Analytics(ctx context.Context, userID common.UserID, days int) ([]storage.Analytics, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	since := common.StartOfDay(s.clock.Now(), s.location).AddDate(0, 0, -days)
	return s.store.GetAnalytics(ctx, userID, &since)
}

func (s *service) Activity(ctx context.Context, userID common.UserID, limit int) ([]storage.ActivityLog, error) {
	return s.store.ListActivity(ctx, userID, limit)
}

func (s *service) SocialConnected(ctx context.Context) bool {
	return s.publisher.VerifyCredentials(ctx)
}

func (s *service) AccountMetrics(ctx context.Context) (social.AccountMetrics, error) {
	return s.publisher.GetAccountMetrics(ctx)
}

// recordActivity publishes an audit event. Delivery is best-effort and never
// fails the caller.
func (s *service) recordActivity(userID common.UserID, action storage.ActivityAction, description string, metadata map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	event := events.NewActivityRecorded(userID, action, description, metadata)
	if err := s.eventBus.Publish(events.TopicActivityRecorded, event); err != nil {
		s.logger.Warn("Failed to publish activity",
			zap.String("userID", userID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// pickTopic chooses one of topics at random, or the fallback topic when there are none
func (s *service) pickTopic(topics []string) string {
	if len(topics) == 0 {
		return storage.FallbackTopic
	}
	return topics[s.intn(len(topics))]
}
