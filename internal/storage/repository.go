package storage

import (
	"context"
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/user"
)

// Default page sizes for list operations
const (
	DefaultPostLimit     = 50
	DefaultActivityLimit = 20
)

// Store is the relational store behind the API and the scheduler. Callers are
// responsible for ownership checks on the operations that take a bare post id.
type Store interface {
	// Users
	GetUser(ctx context.Context, id common.UserID) (*user.User, error)
	UpsertUser(ctx context.Context, u *user.User) (*user.User, error)

	// Posts
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, userID common.UserID, id uint) (*Post, error)
	ListPosts(ctx context.Context, userID common.UserID, limit int) ([]Post, error)
	ListScheduledPosts(ctx context.Context, userID common.UserID, now time.Time) ([]Post, error)
	ListDuePosts(ctx context.Context, userID common.UserID, now time.Time) ([]Post, error)
	ListPostedBetween(ctx context.Context, userID common.UserID, from, to time.Time) ([]Post, error)
	CountPostedSince(ctx context.Context, userID common.UserID, since time.Time) (int64, error)
	UpdatePost(ctx context.Context, id uint, update PostUpdate) (*Post, error)
	DeletePost(ctx context.Context, id uint) error

	// Bot settings
	GetBotSettings(ctx context.Context, userID common.UserID) (*BotSettings, error)
	UpsertBotSettings(ctx context.Context, userID common.UserID, patch BotSettingsPatch) (*BotSettings, error)
	ListActiveBotSettings(ctx context.Context) ([]BotSettings, error)

	// Analytics
	GetAnalytics(ctx context.Context, userID common.UserID, since *time.Time) ([]Analytics, error)
	GetLatestAnalytics(ctx context.Context, userID common.UserID) (*Analytics, error)
	UpsertAnalytics(ctx context.Context, analytics *Analytics) error

	// Activity log
	LogActivity(ctx context.Context, entry *ActivityLog) error
	ListActivity(ctx context.Context, userID common.UserID, limit int) ([]ActivityLog, error)

	// Dashboard
	GetDashboardStats(ctx context.Context, userID common.UserID, dayStart time.Time) (*DashboardStats, error)

	Ping(ctx context.Context) error
}
