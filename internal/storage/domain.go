package storage

import (
	"encoding/json"
	"time"

	"autoposter-api/internal/common"

	"gorm.io/datatypes"
)

// PostStatus represents the publication state of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPosted    PostStatus = "posted"
	PostStatusFailed    PostStatus = "failed"
)

// String returns the string representation of PostStatus
func (s PostStatus) String() string {
	return string(s)
}

// IsValid checks if the PostStatus is valid
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPosted, PostStatusFailed:
		return true
	default:
		return false
	}
}

// ActivityAction tags an activity log entry
type ActivityAction string

const (
	ActionSettingsUpdated  ActivityAction = "settings_updated"
	ActionTweetPosted      ActivityAction = "tweet_posted"
	ActionTweetFailed      ActivityAction = "tweet_failed"
	ActionTweetDeleted     ActivityAction = "tweet_deleted"
	ActionContentGenerated ActivityAction = "content_generated"
	ActionBotPaused        ActivityAction = "bot_paused"
	ActionBotResumed       ActivityAction = "bot_resumed"
)

// Post is a unit of short text destined for, or already published to, the
// social platform. The table keeps its historical "tweets" name.
type Post struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Content        string         `json:"content" gorm:"type:text;not null"`
	TweetID        *string        `json:"tweetId" gorm:"column:tweet_id;type:varchar(64)"`
	ScheduledFor   *time.Time     `json:"scheduledFor"`
	PostedAt       *time.Time     `json:"postedAt"`
	Status         PostStatus     `json:"status" gorm:"type:varchar(20);not null"`
	UserID         common.UserID  `json:"userId" gorm:"type:varchar(255);not null;index"`
	IsAIGenerated  bool           `json:"isAiGenerated" gorm:"column:is_ai_generated;not null"`
	EngagementData datatypes.JSON `json:"engagementData"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Post model
func (Post) TableName() string {
	return "tweets"
}

// PostUpdate carries the fields UpdatePost merges; nil fields are left untouched.
type PostUpdate struct {
	Content        *string
	Status         *PostStatus
	TweetID        *string
	ScheduledFor   *time.Time
	PostedAt       *time.Time
	EngagementData datatypes.JSON
}

func (u PostUpdate) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Content != nil {
		cols["content"] = *u.Content
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.TweetID != nil {
		cols["tweet_id"] = *u.TweetID
	}
	if u.ScheduledFor != nil {
		cols["scheduled_for"] = u.ScheduledFor.UTC()
	}
	if u.PostedAt != nil {
		cols["posted_at"] = u.PostedAt.UTC()
	}
	if u.EngagementData != nil {
		cols["engagement_data"] = u.EngagementData
	}
	return cols
}

// Default bot settings applied when a user has no row yet
const (
	DefaultDailyTweetLimit = 8
	DefaultPostingInterval = 3
	FallbackTopic          = "motivation"
)

// DefaultTopics is the preferred topic list given to new users
var DefaultTopics = []string{"motivation", "success", "inspiration", "productivity"}

// BotSettings is the per-user automation configuration. At most one row per user.
type BotSettings struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          common.UserID  `json:"userId" gorm:"type:varchar(255);not null;uniqueIndex"`
	IsActive        bool           `json:"isActive" gorm:"not null"`
	AutoPosting     bool           `json:"autoPosting" gorm:"not null"`
	AIGeneration    bool           `json:"aiGeneration" gorm:"column:ai_generation;not null"`
	DailyTweetLimit int            `json:"dailyTweetLimit" gorm:"not null"`
	PostingInterval int            `json:"postingInterval" gorm:"not null"`
	PreferredTopics datatypes.JSON `json:"preferredTopics"`
	CreatedAt       time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the BotSettings model
func (BotSettings) TableName() string {
	return "bot_settings"
}

// Topics decodes PreferredTopics; malformed or empty JSON yields nil.
func (s *BotSettings) Topics() []string {
	if len(s.PreferredTopics) == 0 {
		return nil
	}
	var topics []string
	if err := json.Unmarshal(s.PreferredTopics, &topics); err != nil {
		return nil
	}
	return topics
}

// DefaultBotSettings returns the settings a user starts with.
func DefaultBotSettings(userID common.UserID) *BotSettings {
	return &BotSettings{
		UserID:          userID,
		IsActive:        true,
		AutoPosting:     true,
		AIGeneration:    true,
		DailyTweetLimit: DefaultDailyTweetLimit,
		PostingInterval: DefaultPostingInterval,
		PreferredTopics: mustJSON(DefaultTopics),
	}
}

// BotSettingsPatch is a partial settings change. Nil fields keep their stored value.
type BotSettingsPatch struct {
	IsActive        *bool    `json:"isActive"`
	AutoPosting     *bool    `json:"autoPosting"`
	AIGeneration    *bool    `json:"aiGeneration"`
	DailyTweetLimit *int     `json:"dailyTweetLimit" binding:"omitempty,min=0,max=100"`
	PostingInterval *int     `json:"postingInterval" binding:"omitempty,min=1,max=168"`
	PreferredTopics []string `json:"preferredTopics" binding:"omitempty,max=25,dive,required,max=100"`
}

// IsEmpty reports whether the patch changes nothing
func (p BotSettingsPatch) IsEmpty() bool {
	return len(p.assignments()) == 0
}

// Changes returns the provided fields keyed by their JSON name, for audit metadata.
func (p BotSettingsPatch) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if p.IsActive != nil {
		changes["isActive"] = *p.IsActive
	}
	if p.AutoPosting != nil {
		changes["autoPosting"] = *p.AutoPosting
	}
	if p.AIGeneration != nil {
		changes["aiGeneration"] = *p.AIGeneration
	}
	if p.DailyTweetLimit != nil {
		changes["dailyTweetLimit"] = *p.DailyTweetLimit
	}
	if p.PostingInterval != nil {
		changes["postingInterval"] = *p.PostingInterval
	}
	if p.PreferredTopics != nil {
		changes["preferredTopics"] = p.PreferredTopics
	}
	return changes
}

// applyTo overlays the patch on s and returns the column names it touched.
func (p BotSettingsPatch) applyTo(s *BotSettings) []string {
	var columns []string
	for column, apply := range p.assignments() {
		apply(s)
		columns = append(columns, column)
	}
	return columns
}

func (p BotSettingsPatch) assignments() map[string]func(*BotSettings) {
	a := make(map[string]func(*BotSettings))
	if p.IsActive != nil {
		a["is_active"] = func(s *BotSettings) { s.IsActive = *p.IsActive }
	}
	if p.AutoPosting != nil {
		a["auto_posting"] = func(s *BotSettings) { s.AutoPosting = *p.AutoPosting }
	}
	if p.AIGeneration != nil {
		a["ai_generation"] = func(s *BotSettings) { s.AIGeneration = *p.AIGeneration }
	}
	if p.DailyTweetLimit != nil {
		a["daily_tweet_limit"] = func(s *BotSettings) { s.DailyTweetLimit = *p.DailyTweetLimit }
	}
	if p.PostingInterval != nil {
		a["posting_interval"] = func(s *BotSettings) { s.PostingInterval = *p.PostingInterval }
	}
	if p.PreferredTopics != nil {
		a["preferred_topics"] = func(s *BotSettings) { s.PreferredTopics = mustJSON(p.PreferredTopics) }
	}
	return a
}

// Analytics is a per-user, per-day engagement snapshot. Unique on (user_id, date).
type Analytics struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	UserID          common.UserID `json:"userId" gorm:"type:varchar(255);not null;uniqueIndex:idx_analytics_user_date"`
	Date            time.Time     `json:"date" gorm:"not null;uniqueIndex:idx_analytics_user_date"`
	TweetsPosted    int           `json:"tweetsPosted" gorm:"not null"`
	TotalLikes      int           `json:"totalLikes" gorm:"not null"`
	TotalRetweets   int           `json:"totalRetweets" gorm:"not null"`
	TotalReplies    int           `json:"totalReplies" gorm:"not null"`
	FollowersGained int           `json:"followersGained" gorm:"not null"`
	FollowersTotal  int           `json:"followersTotal" gorm:"not null"`
	// EngagementRate is a percentage multiplied by 100 (1234 means 12.34%).
	EngagementRate int       `json:"engagementRate" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName returns the table name for the Analytics model
func (Analytics) TableName() string {
	return "analytics"
}

// ActivityLog is an append-only audit entry
type ActivityLog struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      common.UserID  `json:"userId" gorm:"type:varchar(255);not null"`
	Action      ActivityAction `json:"action" gorm:"type:varchar(50);not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName returns the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_log"
}

// DashboardStats aggregates the dashboard counters for one user
type DashboardStats struct {
	TotalTweets     int64 `json:"totalTweets"`
	TodayTweets     int64 `json:"todayTweets"`
	ScheduledTweets int64 `json:"scheduledTweets"`
	EngagementRate  int   `json:"engagementRate"`
	FollowersGained int   `json:"followersGained"`
}

// DayOf maps the calendar date of t, in t's own location, to UTC midnight.
// Analytics rows are keyed by this value.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MarshalJSONColumn encodes v for a datatypes.JSON column.
func MarshalJSONColumn(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := MarshalJSONColumn(v)
	if err != nil {
		panic(err)
	}
	return b
}
