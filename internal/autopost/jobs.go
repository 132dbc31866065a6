package autopost

import (
	"context"
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessSummary reports what one scheduled-posts pass did for a user
type ProcessSummary struct {
	Processed int `json:"processed"`
	Posted    int `json:"posted"`
	Failed    int `json:"failed"`
	// Deferred posts were due but held back by the daily limit
	Deferred int `json:"deferred"`
}

// ProcessUserScheduledPosts publishes every due scheduled post of an active,
// auto-posting user. Each post succeeds or fails on its own; only errors that
// prevent the pass from starting are returned.
func (s *service) ProcessUserScheduledPosts(ctx context.Context, userID common.UserID) (ProcessSummary, error) {
	var summary ProcessSummary

	settings, err := s.store.GetBotSettings(ctx, userID)
	if err != nil {
		return summary, err
	}
	if settings == nil || !settings.IsActive || !settings.AutoPosting {
		return summary, nil
	}

	now := s.clock.Now()
	due, err := s.store.ListDuePosts(ctx, userID, now)
	if err != nil {
		return summary, err
	}
	if len(due) == 0 {
		return summary, nil
	}

	// A limit of zero means unlimited
	limit := int64(settings.DailyTweetLimit)
	var postedToday int64
	if limit > 0 {
		postedToday, err = s.store.CountPostedSince(ctx, userID, common.StartOfDay(now, s.location))
		if err != nil {
			return summary, err
		}
	}

	for i := range due {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if limit > 0 && postedToday >= limit {
			summary.Deferred++
			continue
		}

		summary.Processed++
		if _, err := s.publishPost(ctx, &due[i], true); err != nil {
			summary.Failed++
			continue
		}
		summary.Posted++
		postedToday++
	}

	s.logger.Info("Processed scheduled posts",
		zap.String("userID", userID.String()),
		zap.Int("posted", summary.Posted),
		zap.Int("failed", summary.Failed),
		zap.Int("deferred", summary.Deferred))
	return summary, nil
}

// GenerateContentForUser generates one post on a preferred topic and schedules
// it postingInterval hours from now. It returns nil when the user has AI
// generation off or the generator produced nothing.
func (s *service) GenerateContentForUser(ctx context.Context, userID common.UserID) (*storage.Post, error) {
	settings, err := s.store.GetBotSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil || !settings.IsActive || !settings.AIGeneration {
		return nil, nil
	}

	topic := s.pickTopic(settings.Topics())
	texts, err := s.generator.GenerateContent(ctx, topic, 1)
	if err != nil {
		return nil, err
	}
	s.metrics.AddGenerated(len(texts))
	if len(texts) == 0 {
		s.logger.Info("Generator returned no content", zap.String("userID", userID.String()), zap.String("topic", topic))
		return nil, nil
	}

	interval := settings.PostingInterval
	if interval <= 0 {
		interval = storage.DefaultPostingInterval
	}
	scheduledFor := s.clock.Now().Add(time.Duration(interval) * time.Hour)

	post := &storage.Post{
		UserID:        userID,
		Content:       texts[0],
		Status:        storage.PostStatusScheduled,
		ScheduledFor:  &scheduledFor,
		IsAIGenerated: true,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.recordActivity(userID, storage.ActionContentGenerated,
		"Scheduled AI-generated tweet about "+topic,
		map[string]interface{}{"topic": topic, "scheduledFor": scheduledFor.UTC().Format(time.RFC3339)})
	return post, nil
}

// RollupDailyAnalytics computes the snapshot for the local day containing day
// and upserts it. Running it twice for the same day replaces the first result.
func (s *service) RollupDailyAnalytics(ctx context.Context, userID common.UserID, day time.Time) (*storage.Analytics, error) {
	start := common.StartOfDay(day, s.location)
	end := start.AddDate(0, 0, 1)

	posts, err := s.store.ListPostedBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	row := &storage.Analytics{
		UserID:       userID,
		Date:         start,
		TweetsPosted: len(posts),
	}

	var impressions int
	for _, post := range posts {
		if post.TweetID == nil || *post.TweetID == "" {
			continue
		}
		m, err := s.publisher.GetPostMetrics(ctx, *post.TweetID)
		if err != nil {
			s.logger.Warn("Skipping post metrics",
				zap.String("userID", userID.String()),
				zap.Uint("postID", post.ID),
				zap.Error(err))
			continue
		}

		row.TotalLikes += m.Likes
		row.TotalRetweets += m.Shares
		row.TotalReplies += m.Replies
		impressions += m.Impressions

		if data, err := storage.MarshalJSONColumn(m); err == nil {
			if _, err := s.store.UpdatePost(ctx, post.ID, storage.PostUpdate{EngagementData: data}); err != nil {
				s.logger.Warn("Failed to store engagement data", zap.Uint("postID", post.ID), zap.Error(err))
			}
		}
	}
	row.EngagementRate = EngagementRate(row.TotalLikes+row.TotalRetweets+row.TotalReplies, impressions)

	previous, err := s.previousSnapshot(ctx, userID, start)
	if err != nil {
		return nil, err
	}

	account, err := s.publisher.GetAccountMetrics(ctx)
	switch {
	case err != nil:
		s.logger.Warn("Account metrics unavailable, carrying follower count forward",
			zap.String("userID", userID.String()),
			zap.Error(err))
		if previous != nil {
			row.FollowersTotal = previous.FollowersTotal
		}
	default:
		row.FollowersTotal = account.Followers
		if previous != nil {
			row.FollowersGained = account.Followers - previous.FollowersTotal
		}
	}

	if err := s.store.UpsertAnalytics(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Info("Daily analytics rolled up",
		zap.String("userID", userID.String()),
		zap.Time("date", row.Date),
		zap.Int("tweets", row.TweetsPosted),
		zap.Int("engagement_rate", row.EngagementRate))
	return row, nil
}

// previousSnapshot returns the newest snapshot dated before the day starting at dayStart
func (s *service) previousSnapshot(ctx context.Context, userID common.UserID, dayStart time.Time) (*storage.Analytics, error) {
	rows, err := s.store.GetAnalytics(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	day := storage.DayOf(dayStart)
	for i := range rows {
		if rows[i].Date.Before(day) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// EngagementRate returns interactions per impression as a percentage scaled by
// 100 and rounded half away from zero, so 12.34% is 1234. Zero impressions give 0.
func EngagementRate(interactions, impressions int) int {
	if impressions <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(interactions)).
		Mul(decimal.NewFromInt(10000)).
		Div(decimal.NewFromInt(int64(impressions))).
		Round(0)
	return int(rate.IntPart())
}
