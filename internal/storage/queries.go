package storage

import (
	"errors"
	"time"

	"autoposter-api/internal/common"

	"gorm.io/gorm"
)

// dashboardStats runs the dashboard aggregation on an already context-bound db.
func dashboardStats(db *gorm.DB, userID common.UserID, dayStart time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	// A new session makes the shared conditions safe to reuse for both counts.
	posted := db.Model(&Post{}).Where("user_id = ? AND status = ?", userID, PostStatusPosted).Session(&gorm.Session{})

	if err := posted.Count(&stats.TotalTweets).Error; err != nil {
		return nil, err
	}

	if err := posted.
		Where("posted_at >= ?", dayStart.UTC()).
		Count(&stats.TodayTweets).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&Post{}).
		Where("user_id = ? AND status = ?", userID, PostStatusScheduled).
		Count(&stats.ScheduledTweets).Error; err != nil {
		return nil, err
	}

	var latest Analytics
	err := db.Where("user_id = ?", userID).Order("date DESC").First(&latest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, err
	default:
		stats.EngagementRate = latest.EngagementRate
		stats.FollowersGained = latest.FollowersGained
	}

	return stats, nil
}
