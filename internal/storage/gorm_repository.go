package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements the Store interface using GORM
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new GORM-based store
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	return &gormStore{
		db:     db,
		logger: logger,
	}
}

func (r *gormStore) now() time.Time {
	if r.db.Config != nil && r.db.NowFunc != nil {
		return r.db.NowFunc()
	}
	return time.Now().UTC()
}

// User operations

// GetUser returns nil without error when the user does not exist
func (r *gormStore) GetUser(ctx context.Context, id common.UserID) (*user.User, error) {
	r.logger.Debug("Getting user", zap.String("userID", id.String()))

	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapRepositoryError(err, "get user")
	}
	return &u, nil
}

// UpsertUser inserts the user or overwrites its mutable fields
func (r *gormStore) UpsertUser(ctx context.Context, u *user.User) (*user.User, error) {
	r.logger.Debug("Upserting user", zap.String("userID", u.ID.String()))

	if !u.ID.IsValid() {
		return nil, common.ValidationError{Field: "id", Message: "user id is required"}
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(user.MutableColumns()),
		}).
		Create(u).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "upsert user")
	}

	stored, err := r.GetUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, common.NotFoundError{Resource: "User", ID: u.ID.String()}
	}
	return stored, nil
}

// Post operations

// CreatePost inserts the post and fills in its generated id and timestamps
func (r *gormStore) CreatePost(ctx context.Context, post *Post) error {
	r.logger.Debug("Creating post", zap.String("userID", post.UserID.String()), zap.String("status", post.Status.String()))

	if !post.UserID.IsValid() {
		return common.ValidationError{Field: "userId", Message: "owner is required"}
	}
	if post.Status == "" {
		post.Status = PostStatusDraft
	}
	if !post.Status.IsValid() {
		return common.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", post.Status)}
	}
	if post.ScheduledFor != nil {
		utc := post.ScheduledFor.UTC()
		post.ScheduledFor = &utc
	}

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return WrapRepositoryError(err, "create post")
	}

	r.logger.Info("Post created successfully", zap.Uint("postID", post.ID))
	return nil
}

// GetPost returns the post only when it belongs to userID
func (r *gormStore) GetPost(ctx context.Context, userID common.UserID, id uint) (*Post, error) {
	var post Post
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundError{Resource: "Post", ID: fmt.Sprint(id)}
		}
		return nil, WrapRepositoryError(err, "get post")
	}
	return &post, nil
}

// ListPosts returns the user's posts, newest first
func (r *gormStore) ListPosts(ctx context.Context, userID common.UserID, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultPostLimit
	}

	var posts []Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list posts")
	}
	return posts, nil
}

// ListScheduledPosts returns scheduled posts that are due at or after now, earliest first
func (r *gormStore) ListScheduledPosts(ctx context.Context, userID common.UserID, now time.Time) ([]Post, error) {
	var posts []Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND scheduled_for >= ?", userID, PostStatusScheduled, now.UTC()).
		Order("scheduled_for ASC").Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list scheduled posts")
	}
	return posts, nil
}

// ListDuePosts returns scheduled posts whose time has come, earliest first
func (r *gormStore) ListDuePosts(ctx context.Context, userID common.UserID, now time.Time) ([]Post, error) {
	var posts []Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND scheduled_for <= ?", userID, PostStatusScheduled, now.UTC()).
		Order("scheduled_for ASC").Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list due posts")
	}
	return posts, nil
}

// ListPostedBetween returns posts published in [from, to)
func (r *gormStore) ListPostedBetween(ctx context.Context, userID common.UserID, from, to time.Time) ([]Post, error) {
	var posts []Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND posted_at >= ? AND posted_at < ?", userID, PostStatusPosted, from.UTC(), to.UTC()).
		Order("posted_at ASC").
		Find(&posts).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list posted between")
	}
	return posts, nil
}

// CountPostedSince counts posts published at or after since
func (r *gormStore) CountPostedSince(ctx context.Context, userID common.UserID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Post{}).
		Where("user_id = ? AND status = ? AND posted_at >= ?", userID, PostStatusPosted, since.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, WrapRepositoryError(err, "count posted since")
	}
	return count, nil
}

// UpdatePost merges the non-nil fields of update and returns the stored row
func (r *gormStore) UpdatePost(ctx context.Context, id uint, update PostUpdate) (*Post, error) {
	r.logger.Debug("Updating post", zap.Uint("postID", id))

	if update.Status != nil && !update.Status.IsValid() {
		return nil, common.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *update.Status)}
	}

	cols := update.columns()
	cols["updated_at"] = r.now()

	result := r.db.WithContext(ctx).Model(&Post{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return nil, WrapRepositoryError(result.Error, "update post")
	}
	if result.RowsAffected == 0 {
		return nil, common.NotFoundError{Resource: "Post", ID: fmt.Sprint(id)}
	}

	var post Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, WrapRepositoryError(err, "reload post")
	}

	r.logger.Info("Post updated successfully", zap.Uint("postID", id))
	return &post, nil
}

// DeletePost removes the post unconditionally
func (r *gormStore) DeletePost(ctx context.Context, id uint) error {
	r.logger.Debug("Deleting post", zap.Uint("postID", id))

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Post{})
	if result.Error != nil {
		return WrapRepositoryError(result.Error, "delete post")
	}
	if result.RowsAffected == 0 {
		return common.NotFoundError{Resource: "Post", ID: fmt.Sprint(id)}
	}

	r.logger.Info("Post deleted successfully", zap.Uint("postID", id))
	return nil
}

// Bot settings operations

// GetBotSettings returns nil without error when the user has no settings row
func (r *gormStore) GetBotSettings(ctx context.Context, userID common.UserID) (*BotSettings, error) {
	var settings BotSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapRepositoryError(err, "get bot settings")
	}
	return &settings, nil
}

// UpsertBotSettings inserts defaults overlaid with patch, or updates only the
// patched columns when the user already has a row. It is a single statement.
func (r *gormStore) UpsertBotSettings(ctx context.Context, userID common.UserID, patch BotSettingsPatch) (*BotSettings, error) {
	r.logger.Debug("Upserting bot settings", zap.String("userID", userID.String()))

	if !userID.IsValid() {
		return nil, common.ValidationError{Field: "userId", Message: "owner is required"}
	}

	settings := DefaultBotSettings(userID)
	columns := append(patch.applyTo(settings), "updated_at")

	now := r.now()
	settings.CreatedAt = now
	settings.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(settings).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "upsert bot settings")
	}

	stored, err := r.GetBotSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, common.NotFoundError{Resource: "BotSettings", ID: userID.String()}
	}

	r.logger.Info("Bot settings saved", zap.String("userID", userID.String()), zap.Strings("columns", columns))
	return stored, nil
}

// ListActiveBotSettings returns the settings of every user whose bot is active
func (r *gormStore) ListActiveBotSettings(ctx context.Context) ([]BotSettings, error) {
	var settings []BotSettings
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("user_id ASC").
		Find(&settings).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list active bot settings")
	}
	return settings, nil
}

// Analytics operations

// GetAnalytics returns snapshots newest first, optionally from since onwards
func (r *gormStore) GetAnalytics(ctx context.Context, userID common.UserID, since *time.Time) ([]Analytics, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("date >= ?", DayOf(*since))
	}

	var rows []Analytics
	if err := query.Order("date DESC").Find(&rows).Error; err != nil {
		return nil, WrapRepositoryError(err, "get analytics")
	}
	return rows, nil
}

// GetLatestAnalytics returns the most recent snapshot, or nil when there is none
func (r *gormStore) GetLatestAnalytics(ctx context.Context, userID common.UserID) (*Analytics, error) {
	var row Analytics
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapRepositoryError(err, "get latest analytics")
	}
	return &row, nil
}

// UpsertAnalytics replaces the snapshot for (user, day)
func (r *gormStore) UpsertAnalytics(ctx context.Context, analytics *Analytics) error {
	r.logger.Debug("Upserting analytics",
		zap.String("userID", analytics.UserID.String()),
		zap.Time("date", analytics.Date))

	if !analytics.UserID.IsValid() {
		return common.ValidationError{Field: "userId", Message: "owner is required"}
	}
	analytics.Date = DayOf(analytics.Date)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tweets_posted", "total_likes", "total_retweets", "total_replies",
				"followers_gained", "followers_total", "engagement_rate",
			}),
		}).
		Create(analytics).Error
	if err != nil {
		return WrapRepositoryError(err, "upsert analytics")
	}
	return nil
}

// Activity log operations

// LogActivity appends an audit entry
func (r *gormStore) LogActivity(ctx context.Context, entry *ActivityLog) error {
	if !entry.UserID.IsValid() {
		return common.ValidationError{Field: "userId", Message: "owner is required"}
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return WrapRepositoryError(err, "log activity")
	}
	return nil
}

// ListActivity returns the user's audit entries, newest first
func (r *gormStore) ListActivity(ctx context.Context, userID common.UserID, limit int) ([]ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	var entries []ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, WrapRepositoryError(err, "list activity")
	}
	return entries, nil
}

// GetDashboardStats aggregates the dashboard counters; dayStart is the start of
// the caller's current local day.
func (r *gormStore) GetDashboardStats(ctx context.Context, userID common.UserID, dayStart time.Time) (*DashboardStats, error) {
	stats, err := dashboardStats(r.db.WithContext(ctx), userID, dayStart)
	if err != nil {
		return nil, WrapRepositoryError(err, "get dashboard stats")
	}
	return stats, nil
}

func (r *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return WrapRepositoryError(err, "ping")
	}
	return WrapRepositoryError(sqlDB.PingContext(ctx), "ping")
}
