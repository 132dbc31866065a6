package autopost

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/storage"

	"go.uber.org/zap"
)

// descriptionLength is how much post content an activity description quotes
const descriptionLength = 50

// CreatePostRequest is the body of POST /api/tweets
type CreatePostRequest struct {
	Content       string     `json:"content" binding:"required,min=1,max=280"`
	ScheduledFor  *time.Time `json:"scheduledFor"`
	IsAIGenerated bool       `json:"isAiGenerated"`
	PostNow       bool       `json:"postNow"`
}

// GenerateRequest is the body of POST /api/content/generate
type GenerateRequest struct {
	Topic string `json:"topic" binding:"max=100"`
	Count int    `json:"count" binding:"omitempty,min=1,max=10"`
}

// ContentRequest is the body of the enhance and hashtag endpoints
type ContentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=280"`
}

func (s *service) ListPosts(ctx context.Context, userID common.UserID, limit int) ([]storage.Post, error) {
	return s.store.ListPosts(ctx, userID, limit)
}

func (s *service) ListScheduledPosts(ctx context.Context, userID common.UserID) ([]storage.Post, error) {
	return s.store.ListScheduledPosts(ctx, userID, s.clock.Now())
}

// CreatePost stores a draft, or a scheduled post when ScheduledFor is set. With
// PostNow it is published immediately; a publish failure leaves the row failed
// and is returned.
func (s *service) CreatePost(ctx context.Context, userID common.UserID, req CreatePostRequest) (*storage.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, common.ValidationError{Field: "content", Message: "content is required"}
	}

	post := &storage.Post{
		UserID:        userID,
		Content:       content,
		Status:        storage.PostStatusDraft,
		IsAIGenerated: req.IsAIGenerated,
	}
	if req.ScheduledFor != nil {
		post.Status = storage.PostStatusScheduled
		post.ScheduledFor = req.ScheduledFor
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("Post created",
		zap.String("userID", userID.String()),
		zap.Uint("postID", post.ID),
		zap.String("status", post.Status.String()))

	if !req.PostNow {
		return post, nil
	}
	return s.publishPost(ctx, post, false)
}

// DeletePost removes one of the caller's posts. A post owned by someone else is
// reported as not found and left untouched.
func (s *service) DeletePost(ctx context.Context, userID common.UserID, postID uint) error {
	post, err := s.store.GetPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	s.recordActivity(userID, storage.ActionTweetDeleted,
		"Deleted tweet: "+common.Truncate(post.Content, descriptionLength),
		map[string]interface{}{"tweetId": post.ID})
	return nil
}

// GenerateDrafts asks the generator for posts and stores each one as an AI draft
func (s *service) GenerateDrafts(ctx context.Context, userID common.UserID, req GenerateRequest) ([]storage.Post, error) {
	count := req.Count
	if count <= 0 {
		count = DefaultGenerateCount
	}
	if count > MaxGenerateCount {
		return nil, common.ValidationError{Field: "count", Message: fmt.Sprintf("at most %d posts per request", MaxGenerateCount)}
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		settings, err := s.store.GetBotSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		var topics []string
		if settings != nil {
			topics = settings.Topics()
		}
		topic = s.pickTopic(topics)
	}

	texts, err := s.generator.GenerateContent(ctx, topic, count)
	if err != nil {
		return nil, err
	}
	s.metrics.AddGenerated(len(texts))

	posts := make([]storage.Post, 0, len(texts))
	for _, text := range texts {
		post := storage.Post{
			UserID:        userID,
			Content:       text,
			Status:        storage.PostStatusDraft,
			IsAIGenerated: true,
		}
		if err := s.store.CreatePost(ctx, &post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	s.recordActivity(userID, storage.ActionContentGenerated,
		fmt.Sprintf("Generated %d tweet(s) with AI", len(posts)),
		map[string]interface{}{"topic": topic, "count": len(posts)})
	return posts, nil
}

func (s *service) EnhanceContent(ctx context.Context, content string) (string, error) {
	return s.generator.EnhanceContent(ctx, content)
}

func (s *service) SuggestHashtags(ctx context.Context, content string) ([]string, error) {
	return s.generator.GenerateHashtags(ctx, content)
}

// publishPost sends post to the platform and records the outcome on the row and
// in the activity log. It returns the updated row, or the publish error after
// the row has been marked failed.
func (s *service) publishPost(ctx context.Context, post *storage.Post, scheduled bool) (*storage.Post, error) {
	tweetID, err := s.publisher.Publish(ctx, post.Content)
	s.metrics.IncPublished(err == nil)

	if err != nil {
		s.logger.Error("Failed to publish post",
			zap.String("userID", post.UserID.String()),
			zap.Uint("postID", post.ID),
			zap.Error(err))

		failed := storage.PostStatusFailed
		if _, updateErr := s.store.UpdatePost(ctx, post.ID, storage.PostUpdate{Status: &failed}); updateErr != nil {
			s.logger.Error("Failed to mark post as failed",
				zap.Uint("postID", post.ID),
				zap.Error(updateErr))
		}

		s.recordActivity(post.UserID, storage.ActionTweetFailed,
			"Failed to post tweet: "+common.Truncate(post.Content, descriptionLength),
			map[string]interface{}{"postId": post.ID, "error": err.Error()})
		return nil, err
	}

	posted := storage.PostStatusPosted
	postedAt := s.clock.Now()
	updated, err := s.store.UpdatePost(ctx, post.ID, storage.PostUpdate{
		Status:   &posted,
		TweetID:  &tweetID,
		PostedAt: &postedAt,
	})
	if err != nil {
		// The post is live but the row still reads scheduled, so a later cycle may publish it again
		s.logger.Error("Published post but failed to record it",
			zap.String("userID", post.UserID.String()),
			zap.Uint("postID", post.ID),
			zap.String("tweetID", tweetID),
			zap.Error(err))
		s.recordActivity(post.UserID, storage.ActionTweetPosted,
			"Posted tweet: "+common.Truncate(post.Content, descriptionLength),
			map[string]interface{}{"tweetId": tweetID, "postId": post.ID, "recordError": err.Error()})
		return nil, err
	}

	metadata := map[string]interface{}{"tweetId": tweetID}
	if scheduled {
		metadata["scheduled"] = true
	} else {
		metadata["content"] = post.Content
	}
	s.recordActivity(post.UserID, storage.ActionTweetPosted,
		"Posted tweet: "+common.Truncate(post.Content, descriptionLength), metadata)

	return updated, nil
}
