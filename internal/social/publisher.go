// Package social publishes posts to the X (Twitter) API v2 and reads their metrics.
package social

import "context"

// PostMetrics are the public counters of one published post
type PostMetrics struct {
	Likes       int `json:"likes"`
	Shares      int `json:"shares"`
	Replies     int `json:"replies"`
	Impressions int `json:"impressions"`
}

// AccountMetrics are the public counters of the connected account
type AccountMetrics struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
	PostCount int `json:"postCount"`
}

// Publisher is the connected posting account
type Publisher interface {
	// Publish posts text and returns the platform's id for it
	Publish(ctx context.Context, text string) (string, error)
	GetPostMetrics(ctx context.Context, externalID string) (PostMetrics, error)
	GetAccountMetrics(ctx context.Context) (AccountMetrics, error)
	// VerifyCredentials reports whether the configured credentials work. It never fails.
	VerifyCredentials(ctx context.Context) bool
}
