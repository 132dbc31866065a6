package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"autoposter-api/internal/config"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"
)

// DefaultBaseURL is the X API host
const DefaultBaseURL = "https://api.twitter.com"

// maxErrorBody caps how much of an error response is kept in APIError
const maxErrorBody = 2048

// XClient implements Publisher against the X API v2, signing every request with OAuth 1.0a
type XClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type publicMetrics struct {
	LikeCount       int `json:"like_count"`
	RetweetCount    int `json:"retweet_count"`
	ReplyCount      int `json:"reply_count"`
	QuoteCount      int `json:"quote_count"`
	ImpressionCount int `json:"impression_count"`
	FollowersCount  int `json:"followers_count"`
	FollowingCount  int `json:"following_count"`
	TweetCount      int `json:"tweet_count"`
}

type envelope struct {
	Data struct {
		ID            string        `json:"id"`
		Text          string        `json:"text"`
		Username      string        `json:"username"`
		PublicMetrics publicMetrics `json:"public_metrics"`
	} `json:"data"`
}

// NewXClient creates a client for the account identified by the four OAuth credentials in cfg
func NewXClient(cfg config.SocialConfig, logger *zap.Logger) (*XClient, error) {
	required := []struct{ field, value string }{
		{"api_key", cfg.APIKey},
		{"api_secret", cfg.APISecret},
		{"access_token", cfg.AccessToken},
		{"access_token_secret", cfg.AccessTokenSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, ConfigurationError{Field: r.field, ErrorMsg: "credential is required"}
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	httpClient := oauthConfig.Client(context.Background(), oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret))
	httpClient.Timeout = time.Duration(cfg.Timeout) * time.Second

	return &XClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Publish implements Publisher
func (c *XClient) Publish(ctx context.Context, text string) (string, error) {
	c.logger.Debug("Publishing post", zap.Int("text_length", len(text)))

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", PublishError{Operation: OperationPublish, Cause: err}
	}

	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/2/tweets", nil, body, &resp); err != nil {
		c.logger.Error("Failed to publish post", zap.Error(err))
		return "", PublishError{Operation: OperationPublish, Cause: err}
	}
	if resp.Data.ID == "" {
		return "", PublishError{Operation: OperationPublish, Cause: fmt.Errorf("response did not include a post id")}
	}

	c.logger.Info("Post published", zap.String("tweet_id", resp.Data.ID))
	return resp.Data.ID, nil
}

// GetPostMetrics implements Publisher
func (c *XClient) GetPostMetrics(ctx context.Context, externalID string) (PostMetrics, error) {
	query := url.Values{"tweet.fields": {"public_metrics"}}

	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/2/tweets/"+url.PathEscape(externalID), query, nil, &resp); err != nil {
		return PostMetrics{}, PublishError{Operation: OperationPostMetrics, Cause: err}
	}

	m := resp.Data.PublicMetrics
	return PostMetrics{
		Likes:       m.LikeCount,
		Shares:      m.RetweetCount,
		Replies:     m.ReplyCount,
		Impressions: m.ImpressionCount,
	}, nil
}

// GetAccountMetrics implements Publisher
func (c *XClient) GetAccountMetrics(ctx context.Context) (AccountMetrics, error) {
	query := url.Values{"user.fields": {"public_metrics"}}

	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/2/users/me", query, nil, &resp); err != nil {
		return AccountMetrics{}, PublishError{Operation: OperationAccountMetrics, Cause: err}
	}

	m := resp.Data.PublicMetrics
	return AccountMetrics{
		Followers: m.FollowersCount,
		Following: m.FollowingCount,
		PostCount: m.TweetCount,
	}, nil
}

// VerifyCredentials implements Publisher
func (c *XClient) VerifyCredentials(ctx context.Context) bool {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/2/users/me", nil, nil, &resp); err != nil {
		c.logger.Warn("Credential verification failed", zap.Error(err))
		return false
	}
	return resp.Data.ID != ""
}

// do sends a signed request and decodes a 2xx JSON body into out
func (c *XClient) do(ctx context.Context, method, path string, query url.Values, body []byte, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
