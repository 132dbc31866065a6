package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autoposter-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *XClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewXClient(config.SocialConfig{
		BaseURL:           server.URL + "/",
		APIKey:            "consumer-key",
		APISecret:         "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-secret",
		Timeout:           5,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func assertSigned(t *testing.T, r *http.Request) {
	t.Helper()
	authz := r.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(authz, "OAuth "), authz)
	assert.Contains(t, authz, `oauth_consumer_key="consumer-key"`)
	assert.Contains(t, authz, `oauth_token="access-token"`)
	assert.Contains(t, authz, `oauth_signature_method="HMAC-SHA1"`)
}

func TestNewXClient_RequiresCredentials(t *testing.T) {
	_, err := NewXClient(config.SocialConfig{APIKey: "k", APISecret: "s", AccessToken: "t"}, zap.NewNop())

	var cfgErr ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "access_token_secret", cfgErr.Field)
}

func TestXClient_Publish(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assertSigned(t, r)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello world", body["text"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1790000000000000001","text":"hello world"}}`))
	})

	id, err := client.Publish(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, "1790000000000000001", id)
}

func TestXClient_Publish_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You are not allowed to create a Tweet with duplicate content."}`))
	})

	_, err := client.Publish(context.Background(), "dup")
	require.Error(t, err)
	assert.Equal(t, "failed to post to X", err.Error())
	assert.True(t, IsPublishError(err))

	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "duplicate content")

	var publishErr PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.False(t, publishErr.Temporary())
}

func TestXClient_Publish_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	_, err := client.Publish(context.Background(), "x")
	assert.True(t, IsPublishError(err))
}

func TestXClient_GetPostMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/42", r.URL.Path)
		assert.Equal(t, "public_metrics", r.URL.Query().Get("tweet.fields"))
		assertSigned(t, r)
		_, _ = w.Write([]byte(`{"data":{"id":"42","public_metrics":{"like_count":5,"retweet_count":2,"reply_count":1,"impression_count":300}}}`))
	})

	metrics, err := client.GetPostMetrics(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, PostMetrics{Likes: 5, Shares: 2, Replies: 1, Impressions: 300}, metrics)
}

func TestXClient_GetPostMetrics_AbsentFieldsAreZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"42"}}`))
	})

	metrics, err := client.GetPostMetrics(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, PostMetrics{}, metrics)
}

func TestXClient_GetAccountMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/users/me", r.URL.Path)
		assert.Equal(t, "public_metrics", r.URL.Query().Get("user.fields"))
		_, _ = w.Write([]byte(`{"data":{"id":"7","username":"acme","public_metrics":{"followers_count":120,"following_count":80,"tweet_count":999}}}`))
	})

	metrics, err := client.GetAccountMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AccountMetrics{Followers: 120, Following: 80, PostCount: 999}, metrics)
}

func TestXClient_GetAccountMetrics_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetAccountMetrics(context.Background())
	require.Error(t, err)
	assert.Equal(t, "failed to fetch account metrics", err.Error())

	var publishErr PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.True(t, publishErr.Temporary())
}

func TestXClient_VerifyCredentials(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"7","username":"acme"}}`))
	})
	assert.True(t, ok.VerifyCredentials(context.Background()))

	denied := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.False(t, denied.VerifyCredentials(context.Background()))

	garbage := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	assert.False(t, garbage.VerifyCredentials(context.Background()))
}
