package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"autoposter-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// completionServer answers every request with a chat completion whose message is content
func completionServer(t *testing.T, content string, inspect func(chatRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if inspect != nil {
			inspect(req)
		}

		resp := chatResponse{Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: content}, FinishReason: "stop"}}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestProvider(t *testing.T, endpoint string) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(config.LLMConfig{
		APIEndpoint: endpoint,
		APIKey:      "test-key",
		Model:       "gpt-4o",
		Timeout:     5,
	}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(config.LLMConfig{APIEndpoint: "http://localhost"}, zap.NewNop())

	var cfgErr ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Field)
}

func TestGenerateContent(t *testing.T) {
	var seen chatRequest
	server := completionServer(t, `{"tweets": ["one", "  ", "two", "three"]}`, func(r chatRequest) { seen = r })
	p := newTestProvider(t, server.URL)

	posts, err := p.GenerateContent(context.Background(), "golang", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, posts, "blank entries are dropped and the result is capped")

	assert.Equal(t, "gpt-4o", seen.Model)
	assert.Equal(t, 0.8, seen.Temperature)
	assert.Equal(t, 1000, seen.MaxTokens)
	assert.Equal(t, "json_object", seen.ResponseFormat.Type)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[1].Content, "golang")
}

func TestGenerateContent_CapsPostLength(t *testing.T) {
	var seen chatRequest
	long := strings.Repeat("a", 400)
	worded := strings.Repeat("word ", 60) + "#golang"
	body, err := json.Marshal(map[string][]string{"tweets": {long, worded}})
	require.NoError(t, err)
	server := completionServer(t, string(body), func(r chatRequest) { seen = r })
	p := newTestProvider(t, server.URL)

	posts, err := p.GenerateContent(context.Background(), "success", 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.LessOrEqual(t, utf8.RuneCountInString(post), MaxPostLength)
	}
	assert.Equal(t, strings.Repeat("a", MaxPostLength), posts[0])
	assert.True(t, strings.HasSuffix(posts[1], "word"), "cut at a word boundary")
	assert.Contains(t, seen.Messages[1].Content, "Include relevant hashtags")
}

func TestEnhanceContent_CapsPostLength(t *testing.T) {
	server := completionServer(t, `{"tweet": "`+strings.Repeat("é", 300)+`"}`, nil)
	p := newTestProvider(t, server.URL)

	enhanced, err := p.EnhanceContent(context.Background(), "ok post")
	require.NoError(t, err)
	assert.Equal(t, MaxPostLength, utf8.RuneCountInString(enhanced))
}

func TestGenerateContent_MissingFieldIsEmpty(t *testing.T) {
	server := completionServer(t, `{"posts": ["wrong key"]}`, nil)
	p := newTestProvider(t, server.URL)

	posts, err := p.GenerateContent(context.Background(), "golang", 3)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestEnhanceContent(t *testing.T) {
	var seen chatRequest
	server := completionServer(t, "```json\n{\"tweet\": \"Better {post}\"}\n```", func(r chatRequest) { seen = r })
	p := newTestProvider(t, server.URL)

	enhanced, err := p.EnhanceContent(context.Background(), "ok post")
	require.NoError(t, err)
	assert.Equal(t, "Better {post}", enhanced)
	assert.Equal(t, 0.7, seen.Temperature)
	assert.Equal(t, 300, seen.MaxTokens)
}

func TestEnhanceContent_FallsBackToInput(t *testing.T) {
	server := completionServer(t, `{}`, nil)
	p := newTestProvider(t, server.URL)

	enhanced, err := p.EnhanceContent(context.Background(), "ok post")
	require.NoError(t, err)
	assert.Equal(t, "ok post", enhanced)
}

func TestGenerateHashtags(t *testing.T) {
	var seen chatRequest
	server := completionServer(t, `{"hashtags": ["#go", "backend", "#", "cloud", "devops", "sre", "extra"]}`, func(r chatRequest) { seen = r })
	p := newTestProvider(t, server.URL)

	tags, err := p.GenerateHashtags(context.Background(), "Shipping Go services")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "backend", "cloud", "devops", "sre"}, tags)
	assert.Equal(t, 0.5, seen.Temperature)
	assert.Equal(t, 200, seen.MaxTokens)
}

func TestProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		header    map[string]string
		operation func(*OpenAIProvider) error
		message   string
		check     func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error": {"message": "bad key", "type": "invalid_request_error", "code": "invalid_api_key"}}`,
			operation: func(p *OpenAIProvider) error {
				_, err := p.GenerateContent(context.Background(), "x", 1)
				return err
			},
			message: "failed to generate content with AI",
			check: func(t *testing.T, err error) {
				var apiErr APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, ErrorCodeInvalidAPIKey, apiErr.Code())
				assert.False(t, IsRetryable(err))
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"message": "slow down"}}`,
			header: map[string]string{"Retry-After": "12"},
			operation: func(p *OpenAIProvider) error {
				_, err := p.EnhanceContent(context.Background(), "x")
				return err
			},
			message: "failed to enhance post with AI",
			check: func(t *testing.T, err error) {
				var rlErr RateLimitError
				require.ErrorAs(t, err, &rlErr)
				assert.Equal(t, 12, rlErr.RetryAfter)
				assert.True(t, IsRetryable(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   `upstream down`,
			operation: func(p *OpenAIProvider) error {
				_, err := p.GenerateHashtags(context.Background(), "x")
				return err
			},
			message: "failed to generate hashtags with AI",
			check: func(t *testing.T, err error) {
				var apiErr APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "upstream down", apiErr.Details)
			},
		},
		{
			name:   "empty choices",
			status: http.StatusOK,
			body:   `{"choices": []}`,
			operation: func(p *OpenAIProvider) error {
				_, err := p.GenerateContent(context.Background(), "x", 1)
				return err
			},
			message: "failed to generate content with AI",
			check: func(t *testing.T, err error) {
				var respErr ResponseError
				require.ErrorAs(t, err, &respErr)
			},
		},
		{
			name:   "model returned prose",
			status: http.StatusOK,
			body:   `{"choices": [{"message": {"role": "assistant", "content": "sorry, I cannot"}}]}`,
			operation: func(p *OpenAIProvider) error {
				_, err := p.GenerateContent(context.Background(), "x", 1)
				return err
			},
			message: "failed to generate content with AI",
			check: func(t *testing.T, err error) {
				var respErr ResponseError
				require.ErrorAs(t, err, &respErr)
				assert.Equal(t, ErrorCodeInvalidResponse, respErr.Code())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := tt.operation(newTestProvider(t, server.URL))
			require.Error(t, err)

			var genErr GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.Equal(t, tt.message, err.Error(), "user-facing text hides the cause")
			tt.check(t, err)
		})
	}
}

func TestProvider_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestProvider(t, url).GenerateContent(context.Background(), "x", 1)

	var netErr NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, IsRetryable(err))
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                       `{"a":1}`,
		"```json\n{\"a\":{\"b\":2}}\n```": `{"a":{"b":2}}`,
		`text {"a":"}"} tail`:           `{"a":"}"}`,
		`{"a":"\"}"}`:                   `{"a":"\"}"}`,
		`no json`:                       `no json`,
	}
	for in, want := range tests {
		assert.Equal(t, want, extractJSON(in), in)
	}
}
