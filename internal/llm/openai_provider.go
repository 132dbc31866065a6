package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"autoposter-api/internal/config"

	"go.uber.org/zap"
)

const systemPrompt = "You are a social media copywriter. You write short, original posts that fit within " +
	"280 characters, avoid clickbait and never invent statistics. Always answer with a single JSON object."

// OpenAIProvider implements ContentGenerator against an OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	config     config.LLMConfig
	logger     *zap.Logger
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

// completion describes one call's prompt and sampling parameters
type completion struct {
	operation   string
	prompt      string
	temperature float64
	maxTokens   int
}

// NewOpenAIProvider creates a provider. It fails when no API key is configured.
func NewOpenAIProvider(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, NewConfigurationError("api_key", "API key is required", "set llm.api_key or OPENAI_API_KEY")
	}
	if cfg.APIEndpoint == "" {
		return nil, NewConfigurationError("api_endpoint", "API endpoint is required", "")
	}

	return &OpenAIProvider{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}, nil
}

// GenerateContent implements ContentGenerator
func (p *OpenAIProvider) GenerateContent(ctx context.Context, topic string, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}

	p.logger.Info("Generating content",
		zap.String("topic", topic),
		zap.Int("count", count))

	prompt := fmt.Sprintf(`Write %d distinct social media posts about "%s".
Each post must be at most %d characters, engaging and self-contained. Include relevant hashtags.
Respond with JSON in this exact shape: {"tweets": ["first post", "second post"]}`, count, topic, MaxPostLength)

	var out struct {
		Tweets []string `json:"tweets"`
	}
	err := p.complete(ctx, completion{
		operation:   OperationGenerate,
		prompt:      prompt,
		temperature: 0.8,
		maxTokens:   1000,
	}, &out)
	if err != nil {
		return nil, err
	}

	posts := make([]string, 0, len(out.Tweets))
	for _, t := range out.Tweets {
		if t = fitPost(t); t != "" {
			posts = append(posts, t)
		}
		if len(posts) == count {
			break
		}
	}
	return posts, nil
}

// EnhanceContent implements ContentGenerator. A response without the field returns content unchanged.
func (p *OpenAIProvider) EnhanceContent(ctx context.Context, content string) (string, error) {
	p.logger.Info("Enhancing content", zap.Int("content_length", len(content)))

	prompt := fmt.Sprintf(`Improve this social media post so it is clearer and more engaging, keeping its meaning and voice.
The result must be at most %d characters.
Post: %q
Respond with JSON in this exact shape: {"tweet": "improved post"}`, MaxPostLength, content)

	var out struct {
		Tweet string `json:"tweet"`
	}
	err := p.complete(ctx, completion{
		operation:   OperationEnhance,
		prompt:      prompt,
		temperature: 0.7,
		maxTokens:   300,
	}, &out)
	if err != nil {
		return "", err
	}

	if enhanced := fitPost(out.Tweet); enhanced != "" {
		return enhanced, nil
	}
	return content, nil
}

// fitPost trims s and cuts it to MaxPostLength runes, preferring the last word
// boundary so a hashtag is never split.
func fitPost(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxPostLength {
		return s
	}
	cut := string(runes[:MaxPostLength])
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// GenerateHashtags implements ContentGenerator
func (p *OpenAIProvider) GenerateHashtags(ctx context.Context, content string) ([]string, error) {
	p.logger.Info("Generating hashtags", zap.Int("content_length", len(content)))

	prompt := fmt.Sprintf(`Suggest 3 to 5 relevant hashtags for this social media post, without the leading '#'.
Post: %q
Respond with JSON in this exact shape: {"hashtags": ["first", "second", "third"]}`, content)

	var out struct {
		Hashtags []string `json:"hashtags"`
	}
	err := p.complete(ctx, completion{
		operation:   OperationHashtags,
		prompt:      prompt,
		temperature: 0.5,
		maxTokens:   200,
	}, &out)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(out.Hashtags))
	for _, tag := range out.Hashtags {
		tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		if tag != "" {
			tags = append(tags, tag)
		}
		if len(tags) == 5 {
			break
		}
	}
	return tags, nil
}

// complete runs one chat completion and decodes the model's JSON answer into out.
// Every failure is returned as a GenerationError for c.operation.
func (p *OpenAIProvider) complete(ctx context.Context, c completion, out interface{}) error {
	req := chatRequest{
		Model: p.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: c.prompt},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	text, err := p.callAPI(ctx, req)
	if err == nil {
		err = decodeModelJSON(text, out)
	}
	if err != nil {
		p.logger.Error("Content generation failed",
			zap.String("operation", c.operation),
			zap.Error(err))
		return GenerationError{Operation: c.operation, Cause: err}
	}
	return nil
}

// callAPI makes the HTTP request and returns the first choice's message content
func (p *OpenAIProvider) callAPI(ctx context.Context, req chatRequest) (string, error) {
	requestBody, err := json.Marshal(req)
	if err != nil {
		return "", NewAPIError(0, ErrorCodeInvalidRequest, "Failed to marshal request", err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIEndpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", NewNetworkError("create_request", "Failed to create HTTP request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", NewNetworkError("http_request", "Failed to make HTTP request", err)
	}
	defer httpResp.Body.Close()

	responseBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", NewNetworkError("read_response", "Failed to read response body", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", p.handleHTTPError(httpResp, responseBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(responseBody, &chatResp); err != nil {
		return "", ResponseError{ErrorMsg: "Failed to parse API response", Details: err.Error()}
	}
	if chatResp.Error != nil {
		return "", NewAPIError(httpResp.StatusCode, chatResp.Error.Code, chatResp.Error.Message, chatResp.Error.Type)
	}
	if len(chatResp.Choices) == 0 {
		return "", ResponseError{ErrorMsg: "No choices in API response"}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// decodeModelJSON decodes the JSON object the model produced. Text around the
// object, such as a markdown fence, is ignored.
func decodeModelJSON(text string, out interface{}) error {
	jsonStr := extractJSON(text)
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return ResponseError{
			ErrorMsg: "Failed to parse JSON from model output",
			Details:  fmt.Sprintf("Response text: %s, Error: %v", text, err),
		}
	}
	return nil
}

// extractJSON extracts the first balanced JSON object from text
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return text[start:]
}

// handleHTTPError creates appropriate error based on HTTP status code
func (p *OpenAIProvider) handleHTTPError(resp *http.Response, responseBody []byte) error {
	errorMsg := string(responseBody)
	errorCode := ErrorCodeUnknown

	var chatResp chatResponse
	if err := json.Unmarshal(responseBody, &chatResp); err == nil && chatResp.Error != nil {
		errorMsg = chatResp.Error.Message
		if chatResp.Error.Code != "" {
			errorCode = chatResp.Error.Code
		}
	}

	statusCode := resp.StatusCode
	switch statusCode {
	case http.StatusUnauthorized:
		return NewAPIError(statusCode, ErrorCodeInvalidAPIKey, "Invalid API key", errorMsg)
	case http.StatusForbidden:
		return NewAPIError(statusCode, ErrorCodeInsufficientQuota, "Insufficient quota or permissions", errorMsg)
	case http.StatusNotFound:
		return NewAPIError(statusCode, ErrorCodeModelNotFound, "Model not found", errorMsg)
	case http.StatusRequestEntityTooLarge:
		return NewAPIError(statusCode, ErrorCodeRequestTooLarge, "Request too large", errorMsg)
	case http.StatusTooManyRequests:
		retryAfter := 60
		if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && v > 0 {
			retryAfter = v
		}
		return NewRateLimitError(retryAfter, errorMsg)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return NewAPIError(statusCode, ErrorCodeServiceUnavailable, "Service unavailable", errorMsg)
	default:
		return NewAPIError(statusCode, errorCode, errorMsg, string(responseBody))
	}
}
