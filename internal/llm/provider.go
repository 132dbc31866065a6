package llm

import (
	"context"
)

// ContentGenerator produces short social posts with a language model
type ContentGenerator interface {
	// GenerateContent returns up to count distinct posts about topic.
	// An empty result is not an error.
	GenerateContent(ctx context.Context, topic string, count int) ([]string, error)

	// EnhanceContent rewrites content for engagement, keeping it within the post length limit.
	EnhanceContent(ctx context.Context, content string) (string, error)

	// GenerateHashtags suggests hashtags for content, without the leading '#'.
	GenerateHashtags(ctx context.Context, content string) ([]string, error)
}

// Operation names used in GenerationError
const (
	OperationGenerate = "generate"
	OperationEnhance  = "enhance"
	OperationHashtags = "hashtags"
)

// MaxPostLength is the platform's character limit for a single post
const MaxPostLength = 280
