package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserID_IsValid(t *testing.T) {
	assert.True(t, UserID("auth0|123").IsValid())
	assert.False(t, UserID("").IsValid())
	assert.False(t, UserID("   ").IsValid())
	assert.Equal(t, "auth0|123", UserID("auth0|123").String())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "validation error",
			err:      ValidationError{Field: "content", Message: "is required"},
			expected: "validation error for field 'content': is required",
		},
		{
			name:     "not found error",
			err:      NotFoundError{Resource: "Post", ID: "42"},
			expected: "Post with ID '42' not found",
		},
		{
			name:     "internal error with cause",
			err:      InternalError{Message: "boom", Cause: errors.New("disk full")},
			expected: "internal error: boom (caused by: disk full)",
		},
		{
			name:     "internal error without cause",
			err:      InternalError{Message: "boom"},
			expected: "internal error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := InternalError{Message: "wrapped", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 5))
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), clock.Now())

	later := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	clock.SetTime(later)
	assert.Equal(t, later, clock.Now())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC on March 1st is 01:30 on March 2nd at UTC+2
	instant := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), StartOfDay(instant, loc))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDay(instant, time.UTC))
}
