package auth

import (
	"context"
	"net/http"
	"testing"

	"autoposter-api/internal/common"
	"autoposter-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	UserHeader:      "X-Auth-Request-User",
	EmailHeader:     "X-Auth-Request-Email",
	FirstNameHeader: "X-Auth-Request-First-Name",
	LastNameHeader:  "X-Auth-Request-Last-Name",
	ImageHeader:     "X-Auth-Request-Picture",
}

func TestFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Auth-Request-User", " user-1 ")
	h.Set("X-Auth-Request-Email", "a@example.com")
	h.Set("X-Auth-Request-First-Name", "Ada")

	id, ok := FromHeaders(h, testAuthConfig)
	require.True(t, ok)
	assert.Equal(t, common.UserID("user-1"), id.UserID)
	assert.Equal(t, "a@example.com", id.Email)
	assert.Equal(t, "Ada", id.FirstName)
	assert.Empty(t, id.LastName)
}

func TestFromHeaders_Missing(t *testing.T) {
	_, ok := FromHeaders(http.Header{}, testAuthConfig)
	assert.False(t, ok)
}

func TestFromHeaders_DevFallback(t *testing.T) {
	cfg := testAuthConfig
	cfg.DevUserID = "dev-user"

	id, ok := FromHeaders(http.Header{}, cfg)
	require.True(t, ok)
	assert.Equal(t, common.UserID("dev-user"), id.UserID)

	h := http.Header{}
	h.Set("X-Auth-Request-User", "real-user")
	id, ok = FromHeaders(h, cfg)
	require.True(t, ok)
	assert.Equal(t, common.UserID("real-user"), id.UserID, "a real header wins over the dev fallback")
}

func TestIdentity_User(t *testing.T) {
	u := Identity{UserID: "user-1", Email: "a@example.com"}.User()

	assert.Equal(t, common.UserID("user-1"), u.ID)
	require.NotNil(t, u.Email)
	assert.Equal(t, "a@example.com", *u.Email)
	assert.Nil(t, u.FirstName)
	assert.Nil(t, u.ProfileImageURL)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "user-1"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, common.UserID("user-1"), id.UserID)
}
