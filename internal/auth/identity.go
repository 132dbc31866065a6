// Package auth resolves the caller identity asserted by the authenticating proxy.
package auth

import (
	"context"
	"net/http"
	"strings"

	"autoposter-api/internal/common"
	"autoposter-api/internal/config"
	"autoposter-api/internal/user"
)

// Identity is the authenticated caller. Only UserID is guaranteed.
type Identity struct {
	UserID          common.UserID
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// User converts the identity into the row stored on login. Empty claims become NULL.
func (i Identity) User() *user.User {
	return &user.User{
		ID:              i.UserID,
		Email:           optional(i.Email),
		FirstName:       optional(i.FirstName),
		LastName:        optional(i.LastName),
		ProfileImageURL: optional(i.ProfileImageURL),
	}
}

// FromHeaders reads the identity headers configured in cfg. When the user header
// is absent, cfg.DevUserID is used if set.
func FromHeaders(h http.Header, cfg config.AuthConfig) (Identity, bool) {
	id := strings.TrimSpace(h.Get(cfg.UserHeader))
	if id == "" {
		id = strings.TrimSpace(cfg.DevUserID)
	}
	if id == "" {
		return Identity{}, false
	}

	return Identity{
		UserID:          common.UserID(id),
		Email:           strings.TrimSpace(h.Get(cfg.EmailHeader)),
		FirstName:       strings.TrimSpace(h.Get(cfg.FirstNameHeader)),
		LastName:        strings.TrimSpace(h.Get(cfg.LastNameHeader)),
		ProfileImageURL: strings.TrimSpace(h.Get(cfg.ImageHeader)),
	}, true
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by WithIdentity
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
