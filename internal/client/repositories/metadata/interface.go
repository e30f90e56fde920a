package metadata

import (
	"context"
)

// Keys the client keeps between runs.
const (
	KeySessionToken = "session_token"
	KeySessionEnd   = "session_expires_at"
	KeyServerURL    = "server_url"
)

// Repository is a small string key/value store.
type Repository interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
