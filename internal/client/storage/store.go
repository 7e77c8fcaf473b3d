package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys persisted by the client. Values are always strings.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// SessionKeys lists every key that belongs to a signed-in session.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// TokenStore defines the key-value store that keeps the session across runs.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	// Get returns the stored value or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error
}

// Settings holds user preferences. A nil field means the value is not set.
type Settings struct {
	Language *string `json:"language"`
	Country  *string `json:"country"`
	Timezone *string `json:"timezone"`
}

// User is the display data kept under KeyUser as JSON.
type User struct {
	Image    *string  `json:"image"`
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// GetOptional returns the stored value or an empty string if the key is missing.
func GetOptional(ctx context.Context, store TokenStore, key string) (string, error) {
	value, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// LoadUser decodes the user record. Returns ErrNotFound if nothing is stored.
func LoadUser(ctx context.Context, store TokenStore) (*User, error) {
	raw, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// SaveUser encodes and stores the user record.
func SaveUser(ctx context.Context, store TokenStore, user *User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return store.Set(ctx, KeyUser, string(data))
}

// Clear removes every session key.
func Clear(ctx context.Context, store TokenStore) error {
	return store.Delete(ctx, SessionKeys...)
}
