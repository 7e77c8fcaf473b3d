// Package sealed wraps a TokenStore and encrypts every value at rest.
//
// The key is derived from a passphrase with Argon2id. The salt is generated on
// first use and kept, unencrypted, in the wrapped store under KeySalt.
package sealed

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/internal/crypto"
)

// KeySalt holds the base64 salt used for key derivation.
const KeySalt = "sealSalt"

// Store encrypts values before handing them to the wrapped store.
type Store struct {
	inner  storage.TokenStore
	sealer *crypto.Sealer
}

var _ storage.TokenStore = (*Store)(nil)

// New derives the key from passphrase and wraps inner.
func New(ctx context.Context, inner storage.TokenStore, passphrase string) (*Store, error) {
	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}

	return &Store{inner: inner, sealer: sealer}, nil
}

func loadOrCreateSalt(ctx context.Context, inner storage.TokenStore) ([]byte, error) {
	encoded, err := inner.Get(ctx, KeySalt)
	if err == nil {
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode salt: %w", err)
		}
		return salt, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := inner.Set(ctx, KeySalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("failed to save salt: %w", err)
	}
	return salt, nil
}

// Get reads and decrypts a value.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	sealedValue, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	value, err := s.sealer.Open(sealedValue)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", key, err)
	}
	return value, nil
}

// Set encrypts and stores a value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	sealedValue, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealedValue)
}

// Delete removes keys from the wrapped store.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}
