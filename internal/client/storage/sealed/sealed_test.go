package sealed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/internal/client/storage/memory"
	"github.com/leun/leun-client/internal/crypto"
)

func TestStore_EncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	store, err := New(ctx, inner, "correct horse")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "Bearer AT1"))

	raw, err := inner.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	assert.NotContains(t, raw, "AT1")

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Bearer AT1", got)

	_, err = store.Get(ctx, storage.KeyRefreshToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Delete(ctx, storage.KeyAccessToken))
	_, err = inner.Get(ctx, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ReusesSalt(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	first, err := New(ctx, inner, "pass")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, storage.KeyRefreshToken, "RT1"))

	salt, err := inner.Get(ctx, KeySalt)
	require.NoError(t, err)

	// Новый экземпляр с той же фразой читает старые значения
	second, err := New(ctx, inner, "pass")
	require.NoError(t, err)

	got, err := second.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "RT1", got)

	saltAfter, err := inner.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Equal(t, salt, saltAfter)
}

func TestStore_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	store, err := New(ctx, inner, "pass")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, storage.KeyRefreshToken, "RT1"))

	wrong, err := New(ctx, inner, "other")
	require.NoError(t, err)

	_, err = wrong.Get(ctx, storage.KeyRefreshToken)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestNew_EmptyPassphrase(t *testing.T) {
	_, err := New(context.Background(), memory.New(), "")
	assert.Error(t, err)
}
