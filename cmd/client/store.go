package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leun/leun-client/internal/client/config"
	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/internal/client/storage/boltdb"
	"github.com/leun/leun-client/internal/client/storage/memory"
	"github.com/leun/leun-client/internal/client/storage/sealed"
	"github.com/leun/leun-client/internal/client/storage/sqlite"
)

const defaultRetryBase = 200 * time.Millisecond

// openStore открывает выбранное хранилище и, если задана парольная фраза,
// оборачивает его шифрованием
func openStore(ctx context.Context, cfg *config.Config) (storage.TokenStore, func() error, error) {
	var (
		store     storage.TokenStore
		closeFunc func() error
	)

	switch cfg.Store {
	case config.StoreBolt:
		s, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		store, closeFunc = s, s.Close
	case config.StoreSQLite:
		s, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		store, closeFunc = s, s.Close
	case config.StoreMemory:
		s := memory.New()
		store, closeFunc = s, s.Close
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.StorePassphrase == "" {
		return store, closeFunc, nil
	}

	sealedStore, err := sealed.New(ctx, store, cfg.StorePassphrase)
	if err != nil {
		_ = closeFunc()
		return nil, nil, fmt.Errorf("failed to unlock session store: %w", err)
	}
	return sealedStore, closeFunc, nil
}
