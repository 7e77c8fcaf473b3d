package auth

import (
	"context"

	"github.com/leun/leun-client/internal/client/storage"
)

//go:generate moq -out service_mock.go . Service

// Service defines the sign-in operations used by the CLI.
// Successful logins hand the issued tokens to the session guard.
type Service interface {
	// Register создает учетную запись; сессия при этом не открывается
	Register(ctx context.Context, input RegisterInput) error

	// Login выполняет вход по email и паролю
	Login(ctx context.Context, email, password string) (*storage.User, error)

	// OAuthLogin обменивает authorization code провайдера на сессию
	OAuthLogin(ctx context.Context, provider Provider, code string) (*storage.User, error)

	// Logout завершает сессию на сервере (best effort) и удаляет локальные данные
	Logout(ctx context.Context) error
}
