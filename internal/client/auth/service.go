package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/internal/validation"
	"github.com/leun/leun-client/pkg/api"
)

// ErrInvalidCredentials возвращается, когда сервер отклонил email или пароль
var ErrInvalidCredentials = errors.New("invalid email or password")

// Provider идентифицирует OAuth провайдера
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderNaver  Provider = "naver"
)

// API описывает вызовы сервера, нужные для входа
type API interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.SignInResponse, error)
	GoogleLogin(ctx context.Context, code string) (*api.SignInResponse, error)
	NaverLogin(ctx context.Context, code string) (*api.SignInResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
}

// Sessions принимает выданные токены и завершает сессию
type Sessions interface {
	Establish(ctx context.Context, accessToken, refreshToken string, user storage.User) error
	Logout(ctx context.Context) error
}

// RegisterInput содержит данные формы регистрации
type RegisterInput struct {
	Email        string
	Name         string
	Password     string
	Confirmation string
}

// AuthService реализует Service поверх API клиента и session guard
type AuthService struct {
	api      API
	sessions Sessions
	logger   *slog.Logger
}

var _ Service = (*AuthService)(nil)

// NewAuthService создает новый сервис авторизации
func NewAuthService(apiClient API, sessions Sessions, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:      apiClient,
		sessions: sessions,
		logger:   logger,
	}
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	// Валидация входных данных
	if err := validation.ValidateEmail(input.Email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidateName(input.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	if err := validation.ValidateConfirmation(input.Password, input.Confirmation); err != nil {
		return fmt.Errorf("invalid password confirmation: %w", err)
	}

	req := api.RegisterRequest{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	}
	if err := s.api.Register(ctx, req); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	s.logger.Info("user registered", "email", input.Email)
	return nil
}

// Login выполняет аутентификацию по email и паролю
func (s *AuthService) Login(ctx context.Context, email, password string) (*storage.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidateLoginPassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.Unauthorized() {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.establish(ctx, resp)
}

// OAuthLogin выполняет вход через Google или Naver
func (s *AuthService) OAuthLogin(ctx context.Context, provider Provider, code string) (*storage.User, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code cannot be empty")
	}

	var (
		resp *api.SignInResponse
		err  error
	)
	switch provider {
	case ProviderGoogle:
		resp, err = s.api.GoogleLogin(ctx, code)
	case ProviderNaver:
		resp, err = s.api.NaverLogin(ctx, code)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s login failed: %w", provider, err)
	}

	return s.establish(ctx, resp)
}

// Logout выполняет выход из системы
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// establish сохраняет токены и данные пользователя из ответа на вход
func (s *AuthService) establish(ctx context.Context, resp *api.SignInResponse) (*storage.User, error) {
	user := storage.User{
		Image: resp.Image,
		Name:  resp.Name,
	}
	if resp.Settings != nil {
		user.Settings = storage.Settings{
			Language: resp.Settings.Language,
			Country:  resp.Settings.Country,
			Timezone: resp.Settings.Timezone,
		}
	}

	if err := s.sessions.Establish(ctx, resp.AccessToken, resp.RefreshToken, user); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Debug("session established", "name", user.Name)
	return &user, nil
}
