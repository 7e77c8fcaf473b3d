// Package profile реализует операции над профилем и настройками пользователя.
// Все вызовы идут через API клиент с session guard, поэтому истекший токен
// обновляется прозрачно.
package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	apiclient "github.com/leun/leun-client/internal/client/api"
	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/internal/validation"
	"github.com/leun/leun-client/pkg/api"
)

// Setting называет изменяемую настройку пользователя
type Setting string

const (
	SettingLanguage Setting = "language"
	SettingCountry  Setting = "country"
	SettingTimezone Setting = "timezone"
)

// ParseSetting проверяет имя настройки из командной строки
func ParseSetting(name string) (Setting, error) {
	switch s := Setting(name); s {
	case SettingLanguage, SettingCountry, SettingTimezone:
		return s, nil
	default:
		return "", fmt.Errorf("unknown setting %q (want language, country or timezone)", name)
	}
}

// API описывает вызовы сервера для профиля
type API interface {
	GetProfile(ctx context.Context) (*api.Profile, error)
	GetSettings(ctx context.Context) (*api.Settings, error)
	UpdateName(ctx context.Context, name string) (*api.Profile, error)
	UploadProfileImage(ctx context.Context, filename string, image io.Reader, onProgress apiclient.ProgressFunc) (*api.Profile, error)
	UpdateLanguage(ctx context.Context, language string) (*api.Settings, error)
	UpdateCountry(ctx context.Context, country string) (*api.Settings, error)
	UpdateTimezone(ctx context.Context, timezone string) (*api.Settings, error)
	DeleteUser(ctx context.Context) error
}

// Sessions хранит отображаемые данные пользователя
type Sessions interface {
	UpdateUser(ctx context.Context, fn func(*storage.User)) error
	SignOut(ctx context.Context)
}

// Overview объединяет профиль и настройки
type Overview struct {
	Profile  api.Profile
	Settings api.Settings
}

// Service реализует операции над профилем
type Service struct {
	api      API
	sessions Sessions
	logger   *slog.Logger
}

// NewService создает сервис профиля
func NewService(apiClient API, sessions Sessions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger,
	}
}

// Overview загружает профиль и настройки параллельно и обновляет
// сохраненные данные пользователя
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var (
		profile  *api.Profile
		settings *api.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.api.GetProfile(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.api.GetSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	s.remember(ctx, func(u *storage.User) {
		u.Name = profile.Name
		u.Image = profile.Image
		u.Settings = toStored(*settings)
	})

	return &Overview{Profile: *profile, Settings: *settings}, nil
}

// UpdateName меняет отображаемое имя
func (s *Service) UpdateName(ctx context.Context, name string) (*api.Profile, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}

	profile, err := s.api.UpdateName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, func(u *storage.User) {
		u.Name = profile.Name
	})
	return profile, nil
}

// UploadAvatar загружает файл изображения как аватар
func (s *Service) UploadAvatar(ctx context.Context, path string, onProgress apiclient.ProgressFunc) (*api.Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	profile, err := s.api.UploadProfileImage(ctx, filepath.Base(path), file, onProgress)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, func(u *storage.User) {
		u.Image = profile.Image
	})
	return profile, nil
}

// UpdateSetting меняет одну настройку
func (s *Service) UpdateSetting(ctx context.Context, setting Setting, value string) (*api.Settings, error) {
	if value == "" {
		return nil, fmt.Errorf("%s cannot be empty", setting)
	}

	var (
		settings *api.Settings
		err      error
	)
	switch setting {
	case SettingLanguage:
		settings, err = s.api.UpdateLanguage(ctx, value)
	case SettingCountry:
		settings, err = s.api.UpdateCountry(ctx, value)
	case SettingTimezone:
		settings, err = s.api.UpdateTimezone(ctx, value)
	default:
		return nil, fmt.Errorf("unknown setting %q", setting)
	}
	if err != nil {
		return nil, err
	}

	s.remember(ctx, func(u *storage.User) {
		u.Settings = toStored(*settings)
	})
	return settings, nil
}

// DeleteAccount удаляет учетную запись и локальную сессию
func (s *Service) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteUser(ctx); err != nil {
		return err
	}
	s.sessions.SignOut(ctx)
	return nil
}

// remember обновляет локальную копию данных пользователя; ошибка не мешает
// результату запроса
func (s *Service) remember(ctx context.Context, fn func(*storage.User)) {
	if err := s.sessions.UpdateUser(ctx, fn); err != nil {
		s.logger.Warn("failed to update stored user", "error", err)
	}
}

func toStored(settings api.Settings) storage.Settings {
	return storage.Settings{
		Language: settings.Language,
		Country:  settings.Country,
		Timezone: settings.Timezone,
	}
}
