package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/leun/leun-client/pkg/api"
)

// Progress описывает состояние загрузки файла
type Progress struct {
	Loaded int64
	Total  int64
}

// ProgressFunc вызывается по мере отправки тела запроса
type ProgressFunc func(Progress)

// GetProfile возвращает профиль текущего пользователя
func (c *Client) GetProfile(ctx context.Context) (*api.Profile, error) {
	var resp api.Profile
	if err := c.doRequest(ctx, http.MethodGet, api.PathProfile, nil, &resp); err != nil {
		return nil, fmt.Errorf("get profile request failed: %w", err)
	}
	return &resp, nil
}

// UpdateName меняет отображаемое имя
func (c *Client) UpdateName(ctx context.Context, name string) (*api.Profile, error) {
	var resp api.Profile
	if err := c.doRequest(ctx, http.MethodPatch, api.PathProfileName, api.UpdateNameRequest{Name: name}, &resp); err != nil {
		return nil, fmt.Errorf("update name request failed: %w", err)
	}
	return &resp, nil
}

// UploadProfileImage загружает аватар как multipart/form-data с полем image.
// Тело собирается в памяти, чтобы запрос можно было повторить после обновления токена;
// при повторе onProgress снова начинает с нуля.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, image io.Reader, onProgress ProgressFunc) (*api.Profile, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(api.ProfileImageField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	payload := buf.Bytes()
	newBody := func() io.ReadCloser {
		return &progressReader{
			r:          bytes.NewReader(payload),
			total:      int64(len(payload)),
			onProgress: onProgress,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+api.PathProfileImage, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Body = newBody()
	req.GetBody = func() (io.ReadCloser, error) {
		return newBody(), nil
	}
	req.ContentLength = int64(len(payload))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp api.Profile
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("upload profile image request failed: %w", err)
	}
	return &resp, nil
}

// GetSettings возвращает настройки пользователя
func (c *Client) GetSettings(ctx context.Context) (*api.Settings, error) {
	var resp api.Settings
	if err := c.doRequest(ctx, http.MethodGet, api.PathSettings, nil, &resp); err != nil {
		return nil, fmt.Errorf("get settings request failed: %w", err)
	}
	return &resp, nil
}

// UpdateLanguage меняет язык
func (c *Client) UpdateLanguage(ctx context.Context, language string) (*api.Settings, error) {
	return c.updateSetting(ctx, api.PathSettingLang, api.UpdateLanguageRequest{Language: language})
}

// UpdateCountry меняет страну
func (c *Client) UpdateCountry(ctx context.Context, country string) (*api.Settings, error) {
	return c.updateSetting(ctx, api.PathSettingCountry, api.UpdateCountryRequest{Country: country})
}

// UpdateTimezone меняет часовой пояс
func (c *Client) UpdateTimezone(ctx context.Context, timezone string) (*api.Settings, error) {
	return c.updateSetting(ctx, api.PathSettingTZ, api.UpdateTimezoneRequest{Timezone: timezone})
}

func (c *Client) updateSetting(ctx context.Context, path string, body any) (*api.Settings, error) {
	var resp api.Settings
	if err := c.doRequest(ctx, http.MethodPatch, path, body, &resp); err != nil {
		return nil, fmt.Errorf("update setting request failed: %w", err)
	}
	return &resp, nil
}

// DeleteUser удаляет учетную запись
func (c *Client) DeleteUser(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodDelete, api.PathUser, nil, nil); err != nil {
		return fmt.Errorf("delete user request failed: %w", err)
	}
	return nil
}

// progressReader сообщает, сколько байт тела уже прочитал транспорт
type progressReader struct {
	r          io.Reader
	onProgress ProgressFunc
	loaded     int64
	total      int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.onProgress != nil {
			p.onProgress(Progress{Loaded: p.loaded, Total: p.total})
		}
	}
	return n, err
}

func (p *progressReader) Close() error {
	return nil
}
