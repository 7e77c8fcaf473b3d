package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leun/leun-client/pkg/api"
)

// Login выполняет аутентификацию по email и паролю
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.SignInResponse, error) {
	var resp api.SignInResponse
	if err := c.doRequest(ctx, http.MethodPost, api.PathLogin, req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// GoogleLogin обменивает authorization code Google на сессию
func (c *Client) GoogleLogin(ctx context.Context, code string) (*api.SignInResponse, error) {
	var resp api.SignInResponse
	if err := c.doRequest(ctx, http.MethodPost, api.PathGoogleLogin, api.OAuthLoginRequest{Code: code}, &resp); err != nil {
		return nil, fmt.Errorf("google login request failed: %w", err)
	}
	return &resp, nil
}

// NaverLogin обменивает authorization code Naver на сессию
func (c *Client) NaverLogin(ctx context.Context, code string) (*api.SignInResponse, error) {
	var resp api.SignInResponse
	if err := c.doRequest(ctx, http.MethodPost, api.PathNaverLogin, api.OAuthLoginRequest{Code: code}, &resp); err != nil {
		return nil, fmt.Errorf("naver login request failed: %w", err)
	}
	return &resp, nil
}

// RefreshToken обменивает refresh token на новую пару токенов
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
	var resp api.TokenPair
	err := c.doRequest(ctx, http.MethodPost, api.PathRefreshToken, api.RefreshTokenRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh token request failed: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("refresh token response has no access token")
	}
	return &resp, nil
}

// Logout просит сервер инвалидировать refresh token
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, api.PathLogout, api.LogoutRequest{RefreshToken: refreshToken}, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, api.PathUser, req, nil); err != nil {
		return fmt.Errorf("register request failed: %w", err)
	}
	return nil
}
