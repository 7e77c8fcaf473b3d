package api

// LoginRequest представляет запрос на аутентификацию по email и паролю
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthLoginRequest представляет запрос на вход через Google или Naver
type OAuthLoginRequest struct {
	Code string `json:"code"` // authorization code, полученный от провайдера
}

// SignInResponse представляет ответ на успешный вход
type SignInResponse struct {
	Settings     *Settings `json:"settings,omitempty"`
	Image        *string   `json:"image,omitempty"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	Name         string    `json:"name"`
}

// RefreshTokenRequest представляет запрос на обновление access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair представляет пару токенов, выданную при обновлении.
// Refresh token ротируется при каждом обновлении.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest представляет запрос на инвалидацию refresh token на сервере
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}
