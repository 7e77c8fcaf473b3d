package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Profile представляет профиль пользователя
type Profile struct {
	Image *string `json:"image"`
	Email string  `json:"email"`
	Name  string  `json:"name"`
}

// Settings представляет пользовательские настройки.
// Каждое поле может отсутствовать, в этом случае сервер присылает null.
type Settings struct {
	Language *string `json:"language"`
	Country  *string `json:"country"`
	Timezone *string `json:"timezone"`
}

// UpdateNameRequest представляет запрос на смену имени
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// UpdateLanguageRequest представляет запрос на смену языка
type UpdateLanguageRequest struct {
	Language string `json:"language"`
}

// UpdateCountryRequest представляет запрос на смену страны
type UpdateCountryRequest struct {
	Country string `json:"country"`
}

// UpdateTimezoneRequest представляет запрос на смену часового пояса
type UpdateTimezoneRequest struct {
	Timezone string `json:"timezone"`
}
